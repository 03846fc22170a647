package main

import (
	"errors"
	"testing"

	"trigseq/config"
)

func TestOpenPortsInputWithoutOutput(t *testing.T) {
	var outs, ins []string
	openOut := func(name string) error { outs = append(outs, name); return nil }
	openIn := func(name string) error { ins = append(ins, name); return nil }

	if err := openPorts(config.MIDIConfig{InputPort: "pads"}, openOut, openIn); err != nil {
		t.Fatalf("openPorts: %v", err)
	}
	if len(outs) != 0 || len(ins) != 1 || ins[0] != "pads" {
		t.Fatalf("outs=%v ins=%v, want only the input opened", outs, ins)
	}
}

func TestOpenPortsReportsBothFailures(t *testing.T) {
	fail := func(name string) error { return errors.New("no " + name) }
	err := openPorts(config.MIDIConfig{PortName: "a", InputPort: "b"}, fail, fail)
	if err == nil || err.Error() != "no a; no b" {
		t.Fatalf("err = %v", err)
	}
	if err := openPorts(config.MIDIConfig{}, fail, fail); err != nil {
		t.Fatalf("nothing configured: %v", err)
	}
}
