package midi_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"trigseq/midi"
)

type sink struct {
	msgs []gomidi.Message
}

func (s *sink) send(msg gomidi.Message) error {
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *sink) notes(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, msg := range s.msgs {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			out = append(out, fmt.Sprint("on:", key))
		case msg.GetNoteOff(&ch, &key, &vel), msg.GetNoteOn(&ch, &key, &vel):
			out = append(out, fmt.Sprint("off:", key))
		default:
			t.Fatalf("unexpected message %v", msg)
		}
		if ch != 9 {
			t.Fatalf("message on channel %d, want 9", ch)
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTriggerOutputNotes(t *testing.T) {
	kit := midi.GetKit("gm")
	o := midi.NewTriggerOutput(kit, 10, 100)
	s := &sink{}
	o.SetSender(s.send)

	o.SetTriggers(0b0011)
	if o.Lit() != 0b0011 || len(s.msgs) != 2 {
		t.Fatalf("lit=%04b msgs=%d", o.Lit(), len(s.msgs))
	}
	var ch, key, vel uint8
	if !s.msgs[0].GetNoteOn(&ch, &key, &vel) || key != kit.Notes[0] || vel != 100 {
		t.Fatalf("first message = %v", s.msgs[0])
	}

	// lane 0 again: retrigger
	o.SetTriggers(0b0001)
	o.ClearAllTriggers()
	o.ClearAllTriggers()

	want := []string{"on:36", "on:38", "off:36", "on:36", "off:36", "off:38"}
	if got := s.notes(t); !equal(got, want) {
		t.Fatalf("notes = %v, want %v", got, want)
	}
}

func TestTriggerOutputDetached(t *testing.T) {
	o := midi.NewTriggerOutput(midi.GetKit("rd8"), 10, 127)
	o.SetTriggers(0b1111)
	o.ClearAllTriggers()
	if o.Lit() != 0 || o.Port() != "" {
		t.Fatalf("detached output latched lanes")
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestTriggerInput(t *testing.T) {
	var got []uint16
	in := midi.NewTriggerInput(midi.GetKit("gm"), 4, func(mask uint16) { got = append(got, mask) })
	in.HandleMessage(gomidi.NoteOn(0, 38, 90))  // snare, lane 1
	in.HandleMessage(gomidi.NoteOn(3, 46, 10))  // open hat, lane 3
	in.HandleMessage(gomidi.NoteOn(0, 49, 100)) // crash, lane 7: no jack
	in.HandleMessage(gomidi.NoteOn(0, 36, 0))   // running-status note off
	in.HandleMessage(gomidi.NoteOff(0, 36))
	if len(got) != 2 || got[0] != 0b0010 || got[1] != 0b1000 {
		t.Fatalf("triggers = %v", got)
	}
}

func TestKits(t *testing.T) {
	if midi.GetKit("nope").Name != midi.GetKit(midi.DefaultKit).Name {
		t.Fatalf("unknown kit did not fall back to default")
	}
	if midi.GetKit("rd8").Lane(40) != 1 || midi.GetKit("gm").Lane(40) != -1 {
		t.Fatalf("lane lookup wrong")
	}
	names := midi.KitNames()
	if len(names) != len(midi.Kits) || names[0] != "er1" {
		t.Fatalf("KitNames = %v", names)
	}
}

func TestPortManagerHotPlug(t *testing.T) {
	ports := []string{"Midi Through Port-0"}
	pm := midi.NewPortManager("tr-8s", "")
	pm.SetLister(func() ([]string, []string, bool) { return nil, ports, true })

	pm.Scan(context.Background())
	if pm.Current(midi.Output) != "" || len(pm.Events()) != 0 {
		t.Fatalf("matched the wrong port")
	}

	ports = append(ports, "TR-8S:TR-8S MIDI 1")
	pm.Scan(context.Background())
	pm.Scan(context.Background())
	ev := <-pm.Events()
	if ev.Type != midi.PortConnected || ev.Dir != midi.Output || ev.Name != "TR-8S:TR-8S MIDI 1" {
		t.Fatalf("event = %+v", ev)
	}
	if len(pm.Events()) != 0 {
		t.Fatalf("duplicate connect event")
	}

	ports = ports[:1]
	pm.Scan(context.Background())
	ev = <-pm.Events()
	if ev.Type != midi.PortDisconnected || pm.Current(midi.Output) != "" {
		t.Fatalf("event = %+v current = %q", ev, pm.Current(midi.Output))
	}
}

func TestPortManagerSkipsFailedScan(t *testing.T) {
	ok := true
	pm := midi.NewPortManager("", "keystep")
	pm.SetLister(func() ([]string, []string, bool) {
		if !ok {
			return nil, nil, false
		}
		return []string{"KeyStep 32"}, nil, true
	})
	pm.Scan(context.Background())
	<-pm.Events()
	ok = false
	pm.Scan(context.Background())
	if pm.Current(midi.Input) != "KeyStep 32" || len(pm.Events()) != 0 {
		t.Fatalf("hung driver dropped the port")
	}
}

func TestPortManagerRunClosesEvents(t *testing.T) {
	pm := midi.NewPortManager("x", "")
	pm.SetLister(func() ([]string, []string, bool) { return nil, nil, true })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pm.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return")
	}
	if _, open := <-pm.Events(); open {
		t.Fatalf("events channel still open")
	}
}

func TestPortManagerRunDoesNotBlockAfterCancel(t *testing.T) {
	pm := midi.NewPortManager("x", "")
	n := 0
	pm.SetLister(func() ([]string, []string, bool) {
		// a new port every scan; nobody drains the events
		n++
		return nil, []string{fmt.Sprint("x", n)}, true
	})
	ctx, cancel := context.WithCancel(context.Background())
	// one connect, then a disconnect and a connect per scan
	for i := 0; i < 8; i++ {
		pm.Scan(ctx)
	}
	if len(pm.Events()) != 15 {
		t.Fatalf("events = %d, want 15", len(pm.Events()))
	}

	done := make(chan struct{})
	go func() {
		pm.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run stuck on a full events channel after cancel")
	}
}
