package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"trigseq/midi"
	"trigseq/sequencer"
)

func main() {
	port := flag.String("port", "", "output port name (substring match)")
	kit := flag.String("kit", midi.DefaultKit, "drum kit: gm, rd8, tr8s, er1")
	channel := flag.Int("channel", 10, "MIDI channel 1-16")
	flag.Usage = usage
	flag.Parse()
	defer gomidi.CloseDriver()

	switch flag.Arg(0) {
	case "list":
		listPorts()
	case "fire":
		if err := fire(*port, *kit, *channel, flag.Arg(1)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "poll":
		pollPorts(*port)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Trigger output test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list              - List all MIDI ports")
	fmt.Println("  fire <mask>       - Fire lanes (e.g. 0b0101) for one pulse width")
	fmt.Println("  poll              - Report -port connecting and disconnecting")
	fmt.Println("")
	flag.PrintDefaults()
}

func listPorts() {
	fmt.Println("(waiting up to 3 seconds...)")
	ins, outs, ok := midi.SystemPorts()
	if !ok {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p)
	}
}

func fire(port, kit string, channel int, arg string) error {
	if port == "" {
		return fmt.Errorf("fire: -port is required")
	}
	mask, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return fmt.Errorf("fire: bad mask %q: %w", arg, err)
	}

	out := midi.NewTriggerOutput(midi.GetKit(kit), channel, 127)
	if err := out.Open(port); err != nil {
		return err
	}
	fmt.Printf("Using output: %s\n", out.Port())

	out.SetTriggers(uint16(mask))
	time.Sleep(sequencer.PulseWidth)
	out.ClearAllTriggers()
	return out.Close()
}

func pollPorts(port string) {
	if port == "" {
		fmt.Fprintln(os.Stderr, "poll: -port is required")
		os.Exit(1)
	}
	fmt.Printf("Watching for ports matching %q. Ctrl+C to exit.\n", port)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pm := midi.NewPortManager(port, port)
	go pm.Run(ctx)
	for ev := range pm.Events() {
		state := "connected"
		if ev.Type == midi.PortDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s %s: %s\n", time.Now().Format("15:04:05"), ev.Dir, state, ev.Name)
	}
}
