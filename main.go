package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"

	"trigseq/audio"
	"trigseq/config"
	"trigseq/control"
	"trigseq/debug"
	"trigseq/gpio"
	"trigseq/midi"
	"trigseq/sequencer"
	"trigseq/theme"
	"trigseq/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (.json, .yaml); default ~/.config/trigseq/config.json")
	debugLog := flag.Bool("debug", false, "write debug log to ~/.config/trigseq/debug.log")
	port := flag.String("port", "", "MIDI output port (overrides config)")
	saveConfig := flag.Bool("save-config", false, "write the effective config to the config path and exit")
	flag.Parse()

	if err := run(*configPath, *debugLog, *port, *saveConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debugLog bool, port string, saveConfig bool) (err error) {
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if port != "" {
		cfg.MIDI.PortName = port
	}
	if saveConfig {
		if configPath != "" {
			return cfg.SaveFile(configPath)
		}
		return cfg.Save()
	}

	if cfg.Debug || debugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, debug.Disable()) }()
	}
	defer gomidi.CloseDriver()

	palette := theme.DefaultPalette()
	if cfg.UI.PalettePath != "" {
		if palette, err = theme.LoadGPL(cfg.UI.PalettePath); err != nil {
			return err
		}
	}
	th := theme.New(palette)

	seq := sequencer.NewModel()
	seq.SetBPM(cfg.UI.Tempo)
	if q, ok := sequencer.ParseQuantization(cfg.UI.Quantization); ok {
		seq.SetQuantization(q)
	} else {
		debug.Log("config", "unknown quantization %q, using %s", cfg.UI.Quantization, seq.Quantization())
	}

	// Outputs: trigger jacks, MIDI drum notes, optional click
	kit := midi.GetKit(cfg.MIDI.Kit)
	pins := gpio.NewPinBank()
	trig := midi.NewTriggerOutput(kit, cfg.MIDI.Channel, cfg.MIDI.Velocity)
	outs := []sequencer.Output{pins, trig}
	if cfg.Audio.Click {
		clicker, cerr := audio.NewClicker(cfg.Audio.Volume)
		if cerr != nil {
			debug.Log("audio", "click disabled: %v", cerr)
		} else {
			outs = append(outs, clicker)
			defer func() { err = multierr.Append(err, clicker.Close()) }()
		}
	}

	clock := sequencer.NewClock(seq, sequencer.Tee(outs...))
	pads := midi.NewTriggerInput(kit, sequencer.NumTracks, clock.ManualTrigger)
	ctrl := control.New(seq, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go clock.Run(ctx)

	m := tui.NewModel(seq, clock, ctrl, pins, th)
	m.Status = func() string {
		if name := trig.Port(); name != "" {
			return "midi:" + name
		}
		return "midi:-"
	}

	switch {
	case cfg.MIDI.AutoConnect && (cfg.MIDI.PortName != "" || cfg.MIDI.InputPort != ""):
		pm := midi.NewPortManager(cfg.MIDI.PortName, cfg.MIDI.InputPort)
		go pm.Run(ctx)
		m.Ports = pm
		m.OnPort = func(ev midi.PortEvent) {
			handlePort(ev, trig, pads)
		}
	default:
		if err := openPorts(cfg.MIDI, trig.Open, pads.Open); err != nil {
			pads.Close()
			return multierr.Append(err, trig.Close())
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	cancel()

	pads.Close()
	return multierr.Append(err, trig.Close())
}

// openPorts opens the configured output and input ports. Either may be
// set without the other.
func openPorts(mc config.MIDIConfig, openOut, openIn func(name string) error) error {
	var err error
	if mc.PortName != "" {
		err = multierr.Append(err, openOut(mc.PortName))
	}
	if mc.InputPort != "" {
		err = multierr.Append(err, openIn(mc.InputPort))
	}
	return err
}

func handlePort(ev midi.PortEvent, trig *midi.TriggerOutput, pads *midi.TriggerInput) {
	switch {
	case ev.Type == midi.PortConnected && ev.Dir == midi.Output:
		if err := trig.Open(ev.Name); err != nil {
			debug.Log("midi", "attach %s: %v", ev.Name, err)
		}
	case ev.Type == midi.PortDisconnected && ev.Dir == midi.Output:
		trig.Detach()
	case ev.Type == midi.PortConnected && ev.Dir == midi.Input:
		if err := pads.Open(ev.Name); err != nil {
			debug.Log("midi", "listen %s: %v", ev.Name, err)
		}
	case ev.Type == midi.PortDisconnected && ev.Dir == midi.Input:
		pads.Close()
	}
}
