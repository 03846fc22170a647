package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"trigseq/control"
	"trigseq/gpio"
	"trigseq/midi"
	"trigseq/sequencer"
	"trigseq/theme"
	"trigseq/tui"
)

func newPanel() (tui.Model, *sequencer.Model) {
	seq := sequencer.NewModel()
	pins := gpio.NewPinBank()
	clock := sequencer.NewClock(seq, pins)
	return tui.NewModel(seq, clock, control.New(seq, clock), pins, theme.New(nil)), seq
}

func press(m tea.Model, key string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return m
}

func TestKeysReachController(t *testing.T) {
	panel, seq := newPanel()
	m := press(panel, "1")
	m = press(m, "b")
	if !seq.Pattern(0).Active(0, 0) {
		t.Fatalf("step key did not toggle")
	}
	if !strings.Contains(m.View(), "BPM: _") {
		t.Fatalf("tempo prompt missing:\n%s", m.View())
	}
}

func TestViewShowsTransport(t *testing.T) {
	panel, seq := newPanel()
	seq.SetBPM(133)
	seq.Play()
	view := panel.View()
	for _, want := range []string{"trigseq", "PLAY", "133bpm", "LOOP", "T1 Kick", "T4 Open HH"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "SONG ") {
		t.Fatalf("playlist shown in loop mode")
	}
	seq.SetPlayMode(sequencer.ModeSong)
	if !strings.Contains(panel.View(), "SONG  ") {
		t.Fatalf("playlist missing in song mode")
	}
}

func TestQuitStopsTransport(t *testing.T) {
	panel, seq := newPanel()
	seq.Play()
	m, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || seq.IsPlaying() || m.View() != "" {
		t.Fatalf("ctrl+c did not quit cleanly")
	}
}

func TestPortEventsForwarded(t *testing.T) {
	panel, _ := newPanel()
	var got []midi.PortEvent
	panel.Ports = midi.NewPortManager("x", "")
	panel.OnPort = func(ev midi.PortEvent) { got = append(got, ev) }
	ev := midi.PortEvent{Type: midi.PortConnected, Name: "x"}
	if _, cmd := panel.Update(tui.PortEventMsg(ev)); cmd == nil {
		t.Fatalf("did not keep listening")
	}
	if len(got) != 1 || got[0] != ev {
		t.Fatalf("events = %+v", got)
	}
}
