package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trigseq/control"
	"trigseq/gpio"
	"trigseq/midi"
	"trigseq/sequencer"
	"trigseq/theme"
	"trigseq/widgets"
)

const frameRate = 30

// Model is the bubbletea front panel. It only reads the sequencer through
// Snapshot and writes through the controller.
type Model struct {
	Seq     *sequencer.Model
	Clock   *sequencer.Clock
	Control *control.Controller
	Pins    *gpio.PinBank
	Theme   *theme.Theme

	// Optional hot-plug wiring; nil Ports disables it
	Ports  *midi.PortManager
	OnPort func(midi.PortEvent)
	// Status describes the attached outputs for the header
	Status func() string

	quitting bool
	width    int
}

type frameMsg time.Time

type PortEventMsg midi.PortEvent

func NewModel(seq *sequencer.Model, clock *sequencer.Clock, ctrl *control.Controller, pins *gpio.PinBank, th *theme.Theme) Model {
	return Model{
		Seq:     seq,
		Clock:   clock,
		Control: ctrl,
		Pins:    pins,
		Theme:   th,
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func ListenForPorts(pm *midi.PortManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-pm.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.Ports == nil {
		return nextFrame()
	}
	return tea.Batch(nextFrame(), ListenForPorts(m.Ports))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.Seq.Stop()
			return m, tea.Quit
		}
		m.Control.HandleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case frameMsg:
		// tempo may have moved outside the controller
		m.Clock.Update()
		return m, nextFrame()

	case PortEventMsg:
		if m.OnPort != nil {
			m.OnPort(midi.PortEvent(msg))
		}
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

var keyHelp = []widgets.KeySection{
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "play/stop"},
		{Key: "b", Desc: "type tempo"},
		{Key: "enter", Desc: "pattern loop / song"},
		{Key: "t", Desc: "hardware test"},
	}},
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "1-4 q-r a-f z-v", Desc: "steps 1-16"},
		{Key: "up/down", Desc: "track"},
		{Key: "[ ]", Desc: "pattern"},
		{Key: "tab", Desc: "edit / perform"},
		{Key: "+/-", Desc: "swing"},
		{Key: "g", Desc: "quantize"},
		{Key: "#", Desc: "clear"},
		{Key: "backspace", Desc: "undo"},
	}},
}

var songHelp = widgets.KeySection{Title: "Song", Keys: []widgets.KeyBinding{
	{Key: "left/right", Desc: "select slot"},
	{Key: "[ ]", Desc: "slot pattern"},
	{Key: "i / x", Desc: "insert / delete"},
}}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Seq.Snapshot()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	promptStyle := lipgloss.NewStyle().Foreground(th.BG()).Background(th.Warning()).Padding(0, 1)

	playState := "STOP"
	if s.Playing {
		playState = "PLAY"
	}
	status := ""
	if m.Status != nil {
		status = "  " + m.Status()
	}
	header := headerStyle.Render(fmt.Sprintf("trigseq  %s  %3dbpm  %02d:%02d  %s  q:%s%s",
		playState, s.BPM, s.Step+1, s.Tick, s.PlayMode, s.Quantization, status))

	patterns := dimStyle.Render(fmt.Sprintf("view %02d  pending %02d  playing %02d  %s",
		s.ViewPattern+1, s.PendingPattern+1, s.PlayingPattern+1, m.Control.Mode()))

	// Step grid of the view pattern; the playhead only shows when the view
	// pattern is the one sounding.
	playhead := -1
	if s.Playing && s.ViewPattern == s.PlayingPattern {
		playhead = s.Step
	}
	var grid []string
	for t := 0; t < sequencer.NumTracks; t++ {
		steps := make([]bool, sequencer.NumSteps)
		for i := range steps {
			steps[i] = s.View[i]&(1<<t) != 0
		}
		grid = append(grid, widgets.RenderStepRow(th, widgets.StepRow{
			Label:    fmt.Sprintf("T%d %-9s", t+1, midi.SlotNames[t]),
			Steps:    steps,
			Playhead: playhead,
			Selected: t == s.ActiveTrack,
			Swing:    int(s.Swing[t]),
		}))
	}

	lamps := "OUT   " + widgets.RenderLamps(th, m.Pins.Lanes(), sequencer.NumTracks)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(patterns)
	out.WriteString("\n\n")
	out.WriteString(strings.Join(grid, "\n"))
	out.WriteString("\n\n")
	out.WriteString(lamps)

	help := keyHelp
	if s.PlayMode == sequencer.ModeSong {
		width := 16
		if m.width > 0 {
			width = max(4, (m.width-8)/3)
		}
		out.WriteString("\n\nSONG  ")
		out.WriteString(widgets.RenderPlaylist(th, s.Playlist, s.PlaylistCursor, m.Control.SelectedSlot(), width))
		help = append(help[:len(help):len(help)], songHelp)
	}

	switch mode := m.Control.Mode(); {
	case mode == control.ModeBPMInput:
		out.WriteString("\n\n")
		out.WriteString(promptStyle.Render(fmt.Sprintf("BPM: %s_  (30-300, enter/esc)", m.Control.InputBuffer())))
	case mode.Confirming():
		out.WriteString("\n\n")
		out.WriteString(promptStyle.Render(fmt.Sprintf("%s  y/n  # switches", mode)))
	case s.PlayMode == sequencer.ModeHardwareTest:
		out.WriteString("\n\n")
		out.WriteString(promptStyle.Render("HARDWARE TEST  t to leave"))
	}

	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(help)))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("ctrl+c quit"))

	return out.String()
}
