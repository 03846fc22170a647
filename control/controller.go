// Package control turns front-panel input into sequencer operations. It
// owns the interface mode (step edit, perform, tempo entry, clear prompts)
// and the song-mode playlist selection.
package control

import (
	"strconv"

	"trigseq/debug"
	"trigseq/sequencer"
)

// Mode is the interface mode
type Mode int

const (
	ModeStepEdit Mode = iota
	ModePerform
	ModeBPMInput
	ModeConfirmClearTrack
	ModeConfirmClearPattern
)

func (m Mode) String() string {
	switch m {
	case ModePerform:
		return "PERFORM"
	case ModeBPMInput:
		return "BPM"
	case ModeConfirmClearTrack:
		return "CLEAR TRACK?"
	case ModeConfirmClearPattern:
		return "CLEAR PATTERN?"
	}
	return "EDIT"
}

// Confirming reports whether a clear prompt is open
func (m Mode) Confirming() bool {
	return m == ModeConfirmClearTrack || m == ModeConfirmClearPattern
}

const (
	bpmDigits = 3
	swingStep = 5
)

// Controller executes commands against the model and clock. It is driven
// from a single goroutine (the UI loop).
type Controller struct {
	model *sequencer.Model
	clock *sequencer.Clock

	mode     Mode
	input    []byte
	selected int // playlist slot being edited in song mode
}

// New creates a controller in step edit mode
func New(model *sequencer.Model, clock *sequencer.Clock) *Controller {
	return &Controller{model: model, clock: clock}
}

// Mode returns the interface mode
func (c *Controller) Mode() Mode { return c.mode }

// InputBuffer returns the digits typed so far in tempo entry
func (c *Controller) InputBuffer() string { return string(c.input) }

// SelectedSlot returns the playlist slot being edited
func (c *Controller) SelectedSlot() int { return c.selected }

// HandleKey processes one key press by its bubbletea name. It reports
// whether the key did anything.
func (c *Controller) HandleKey(key string) bool {
	if c.mode == ModeBPMInput {
		c.handleBPMKey(key)
		c.clock.Update()
		return true
	}

	cmd := KeyCommand(key, c.model.PlayMode())
	if cmd == CmdNone {
		return false
	}
	c.HandleCommand(cmd)
	return true
}

// HandleCommand executes a command and pushes any tempo change to the clock
func (c *Controller) HandleCommand(cmd Command) {
	c.handle(cmd)
	c.clock.Update()
}

func (c *Controller) handle(cmd Command) {
	m := c.model

	// test mode toggles from anywhere
	if cmd == CmdTestToggle {
		if m.PlayMode() == sequencer.ModeHardwareTest {
			m.SetPlayMode(sequencer.ModePatternLoop)
			m.Stop()
		} else {
			m.SetPlayMode(sequencer.ModeHardwareTest)
		}
		return
	}

	if c.mode.Confirming() {
		c.handleConfirm(cmd)
		return
	}

	switch cmd {
	case CmdTransportToggle:
		if m.IsPlaying() {
			m.Stop()
		} else {
			m.Play()
		}
		return
	case CmdModeToggle:
		if c.mode == ModeStepEdit {
			c.mode = ModePerform
		} else {
			c.mode = ModeStepEdit
		}
		return
	case CmdSongModeToggle:
		if m.PlayMode() == sequencer.ModePatternLoop {
			m.SetPlayMode(sequencer.ModeSong)
		} else {
			m.SetPlayMode(sequencer.ModePatternLoop)
		}
		return
	case CmdUndo:
		m.Undo()
		return
	case CmdBPMEnter:
		c.mode = ModeBPMInput
		c.input = c.input[:0]
		return
	case CmdQuantizeCycle:
		m.SetQuantization(m.Quantization().Next())
		return
	case CmdSwingUp, CmdSwingDown:
		delta := swingStep
		if cmd == CmdSwingDown {
			delta = -swingStep
		}
		t := m.ActiveTrack()
		m.SetTrackSwing(t, m.TrackSwing(t)+delta)
		return
	}

	if t := cmd.trackSelect(); t >= 0 {
		m.SetActiveTrack(t)
		return
	}

	if m.PlayMode() == sequencer.ModeSong {
		c.handleSong(cmd)
		return
	}

	switch cmd {
	case CmdPatternPrev:
		m.PrevPattern()
	case CmdPatternNext:
		m.NextPattern()
	case CmdTrackNext:
		m.SetActiveTrack(m.ActiveTrack() + 1)
	case CmdTrackPrev:
		m.SetActiveTrack(m.ActiveTrack() - 1)
	case CmdClearPrompt:
		c.mode = ModeConfirmClearTrack
	default:
		if i := cmd.TriggerIndex(); i >= 0 {
			c.trigger(i)
		}
	}
}

// handleConfirm resolves an open clear prompt. The first four step keys and
// Enter also confirm; the last four step keys also cancel. Pressing the
// prompt key again switches between track and pattern.
func (c *Controller) handleConfirm(cmd Command) {
	i := cmd.TriggerIndex()
	yes := cmd == CmdConfirmYes || cmd == CmdSongModeToggle || (i >= 0 && i < 4)
	no := cmd == CmdConfirmNo || i >= 12

	switch {
	case yes:
		m := c.model
		m.CreateSnapshot()
		if c.mode == ModeConfirmClearTrack {
			m.ClearTrack(m.ActiveTrack())
			debug.Log("edit", "cleared track %d of pattern %d", m.ActiveTrack()+1, m.ViewPatternID())
		} else {
			m.ClearCurrentPattern()
			debug.Log("edit", "cleared pattern %d", m.ViewPatternID())
		}
		c.mode = ModeStepEdit
	case cmd == CmdClearPrompt:
		if c.mode == ModeConfirmClearTrack {
			c.mode = ModeConfirmClearPattern
		} else {
			c.mode = ModeConfirmClearTrack
		}
	case no:
		c.mode = ModeStepEdit
	}
}

func (c *Controller) handleSong(cmd Command) {
	m := c.model
	n := m.PlaylistLength()
	if c.selected >= n {
		c.selected = n - 1
	}

	switch cmd {
	case CmdPlaylistPrev:
		if c.selected > 0 {
			c.selected--
		}
	case CmdPlaylistNext:
		if c.selected < n-1 {
			c.selected++
		}
	case CmdPatternNext:
		p := m.PlaylistPattern(c.selected)
		m.SetPlaylistPattern(c.selected, (p+1)%sequencer.MaxPatterns)
	case CmdPatternPrev:
		p := m.PlaylistPattern(c.selected) - 1
		if p < 0 {
			p = sequencer.MaxPatterns - 1
		}
		m.SetPlaylistPattern(c.selected, p)
	case CmdPlaylistInsert:
		if n >= sequencer.MaxSongLength {
			return
		}
		m.InsertPlaylistSlot(c.selected+1, m.PlaylistPattern(c.selected))
		c.selected++
	case CmdPlaylistDelete:
		m.DeletePlaylistSlot(c.selected)
		if n := m.PlaylistLength(); c.selected >= n {
			c.selected = n - 1
		}
	}

	// stopped, the selection cues where playback starts
	if !m.IsPlaying() {
		m.SetPlaylistCursor(c.selected)
	}
}

// trigger handles step key i: toggle a step in edit mode, fire a lane in
// perform mode.
func (c *Controller) trigger(i int) {
	if c.mode == ModePerform {
		if i < sequencer.NumTracks {
			c.clock.ManualTrigger(1 << i)
		}
		return
	}
	m := c.model
	m.CreateSnapshot()
	m.ToggleStep(m.ActiveTrack(), i)
}

func (c *Controller) handleBPMKey(key string) {
	switch key {
	case "enter":
		if len(c.input) > 0 {
			bpm, err := strconv.Atoi(string(c.input))
			if err == nil && bpm >= sequencer.MinEntryBPM && bpm <= sequencer.MaxBPM {
				c.model.SetBPM(bpm)
			}
		}
		c.mode = ModeStepEdit
	case "esc":
		c.mode = ModeStepEdit
	case "backspace", "delete":
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && len(c.input) < bpmDigits {
			c.input = append(c.input, key[0])
		}
	}
}
