package control

// Command is one front-panel action, independent of the key or switch
// that produced it.
type Command int

const (
	CmdNone Command = iota

	// transport
	CmdTransportToggle
	CmdModeToggle
	CmdSongModeToggle
	CmdTestToggle
	CmdBPMEnter
	CmdUndo

	// navigation
	CmdPatternPrev
	CmdPatternNext
	CmdTrackPrev
	CmdTrackNext
	CmdTrack1
	CmdTrack2
	CmdTrack3
	CmdTrack4
	CmdPlaylistPrev
	CmdPlaylistNext

	// step keys, contiguous
	CmdTrigger1
	CmdTrigger2
	CmdTrigger3
	CmdTrigger4
	CmdTrigger5
	CmdTrigger6
	CmdTrigger7
	CmdTrigger8
	CmdTrigger9
	CmdTrigger10
	CmdTrigger11
	CmdTrigger12
	CmdTrigger13
	CmdTrigger14
	CmdTrigger15
	CmdTrigger16

	// playlist editing
	CmdPlaylistInsert
	CmdPlaylistDelete

	// confirmation
	CmdClearPrompt
	CmdConfirmYes
	CmdConfirmNo

	// groove
	CmdQuantizeCycle
	CmdSwingUp
	CmdSwingDown
)

// Trigger returns the step command for index 0-15
func Trigger(i int) Command {
	if i < 0 || i > 15 {
		return CmdNone
	}
	return CmdTrigger1 + Command(i)
}

// TriggerIndex returns the step index of a trigger command, or -1
func (c Command) TriggerIndex() int {
	if c < CmdTrigger1 || c > CmdTrigger16 {
		return -1
	}
	return int(c - CmdTrigger1)
}

// trackSelect returns the track of a CmdTrackN command, or -1
func (c Command) trackSelect() int {
	if c < CmdTrack1 || c > CmdTrack4 {
		return -1
	}
	return int(c - CmdTrack1)
}

// Switch maps a front-panel matrix switch (1-32) to its command. Row one is
// the sixteen step keys; row two holds the function keys.
func Switch(id int) Command {
	if id >= 1 && id <= 16 {
		return Trigger(id - 1)
	}
	switch id {
	case 17:
		return CmdTrack1
	case 18:
		return CmdTrack2
	case 19:
		return CmdTrack3
	case 20:
		return CmdTrack4
	case 25:
		return CmdClearPrompt
	case 26:
		return CmdTrackPrev
	case 27:
		return CmdTrackNext
	case 28:
		return CmdPatternPrev
	case 29:
		return CmdPatternNext
	case 30:
		return CmdTransportToggle
	case 31:
		return CmdModeToggle
	}
	// 32 is shift
	return CmdNone
}
