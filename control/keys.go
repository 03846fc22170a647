package control

import "trigseq/sequencer"

// step keys: four rows of four on a QWERTY board
var stepKeys = []string{
	"1", "2", "3", "4",
	"q", "w", "e", "r",
	"a", "s", "d", "f",
	"z", "x", "c", "v",
}

var keyMap = map[string]Command{
	" ":         CmdTransportToggle,
	"space":     CmdTransportToggle,
	"tab":       CmdModeToggle,
	"enter":     CmdSongModeToggle,
	"t":         CmdTestToggle,
	"b":         CmdBPMEnter,
	"B":         CmdBPMEnter,
	"backspace": CmdUndo,
	"delete":    CmdUndo,

	"[":     CmdPatternPrev,
	"]":     CmdPatternNext,
	"up":    CmdTrackPrev,
	"down":  CmdTrackNext,
	"left":  CmdPlaylistPrev,
	"right": CmdPlaylistNext,

	"i":   CmdPlaylistInsert,
	"I":   CmdPlaylistInsert,
	"#":   CmdClearPrompt,
	"y":   CmdConfirmYes,
	"Y":   CmdConfirmYes,
	"n":   CmdConfirmNo,
	"N":   CmdConfirmNo,
	"esc": CmdConfirmNo,

	"g": CmdQuantizeCycle,
	"+": CmdSwingUp,
	"=": CmdSwingUp,
	"-": CmdSwingDown,
	"_": CmdSwingDown,
}

func init() {
	for i, k := range stepKeys {
		keyMap[k] = Trigger(i)
	}
}

// KeyCommand translates a bubbletea key name to a command. "x" deletes the
// selected playlist slot in song mode and is step 14 otherwise.
func KeyCommand(key string, mode sequencer.PlayMode) Command {
	if key == "x" && mode == sequencer.ModeSong {
		return CmdPlaylistDelete
	}
	return keyMap[key]
}
