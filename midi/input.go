package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"trigseq/debug"
)

// TriggerInput listens to a MIDI keyboard or pad controller and turns
// NoteOn messages for kit notes into lane triggers.
type TriggerInput struct {
	kit       DrumKit
	lanes     int
	onTrigger func(mask uint16)

	mu   sync.Mutex
	name string
	stop func()
}

// NewTriggerInput creates a detached input. Notes for lanes at or above
// lanes are ignored.
func NewTriggerInput(kit DrumKit, lanes int, onTrigger func(mask uint16)) *TriggerInput {
	return &TriggerInput{kit: kit, lanes: lanes, onTrigger: onTrigger}
}

// HandleMessage processes one incoming message
func (in *TriggerInput) HandleMessage(msg gomidi.Message) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	lane := in.kit.Lane(note)
	if lane < 0 || lane >= in.lanes {
		return
	}
	in.onTrigger(1 << lane)
}

// Attach starts listening on port, replacing any previous one
func (in *TriggerInput) Attach(port drivers.In) error {
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
		in.HandleMessage(msg)
	})
	if err != nil {
		return fmt.Errorf("open input %s: %w", port.String(), err)
	}

	in.mu.Lock()
	old := in.stop
	in.stop = stop
	in.name = port.String()
	in.mu.Unlock()

	if old != nil {
		old()
	}
	debug.Log("midi", "input attached: %s", port.String())
	return nil
}

// Open attaches the first input port whose name contains name
func (in *TriggerInput) Open(name string) error {
	port, err := FindInPort(name)
	if err != nil {
		return err
	}
	return in.Attach(port)
}

// Port returns the attached port name, or ""
func (in *TriggerInput) Port() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.name
}

// Close stops listening
func (in *TriggerInput) Close() {
	in.mu.Lock()
	stop := in.stop
	in.stop = nil
	in.name = ""
	in.mu.Unlock()

	if stop != nil {
		stop()
	}
}
