package midi

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/multierr"

	"trigseq/debug"
)

// SendFunc delivers one message to a port
type SendFunc func(msg gomidi.Message) error

// TriggerOutput turns lane triggers into drum notes on a MIDI port.
// SetTriggers sends NoteOn for each energized lane and ClearAllTriggers
// sends NoteOff for every lit lane, so the note length follows the pulse.
//
// The clock goroutine calls SetTriggers and ClearAllTriggers; Attach and
// Detach may run concurrently from the port manager.
type TriggerOutput struct {
	kit      DrumKit
	channel  uint8 // 0-based
	velocity uint8

	send atomic.Pointer[SendFunc]
	lit  atomic.Uint32

	mu   sync.Mutex // guards port
	port drivers.Out
}

// NewTriggerOutput creates a detached output. channel is 1-16.
func NewTriggerOutput(kit DrumKit, channel, velocity int) *TriggerOutput {
	return &TriggerOutput{
		kit:      kit,
		channel:  uint8(max(1, min(16, channel)) - 1),
		velocity: uint8(max(1, min(127, velocity))),
	}
}

// SetSender installs fn as the message sink (nil detaches)
func (o *TriggerOutput) SetSender(fn SendFunc) {
	if fn == nil {
		o.send.Store(nil)
		return
	}
	o.send.Store(&fn)
}

// SetTriggers sends NoteOn for every set lane. A lane that is still lit
// gets a NoteOff first so the receiver retriggers.
func (o *TriggerOutput) SetTriggers(mask uint16) {
	sp := o.send.Load()
	if sp == nil {
		return
	}
	send := *sp
	prev := uint16(o.lit.Or(uint32(mask)))
	for lane := 0; lane < len(o.kit.Notes); lane++ {
		bit := uint16(1) << lane
		if mask&bit == 0 {
			continue
		}
		note := o.kit.Notes[lane]
		if prev&bit != 0 {
			send(gomidi.NoteOff(o.channel, note))
		}
		send(gomidi.NoteOn(o.channel, note, o.velocity))
	}
}

// ClearAllTriggers sends NoteOff for every lit lane
func (o *TriggerOutput) ClearAllTriggers() {
	lit := uint16(o.lit.Swap(0))
	sp := o.send.Load()
	if sp == nil || lit == 0 {
		return
	}
	send := *sp
	for lane := 0; lane < len(o.kit.Notes); lane++ {
		if lit&(1<<lane) != 0 {
			send(gomidi.NoteOff(o.channel, o.kit.Notes[lane]))
		}
	}
}

// Lit returns the lanes with a sounding note
func (o *TriggerOutput) Lit() uint16 {
	return uint16(o.lit.Load())
}

// Attach opens out and starts sending to it, replacing any previous port
func (o *TriggerOutput) Attach(out drivers.Out) error {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open output %s: %w", out.String(), err)
	}

	o.mu.Lock()
	old := o.port
	o.port = out
	o.mu.Unlock()

	o.SetSender(send)
	if old != nil && old != out {
		old.Close()
	}
	debug.Log("midi", "output attached: %s (channel %d, kit %s)", out.String(), o.channel+1, o.kit.Name)
	return nil
}

// Open attaches the first output port whose name contains name
// (case-insensitive).
func (o *TriggerOutput) Open(name string) error {
	out, err := FindOutPort(name)
	if err != nil {
		return err
	}
	return o.Attach(out)
}

// Port returns the attached port name, or ""
func (o *TriggerOutput) Port() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.port == nil {
		return ""
	}
	return o.port.String()
}

// Detach stops sending. The port is not closed; it is usually already gone.
func (o *TriggerOutput) Detach() {
	o.SetSender(nil)
	o.lit.Store(0)

	o.mu.Lock()
	name := ""
	if o.port != nil {
		name = o.port.String()
	}
	o.port = nil
	o.mu.Unlock()

	if name != "" {
		debug.Log("midi", "output detached: %s", name)
	}
}

// Close releases sounding notes and closes the port
func (o *TriggerOutput) Close() error {
	var err error
	if sp := o.send.Load(); sp != nil {
		lit := uint16(o.lit.Swap(0))
		for lane := 0; lane < len(o.kit.Notes); lane++ {
			if lit&(1<<lane) != 0 {
				err = multierr.Append(err, (*sp)(gomidi.NoteOff(o.channel, o.kit.Notes[lane])))
			}
		}
	}
	o.SetSender(nil)

	o.mu.Lock()
	port := o.port
	o.port = nil
	o.mu.Unlock()

	if port != nil {
		err = multierr.Append(err, port.Close())
	}
	return err
}

// FindOutPort returns the first output port whose name contains name
func FindOutPort(name string) (drivers.Out, error) {
	want := strings.ToLower(name)
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", name)
}

// FindInPort returns the first input port whose name contains name
func FindInPort(name string) (drivers.In, error) {
	want := strings.ToLower(name)
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input matching %q", name)
}
