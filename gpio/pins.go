// Package gpio models the trigger jack bank: one output pin per lane,
// driven at the deployment's trigger polarity.
package gpio

import (
	"sync/atomic"

	"trigseq/sequencer"
)

// Level is a logic level on an output pin
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// Trigger polarity. Inverting jack buffers swap these two.
const (
	TriggerOn  = High
	TriggerOff = Low
)

// OutputMap maps lane i to its physical pin
var OutputMap = [sequencer.NumTracks]int{2, 3, 4, 5}

// PinBank is an Output that drives one pin per lane. Pin levels are kept
// in a single word so the front panel can read them from another
// goroutine while the clock writes.
type PinBank struct {
	lanes atomic.Uint32
	pins  [sequencer.NumTracks]int
}

// NewPinBank returns a bank with every pin at TriggerOff
func NewPinBank() *PinBank {
	return &PinBank{pins: OutputMap}
}

// SetTriggers drives the pins of set lanes to TriggerOn; other pins are untouched
func (b *PinBank) SetTriggers(mask uint16) {
	b.lanes.Or(uint32(mask) & laneMask)
}

// ClearAllTriggers drives every pin to TriggerOff
func (b *PinBank) ClearAllTriggers() {
	b.lanes.Store(0)
}

// Lanes returns the energized lanes, bit i = lane i
func (b *PinBank) Lanes() uint16 {
	return uint16(b.lanes.Load())
}

// Level returns the electrical level of a physical pin. Pins not in the
// map read as TriggerOff.
func (b *PinBank) Level(pin int) Level {
	lanes := b.lanes.Load()
	for lane, p := range b.pins {
		if p == pin {
			if lanes&(1<<lane) != 0 {
				return TriggerOn
			}
			return TriggerOff
		}
	}
	return TriggerOff
}

// Pin returns the physical pin for a lane, or -1
func (b *PinBank) Pin(lane int) int {
	if lane < 0 || lane >= len(b.pins) {
		return -1
	}
	return b.pins[lane]
}

const laneMask = 1<<sequencer.NumTracks - 1
