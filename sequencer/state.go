package sequencer

import (
	"sync/atomic"
	"time"
)

// System limits
const (
	NumTracks     = 4
	NumSteps      = 16
	MaxPatterns   = 64
	MaxSongLength = 128
)

// Timing
const (
	PPQN          = 96
	TicksPerStep  = PPQN / 4 // 16th notes
	MaxSwingTicks = TicksPerStep / 2

	DefaultBPM  = 120
	MinBPM      = 10
	MaxBPM      = 300
	MinEntryBPM = 30 // narrower clamp for typed tempo entry

	PulseWidth   = 15 * time.Millisecond
	TickInterval = 500 * time.Microsecond
	PulseTicks   = int32(PulseWidth / TickInterval)
)

// MaxSwing is the top of the per-track swing range (0 = straight).
const MaxSwing = 100

// PlayMode selects what drives the playing pattern
type PlayMode int32

const (
	ModePatternLoop PlayMode = iota
	ModeSong
	ModeHardwareTest
)

func (m PlayMode) String() string {
	switch m {
	case ModePatternLoop:
		return "LOOP"
	case ModeSong:
		return "SONG"
	case ModeHardwareTest:
		return "TEST"
	}
	return "?"
}

// Quantization governs when a pending pattern becomes the playing pattern
type Quantization int32

const (
	QuantizeBar Quantization = iota
	QuantizeQuarter
	QuantizeEighth
	QuantizeInstant
)

var quantizationNames = [...]string{"bar", "quarter", "eighth", "instant"}

func (q Quantization) String() string {
	if q < 0 || int(q) >= len(quantizationNames) {
		return "?"
	}
	return quantizationNames[q]
}

// Next cycles bar → quarter → eighth → instant → bar
func (q Quantization) Next() Quantization {
	return (q + 1) % Quantization(len(quantizationNames))
}

// ParseQuantization maps a config name to a mode
func ParseQuantization(name string) (Quantization, bool) {
	for i, n := range quantizationNames {
		if n == name {
			return Quantization(i), true
		}
	}
	return QuantizeBar, false
}

// Ready reports whether a pending pattern may commit on a step boundary
func (q Quantization) Ready(step int) bool {
	switch q {
	case QuantizeBar:
		return step == 0
	case QuantizeQuarter:
		return step%4 == 0
	case QuantizeEighth:
		return step%2 == 0
	case QuantizeInstant:
		return true
	}
	return false
}

// Pattern is one slot of the pattern pool.
//
// Each step is a single word with bit t set when track t fires, so the clock
// can read a whole step while the editor toggles a cell. Patterns live in the
// Model's fixed pool and must not be copied; use copyFrom/swap.
type Pattern struct {
	steps [NumSteps]atomic.Uint32
	swing [NumTracks]atomic.Uint32
}

func validCell(track, step int) bool {
	return track >= 0 && track < NumTracks && step >= 0 && step < NumSteps
}

// Active reports whether (track, step) is set
func (p *Pattern) Active(track, step int) bool {
	if !validCell(track, step) {
		return false
	}
	return p.steps[step].Load()&(1<<track) != 0
}

// Mask returns the trigger bitmask for a step
func (p *Pattern) Mask(step int) uint16 {
	if step < 0 || step >= NumSteps {
		return 0
	}
	return uint16(p.steps[step].Load())
}

// Swing returns a track's swing amount
func (p *Pattern) Swing(track int) uint8 {
	if track < 0 || track >= NumTracks {
		return 0
	}
	return uint8(p.swing[track].Load())
}

// Empty reports whether no cell is set
func (p *Pattern) Empty() bool {
	for i := range p.steps {
		if p.steps[i].Load() != 0 {
			return false
		}
	}
	return true
}

func (p *Pattern) toggle(track, step int) {
	bit := uint32(1) << track
	for {
		old := p.steps[step].Load()
		if p.steps[step].CompareAndSwap(old, old^bit) {
			return
		}
	}
}

func (p *Pattern) clearTrack(track int) {
	bit := uint32(1) << track
	for s := range p.steps {
		p.steps[s].And(^bit)
	}
}

func (p *Pattern) clear() {
	for s := range p.steps {
		p.steps[s].Store(0)
	}
}

func (p *Pattern) copyFrom(src *Pattern) {
	for s := range p.steps {
		p.steps[s].Store(src.steps[s].Load())
	}
	for t := range p.swing {
		p.swing[t].Store(src.swing[t].Load())
	}
}

func (p *Pattern) swap(other *Pattern) {
	for s := range p.steps {
		p.steps[s].Store(other.steps[s].Swap(p.steps[s].Load()))
	}
	for t := range p.swing {
		p.swing[t].Store(other.swing[t].Swap(p.swing[t].Load()))
	}
}

// State is a point-in-time copy of everything the display renders.
// Fields are read one at a time, so a snapshot taken mid-edit may mix
// values from either side of that edit.
type State struct {
	Playing      bool
	BPM          int
	Step         int
	Tick         int
	PlayMode     PlayMode
	Quantization Quantization

	ViewPattern    int
	PendingPattern int
	PlayingPattern int
	ActiveTrack    int

	View     [NumSteps]uint16 // step masks of the view pattern
	Sounding [NumSteps]uint16 // step masks of the playing pattern
	Swing    [NumTracks]uint8 // view pattern

	Playlist       []int
	PlaylistCursor int
}
