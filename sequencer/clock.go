package sequencer

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"trigseq/debug"
)

// Tempo arithmetic is done in µs×BPM so a sub-tick period is an exact
// integer for every tempo: 60e6 µs/min / PPQN.
const (
	tickMicros  = int64(TickInterval / time.Microsecond)
	periodUnits = int64(60_000_000 / PPQN)
)

// Catch-up ceiling for Run: a stall longer than this is dropped instead of
// replayed as a burst of triggers.
const maxCatchUpTicks = 64

// SubTickPeriodMS returns the duration of one PPQN sub-tick in milliseconds
func SubTickPeriodMS(bpm int) float64 {
	return 60000.0 / (float64(bpm) * PPQN)
}

// Clock is the scheduler. HandleTick is its interrupt handler: Run calls it
// every TickInterval from one goroutine; tests call it directly.
type Clock struct {
	model *Model
	out   Output

	// shared with the editing goroutine
	cachedBPM   atomic.Int32
	running     atomic.Bool
	firstTick   atomic.Bool
	pulseActive atomic.Bool
	pulseTicks  atomic.Int32

	// tick goroutine only
	acc   int64 // µs×BPM, below periodUnits between ticks
	stops uint32
}

// NewClock creates a clock reading model and writing out
func NewClock(model *Model, out Output) *Clock {
	if out == nil {
		out = Discard
	}
	c := &Clock{model: model, out: out, stops: model.stops()}
	c.Update()
	return c
}

// Update refreshes the cached tempo from the model. Call it from the editing
// goroutine after changing BPM; the tick path only sees the cached value.
func (c *Clock) Update() {
	bpm := int32(c.model.BPM())
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	if c.cachedBPM.Load() != bpm {
		c.cachedBPM.Store(bpm)
	}
}

// ManualTrigger fires lanes now and restarts the pulse, regardless of
// transport state.
func (c *Clock) ManualTrigger(mask uint16) {
	c.pulseTicks.Store(0)
	c.pulseActive.Store(true)
	c.out.SetTriggers(mask)
}

// Running reports whether the clock has picked up a transport start
func (c *Clock) Running() bool { return c.running.Load() }

// PulseActive reports whether any lane is currently energized by the clock
func (c *Clock) PulseActive() bool { return c.pulseActive.Load() }

// HandleTick advances the clock by one TickInterval. It never blocks,
// allocates or takes a lock.
func (c *Clock) HandleTick() {
	m := c.model
	if m.PlayMode() == ModeHardwareTest {
		return
	}

	// Pulses retire even while stopped
	if c.pulseActive.Load() {
		if c.pulseTicks.Add(1) >= PulseTicks {
			c.out.ClearAllTriggers()
			c.pulseActive.Store(false)
		}
	}

	// A Stop since the last tick rewinds, even if Play followed it. Flag
	// and stop count come from one load so they agree.
	transport := m.transport.Load()
	playing := transport&1 != 0
	running := c.running.Load()
	if stops := transport >> 1; stops != c.stops {
		c.stops = stops
		m.rewind()
		if running {
			running = false
			c.running.Store(false)
		}
	}
	if playing && !running {
		running = true
		c.running.Store(true)
		c.firstTick.Store(true)
		c.acc = periodUnits
	} else if !playing && running {
		running = false
		c.running.Store(false)
	}
	if !running {
		return
	}

	// The period is the same at every tempo, so acc is the phase within a
	// sub-tick and a tempo change needs no rescale.
	c.acc += tickMicros * int64(c.cachedBPM.Load())
	for c.acc >= periodUnits {
		c.acc -= periodUnits
		c.pulse()
	}
}

// pulse performs one PPQN advance
func (c *Clock) pulse() {
	m := c.model
	if c.firstTick.Load() {
		// fire the step already on screen instead of the one after it
		c.firstTick.Store(false)
		c.fire(m.CurrentStep(), m.CurrentTick())
		return
	}

	m.AdvanceTick()
	step, tick := m.CurrentStep(), m.CurrentTick()
	if tick == 0 && m.Quantization().Ready(step) {
		m.ApplyPendingPattern()
	}
	c.fire(step, tick)
}

// SwingTarget returns the sub-tick a step fires on for a swing amount.
// Even steps stay on the grid; odd steps slide by up to half a step.
func SwingTarget(step, swing int) int {
	if step%2 == 0 {
		return 0
	}
	return swing * MaxSwingTicks / MaxSwing
}

func (c *Clock) fire(step, tick int) {
	m := c.model
	pattern := m.PlayingPatternID()
	triggers := m.TriggersForStep(pattern, step)
	if triggers == 0 {
		return
	}

	var mask uint16
	for t := 0; t < NumTracks; t++ {
		bit := uint16(1) << t
		if triggers&bit == 0 {
			continue
		}
		if tick == SwingTarget(step, m.PlayingTrackSwing(t)) {
			mask |= bit
		}
	}

	if mask != 0 {
		c.pulseTicks.Store(0)
		c.pulseActive.Store(true)
		c.out.SetTriggers(mask)
	}
}

// Run drives HandleTick from a ticker until ctx is done. Ticks are counted
// against the monotonic clock, so ticks the runtime delivers late are
// replayed rather than lost.
func (c *Clock) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c.Update()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	start := time.Now()
	var handled int64
	debug.Log("clock", "run: tick=%v pulse=%d ticks", TickInterval, PulseTicks)

	for {
		select {
		case <-ctx.Done():
			debug.Log("clock", "run: stopped after %d ticks", handled)
			return ctx.Err()
		case now := <-ticker.C:
			due := int64(now.Sub(start) / TickInterval)
			if due-handled > maxCatchUpTicks {
				debug.LogEvery(16, "clock", "resync: dropped %d ticks", due-handled-1)
				handled = due - 1
			}
			for handled < due {
				c.HandleTick()
				handled++
			}
		}
	}
}
