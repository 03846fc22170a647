package sequencer

import (
	"sync/atomic"

	"trigseq/debug"
)

// Model is the sequence store: pattern pool, playlist, transport and the
// view/pending/playing pattern selection.
//
// Mutators are meant for a single editing goroutine. The clock goroutine only
// calls the read accessors plus AdvanceTick and ApplyPendingPattern. Every
// field both sides touch is an atomic cell written with single-word stores.
type Model struct {
	patterns [MaxPatterns]Pattern
	undo     Pattern

	playlist       [MaxSongLength]atomic.Int32
	playlistLength atomic.Int32
	playlistCursor atomic.Int32

	// bit 0 is the play flag, the rest counts Stop calls
	transport atomic.Uint32
	step      atomic.Int32
	tick    atomic.Int32
	bpm     atomic.Int32

	playMode     atomic.Int32
	quantization atomic.Int32

	viewPattern    atomic.Int32
	pendingPattern atomic.Int32
	playingPattern atomic.Int32
	activeTrack    atomic.Int32
}

// NewModel creates an empty store: all patterns zeroed, a one-slot playlist
// holding pattern 0, stopped at DefaultBPM with bar quantization.
func NewModel() *Model {
	m := &Model{}
	m.bpm.Store(DefaultBPM)
	m.playlistLength.Store(1)
	m.quantization.Store(int32(QuantizeBar))
	m.playMode.Store(int32(ModePatternLoop))
	return m
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Tempo

// SetBPM stores the tempo, clamped to [MinBPM, MaxBPM]
func (m *Model) SetBPM(bpm int) {
	m.bpm.Store(int32(clamp(bpm, MinBPM, MaxBPM)))
}

// BPM returns the stored tempo
func (m *Model) BPM() int {
	return int(m.bpm.Load())
}

// Transport

// Play starts transport and resyncs the playing and pending pattern to the
// one being viewed, in case it changed while stopped.
func (m *Model) Play() {
	view := m.viewPattern.Load()
	m.playingPattern.Store(view)
	m.pendingPattern.Store(view)
	m.transport.Or(1)
	debug.Log("transport", "play pattern=%d bpm=%d", view, m.BPM())
}

// Stop halts transport. The clock rewinds step, tick and song position on
// its next tick; it is the only writer of those counters.
func (m *Model) Stop() {
	for {
		old := m.transport.Load()
		if m.transport.CompareAndSwap(old, (old>>1+1)<<1) {
			break
		}
	}
	view := m.viewPattern.Load()
	m.playingPattern.Store(view)
	m.pendingPattern.Store(view)
	debug.Log("transport", "stop")
}

// IsPlaying reports the transport flag
func (m *Model) IsPlaying() bool {
	return m.transport.Load()&1 != 0
}

// stops returns how many times Stop has been called
func (m *Model) stops() uint32 {
	return m.transport.Load() >> 1
}

// rewind returns the counters to the top of the bar and song. Clock only.
func (m *Model) rewind() {
	m.step.Store(0)
	m.tick.Store(0)
	m.playlistCursor.Store(0)
}

// Navigation

// SetPattern selects the pattern to view and queues it for playback. The
// playing pattern follows immediately when stopped or in instant mode;
// otherwise the clock commits it at the next quantization boundary.
func (m *Model) SetPattern(id int) {
	id = clamp(id, 0, MaxPatterns-1)
	m.viewPattern.Store(int32(id))
	m.pendingPattern.Store(int32(id))
	if !m.IsPlaying() || m.Quantization() == QuantizeInstant {
		m.playingPattern.Store(int32(id))
	}
}

// NextPattern views the following pattern, if any
func (m *Model) NextPattern() {
	if v := m.ViewPatternID(); v < MaxPatterns-1 {
		m.SetPattern(v + 1)
	}
}

// PrevPattern views the preceding pattern, if any
func (m *Model) PrevPattern() {
	if v := m.ViewPatternID(); v > 0 {
		m.SetPattern(v - 1)
	}
}

// ApplyPendingPattern commits the queued pattern. Called by the clock on a
// quantization boundary.
func (m *Model) ApplyPendingPattern() {
	m.playingPattern.Store(m.pendingPattern.Load())
}

func (m *Model) ViewPatternID() int    { return int(m.viewPattern.Load()) }
func (m *Model) PendingPatternID() int { return int(m.pendingPattern.Load()) }

// PlayingPatternID returns the pattern the clock reads: the playlist slot
// under the cursor in song mode, the committed pattern otherwise.
func (m *Model) PlayingPatternID() int {
	if m.PlayMode() == ModeSong {
		cursor := clamp(int(m.playlistCursor.Load()), 0, MaxSongLength-1)
		return int(m.playlist[cursor].Load())
	}
	return int(m.playingPattern.Load())
}

// SetQuantization sets the pattern switch boundary
func (m *Model) SetQuantization(q Quantization) {
	if q < QuantizeBar || q > QuantizeInstant {
		return
	}
	m.quantization.Store(int32(q))
}

func (m *Model) Quantization() Quantization {
	return Quantization(m.quantization.Load())
}

// SetPlayMode switches between pattern loop, song and hardware test
func (m *Model) SetPlayMode(mode PlayMode) {
	if mode < ModePatternLoop || mode > ModeHardwareTest {
		return
	}
	m.playMode.Store(int32(mode))
	debug.Log("transport", "mode=%s", mode)
}

func (m *Model) PlayMode() PlayMode {
	return PlayMode(m.playMode.Load())
}

// SetActiveTrack selects the track edits apply to
func (m *Model) SetActiveTrack(track int) {
	m.activeTrack.Store(int32(clamp(track, 0, NumTracks-1)))
}

func (m *Model) ActiveTrack() int {
	return int(m.activeTrack.Load())
}

// Editing

func (m *Model) view() *Pattern {
	return &m.patterns[m.viewPattern.Load()]
}

// Pattern returns a pool slot for reading, nil when out of range
func (m *Model) Pattern(id int) *Pattern {
	if id < 0 || id >= MaxPatterns {
		return nil
	}
	return &m.patterns[id]
}

// ToggleStep flips one cell of the view pattern. Out of range is ignored.
func (m *Model) ToggleStep(track, step int) {
	if !validCell(track, step) {
		return
	}
	m.view().toggle(track, step)
}

// ClearTrack zeroes one track of the view pattern. It does not snapshot.
func (m *Model) ClearTrack(track int) {
	if track < 0 || track >= NumTracks {
		return
	}
	m.view().clearTrack(track)
}

// ClearCurrentPattern zeroes every cell of the view pattern. It does not
// snapshot.
func (m *Model) ClearCurrentPattern() {
	m.view().clear()
}

// Undo

// CreateSnapshot copies the view pattern into the undo buffer
func (m *Model) CreateSnapshot() {
	m.undo.copyFrom(m.view())
}

// Undo swaps the view pattern with the undo buffer; a second Undo redoes.
func (m *Model) Undo() {
	m.view().swap(&m.undo)
}

// Swing

// SetTrackSwing sets a track's swing on the view pattern, clamped to [0,100]
func (m *Model) SetTrackSwing(track, value int) {
	if track < 0 || track >= NumTracks {
		return
	}
	m.view().swing[track].Store(uint32(clamp(value, 0, MaxSwing)))
}

// TrackSwing returns a track's swing on the view pattern
func (m *Model) TrackSwing(track int) int {
	return int(m.view().Swing(track))
}

// PlayingTrackSwing returns a track's swing on the playing pattern
func (m *Model) PlayingTrackSwing(track int) int {
	return int(m.patterns[m.PlayingPatternID()].Swing(track))
}

// Clock interface

// AdvanceTick moves one PPQN sub-tick forward. stepped reports a new step,
// wrapped a new bar; in song mode a bar wrap also advances the playlist.
func (m *Model) AdvanceTick() (stepped, wrapped bool) {
	tick := m.tick.Load() + 1
	if tick < TicksPerStep {
		m.tick.Store(tick)
		return false, false
	}
	m.tick.Store(0)

	step := m.step.Load() + 1
	if step < NumSteps {
		m.step.Store(step)
		return true, false
	}
	m.step.Store(0)

	if m.PlayMode() == ModeSong {
		cursor := m.playlistCursor.Load() + 1
		if cursor >= m.playlistLength.Load() {
			cursor = 0
		}
		m.playlistCursor.Store(cursor)
	}
	return true, true
}

func (m *Model) CurrentStep() int { return int(m.step.Load()) }
func (m *Model) CurrentTick() int { return int(m.tick.Load()) }

// TriggersForStep returns the step's bitmask, bit i set when track i fires
func (m *Model) TriggersForStep(patternID, step int) uint16 {
	p := m.Pattern(patternID)
	if p == nil {
		return 0
	}
	return p.Mask(step)
}

// Snapshot copies the display-facing state
func (m *Model) Snapshot() State {
	s := State{
		Playing:        m.IsPlaying(),
		BPM:            m.BPM(),
		Step:           m.CurrentStep(),
		Tick:           m.CurrentTick(),
		PlayMode:       m.PlayMode(),
		Quantization:   m.Quantization(),
		ViewPattern:    m.ViewPatternID(),
		PendingPattern: m.PendingPatternID(),
		PlayingPattern: m.PlayingPatternID(),
		ActiveTrack:    m.ActiveTrack(),
		PlaylistCursor: m.PlaylistCursor(),
	}
	view := m.Pattern(s.ViewPattern)
	playing := m.Pattern(s.PlayingPattern)
	for i := 0; i < NumSteps; i++ {
		s.View[i] = view.Mask(i)
		s.Sounding[i] = playing.Mask(i)
	}
	for t := 0; t < NumTracks; t++ {
		s.Swing[t] = view.Swing(t)
	}
	n := m.PlaylistLength()
	s.Playlist = make([]int, n)
	for i := 0; i < n; i++ {
		s.Playlist[i] = m.PlaylistPattern(i)
	}
	return s
}
