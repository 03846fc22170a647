package sequencer

import "trigseq/debug"

// Playlist (song) editing. Length stays in [1, MaxSongLength] and the
// cursor stays in [0, length).

func (m *Model) PlaylistLength() int { return int(m.playlistLength.Load()) }
func (m *Model) PlaylistCursor() int { return int(m.playlistCursor.Load()) }

// PlaylistPattern returns the pattern in a slot, 0 when out of range
func (m *Model) PlaylistPattern(slot int) int {
	if slot < 0 || slot >= m.PlaylistLength() {
		return 0
	}
	return int(m.playlist[slot].Load())
}

// SetPlaylistPattern assigns a pattern to an existing slot. Bad slots are
// ignored, the pattern ID is clamped.
func (m *Model) SetPlaylistPattern(slot, patternID int) {
	if slot < 0 || slot >= m.PlaylistLength() {
		return
	}
	m.playlist[slot].Store(int32(clamp(patternID, 0, MaxPatterns-1)))
}

// InsertPlaylistSlot inserts a pattern before slot, shifting later slots
// right. Slot is clamped to [0, length]; a full playlist is left unchanged.
func (m *Model) InsertPlaylistSlot(slot, patternID int) {
	n := m.PlaylistLength()
	if n >= MaxSongLength {
		debug.Log("playlist", "insert rejected: full (%d)", n)
		return
	}
	slot = clamp(slot, 0, n)
	for i := n; i > slot; i-- {
		m.playlist[i].Store(m.playlist[i-1].Load())
	}
	m.playlist[slot].Store(int32(clamp(patternID, 0, MaxPatterns-1)))
	m.playlistLength.Store(int32(n + 1))
}

// DeletePlaylistSlot removes a slot, shifting later slots left. The last
// remaining slot cannot be deleted.
func (m *Model) DeletePlaylistSlot(slot int) {
	n := m.PlaylistLength()
	if n <= 1 || slot < 0 || slot >= n {
		return
	}
	for i := slot; i < n-1; i++ {
		m.playlist[i].Store(m.playlist[i+1].Load())
	}
	n--
	m.playlistLength.Store(int32(n))
	if int(m.playlistCursor.Load()) >= n {
		m.playlistCursor.Store(int32(n - 1))
	}
}

// SetPlaylistCursor moves song playback to a slot; bad slots are ignored
func (m *Model) SetPlaylistCursor(slot int) {
	if slot < 0 || slot >= m.PlaylistLength() {
		return
	}
	m.playlistCursor.Store(int32(slot))
}
