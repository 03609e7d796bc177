// Package rewind implements a bounded ring of save-state snapshots,
// recorded at a cadence the host controls and addressable by index for
// rewinding gameplay. Consecutive identical snapshots (the host keeps
// recording while a game is paused) are deduplicated by a 64-bit hash of
// their serialized bytes, mirroring the way the teacher's web streamer
// hashes outgoing frames to skip ones the client already has cached.
package rewind

import "github.com/cespare/xxhash"

// Buffer holds up to capacity snapshots in recording order, oldest
// first; once full, recording a new point evicts the oldest.
type Buffer struct {
	capacity int
	points   [][]byte
	hashes   []uint64
}

// New returns an empty Buffer bounded to the given capacity. A capacity
// of 0 or less disables recording: Record becomes a no-op and Count is
// always 0.
func New(capacity int) *Buffer {
	return &Buffer{capacity: capacity}
}

// Record appends a snapshot unless it is byte-identical to the most
// recently recorded one, in which case the ring is left untouched.
func (b *Buffer) Record(snapshot []byte) {
	if b.capacity <= 0 {
		return
	}
	h := xxhash.Sum64(snapshot)
	if n := len(b.hashes); n > 0 && b.hashes[n-1] == h {
		return
	}

	cp := make([]byte, len(snapshot))
	copy(cp, snapshot)

	b.points = append(b.points, cp)
	b.hashes = append(b.hashes, h)
	if len(b.points) > b.capacity {
		b.points = b.points[1:]
		b.hashes = b.hashes[1:]
	}
}

// Count reports how many points are currently held.
func (b *Buffer) Count() int { return len(b.points) }

// At returns the snapshot recorded at index (0 = oldest currently held),
// or false if the index is out of range.
func (b *Buffer) At(index int) ([]byte, bool) {
	if index < 0 || index >= len(b.points) {
		return nil, false
	}
	return b.points[index], true
}

// Reset empties the buffer, for use across a new ROM load.
func (b *Buffer) Reset() {
	b.points = nil
	b.hashes = nil
}
