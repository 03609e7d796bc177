package rewind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordSkipsConsecutiveDuplicates(t *testing.T) {
	b := New(10)
	b.Record([]byte("frame-a"))
	b.Record([]byte("frame-a"))
	b.Record([]byte("frame-a"))
	require.Equal(t, 1, b.Count())

	b.Record([]byte("frame-b"))
	require.Equal(t, 2, b.Count())
}

func TestRecordEvictsOldestOnceAtCapacity(t *testing.T) {
	b := New(2)
	b.Record([]byte("1"))
	b.Record([]byte("2"))
	b.Record([]byte("3"))
	require.Equal(t, 2, b.Count())

	first, ok := b.At(0)
	require.True(t, ok)
	require.Equal(t, []byte("2"), first)
}

func TestZeroCapacityDisablesRecording(t *testing.T) {
	b := New(0)
	b.Record([]byte("1"))
	require.Equal(t, 0, b.Count())
}

func TestAtOutOfRange(t *testing.T) {
	b := New(4)
	b.Record([]byte("1"))
	_, ok := b.At(5)
	require.False(t, ok)
	_, ok = b.At(-1)
	require.False(t, ok)
}

func TestResetClearsAllPoints(t *testing.T) {
	b := New(4)
	b.Record([]byte("1"))
	b.Record([]byte("2"))
	b.Reset()
	require.Equal(t, 0, b.Count())
}
