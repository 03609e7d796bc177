package joypad

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

func TestReadWithNoRowSelectedReportsAllLinesReleased(t *testing.T) {
	s := New(interrupts.New())
	require.Equal(t, uint8(0xFF), s.Read())
}

func TestReadOnTheDirectionRowClearsTheBitForAPressedButton(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x20) // clear P14: select the direction row
	s.SetInput(Snapshot{Right: true})
	require.Equal(t, uint8(0xEE), s.Read())
}

func TestReadOnTheActionRowClearsTheBitForAPressedButton(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x10) // clear P15: select the action row
	s.SetInput(Snapshot{Start: true})
	require.Equal(t, uint8(0xD7), s.Read())
}

func TestWriteLeavesTheLowerNibbleReadOnly(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0xFF)
	require.Equal(t, uint8(0x3F), s.register&0x3F)
}

func TestSetInputRequestsAJoypadInterruptOnlyOnANewPressOnASelectedRow(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Joypad
	s := New(irq)
	s.Write(0x20) // direction row selected

	s.SetInput(Snapshot{})
	require.False(t, irq.Pending())

	s.SetInput(Snapshot{Down: true})
	require.True(t, irq.Pending())
}

func TestSetInputIgnoresAPressOnAnUnselectedRow(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Joypad
	s := New(irq)
	s.Write(0x10) // action row selected, not direction

	s.SetInput(Snapshot{Up: true})
	require.False(t, irq.Pending())
}

func TestSetInputDoesNotRefireOnAHeldButton(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Joypad
	s := New(irq)
	s.Write(0x20)

	s.SetInput(Snapshot{Right: true})
	irq.Clear(interrupts.Joypad)

	s.SetInput(Snapshot{Right: true}) // still held, not newly pressed
	require.False(t, irq.Pending())
}

func TestSaveLoadRoundTripsRegisterAndPressedMask(t *testing.T) {
	s := New(interrupts.New())
	s.Write(0x20)
	s.SetInput(Snapshot{A: true, Down: true})

	e := savestate.NewEncoder()
	s.Save(e)

	loaded := New(interrupts.New())
	loaded.Load(savestate.NewDecoder(e.Bytes()))
	require.Equal(t, s.register, loaded.register)
	require.Equal(t, s.pressed, loaded.pressed)
}
