// Package joypad emulates the 4-line keypad matrix exposed at 0xFF00.
package joypad

import (
	"github.com/pinwheel/gbcore/internal/interrupts"
	"github.com/pinwheel/gbcore/internal/savestate"
)

// Button identifies one physical button. Low nibble is the action row
// (A, B, Select, Start), high nibble is the direction row.
type Button = uint8

const (
	A      Button = 0x01
	B      Button = 0x02
	Select Button = 0x04
	Start  Button = 0x08
	Right  Button = 0x10
	Left   Button = 0x20
	Up     Button = 0x40
	Down   Button = 0x80
)

// Snapshot is the 8-button input state for one frame, matching the
// host-facing InputSnapshot of the external interface.
type Snapshot struct {
	Right, Left, Up, Down   bool
	A, B, Select, Start     bool
}

func (s Snapshot) mask() uint8 {
	var m uint8
	if s.Right {
		m |= Right
	}
	if s.Left {
		m |= Left
	}
	if s.Up {
		m |= Up
	}
	if s.Down {
		m |= Down
	}
	if s.A {
		m |= A
	}
	if s.B {
		m |= B
	}
	if s.Select {
		m |= Select
	}
	if s.Start {
		m |= Start
	}
	return m
}

// State is the joypad register plus the live button mask.
type State struct {
	register uint8
	pressed  uint8

	irq *interrupts.Controller
}

// New returns a joypad with no selector rows active.
func New(irq *interrupts.Controller) *State {
	return &State{register: 0x3F, irq: irq}
}

// Read returns the current value of 0xFF00: the selector bits the game
// wrote, ORed with the (active-low) state of whichever rows are
// selected.
func (s *State) Read() uint8 {
	out := s.register | 0xC0
	if s.register&0x10 == 0 {
		out &^= (s.pressed >> 4) & 0x0F
	}
	if s.register&0x20 == 0 {
		out &^= s.pressed & 0x0F
	}
	return out
}

// Write updates the selector bits (4 and 5); the lower nibble is
// read-only from the game's perspective.
func (s *State) Write(value uint8) {
	s.register = (s.register & 0xCF) | (value & 0x30)
}

// SetInput applies a new button snapshot, raising the Joypad interrupt
// for every selected line that transitions from released to pressed.
func (s *State) SetInput(snap Snapshot) {
	next := snap.mask()
	newlyPressed := next &^ s.pressed
	s.pressed = next

	if newlyPressed == 0 {
		return
	}
	if s.register&0x10 == 0 && newlyPressed&0xF0 != 0 {
		s.irq.Request(interrupts.Joypad)
	}
	if s.register&0x20 == 0 && newlyPressed&0x0F != 0 {
		s.irq.Request(interrupts.Joypad)
	}
}

func (s *State) Save(e *savestate.Encoder) {
	e.Write8(s.register)
	e.Write8(s.pressed)
}

func (s *State) Load(d *savestate.Decoder) {
	s.register = d.Read8()
	s.pressed = d.Read8()
}
