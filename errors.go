package gbcore

import "errors"

// Kind classifies why a Machine operation failed, mirroring the error
// taxonomy a host needs to decide whether a failure is recoverable.
type Kind uint8

const (
	// RomError covers unsupported cartridge types, header size
	// mismatches, and invalid size codes found while parsing a ROM.
	RomError Kind = iota
	// ModelMismatch is returned when the ROM only supports CGB but the
	// caller forced DMG via Config.Model.
	ModelMismatch
	// UnsupportedMbc is returned when the header names an MBC family
	// this core doesn't implement.
	UnsupportedMbc
	// DeserializeFailed is returned when save-state bytes don't parse.
	DeserializeFailed
	// RomHashMismatch is returned when a save-state was produced by a
	// different ROM than the one currently loaded.
	RomHashMismatch
	// Io covers host-side backup/state I/O failures surfaced from
	// collaborators (e.g. a rewind index out of range).
	Io
)

func (k Kind) String() string {
	switch k {
	case RomError:
		return "RomError"
	case ModelMismatch:
		return "ModelMismatch"
	case UnsupportedMbc:
		return "UnsupportedMbc"
	case DeserializeFailed:
		return "DeserializeFailed"
	case RomHashMismatch:
		return "RomHashMismatch"
	case Io:
		return "Io"
	}
	return "Unknown"
}

// Error wraps an underlying error with the Kind a host needs to branch
// on, while still satisfying errors.Is/As against the wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// IsKind reports whether err is (or wraps) a *Error of the given Kind,
// so callers can branch with gbcore.IsKind(err, gbcore.RomHashMismatch)
// instead of type-asserting by hand.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
