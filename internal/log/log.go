// Package log provides the minimal structured-enough logger used across
// the core. Runtime warnings (out-of-spec cartridge behaviour, unreliable
// register writes) go through here rather than aborting execution.
package log

import "fmt"

// Logger is implemented by anything that can receive the core's
// diagnostic output. Construction-time errors never go through here —
// only warnings that let execution continue.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type stdLogger struct{}

// New returns a Logger that writes to stdout, prefixed by level.
func New() Logger {
	return stdLogger{}
}

func (stdLogger) Infof(format string, args ...interface{}) {
	fmt.Printf("[INFO]\t"+format+"\n", args...)
}

func (stdLogger) Errorf(format string, args ...interface{}) {
	fmt.Printf("[ERROR]\t"+format+"\n", args...)
}

func (stdLogger) Debugf(format string, args ...interface{}) {
	fmt.Printf("[DEBUG]\t"+format+"\n", args...)
}

type nullLogger struct{}

// NewNull returns a Logger that discards everything, for headless runs
// and tests where console noise isn't wanted.
func NewNull() Logger {
	return nullLogger{}
}

func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}
