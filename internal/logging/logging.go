// Package logging provides the structured logger shared by the control,
// pump, and (pre-render) engine setup paths.
//
// The real-time audio thread never calls through here after setup: the one
// and only logging call a hot Realm/VM path may need (an RT-unsafe event)
// goes through internal/rtguard instead, which itself defers the actual
// charmbracelet/log write to the pump thread.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger with the project's default report-caller-off, text
// style. Callers on the control/pump threads may add fields with With.
func New(name string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          name,
		ReportTimestamp: true,
	})
	return l
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
