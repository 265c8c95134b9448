package testutil

import (
	"slices"
	"sync"
)

// RecordingLogger implements logging.Logger and keeps the event names passed
// to Warn and Error. Safe for concurrent use.
type RecordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

// Debug discards the event.
func (l *RecordingLogger) Debug(string, ...any) {}

// Info discards the event.
func (l *RecordingLogger) Info(string, ...any) {}

// Warn records msg.
func (l *RecordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

// Error records msg.
func (l *RecordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// Warnings returns the recorded warning events.
func (l *RecordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.warns)
}

// Errors returns the recorded error events.
func (l *RecordingLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.errors)
}
