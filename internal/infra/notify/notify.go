// Package notify surfaces human-readable sync outcomes. The daemon stays
// quiet about per-record retries; only durability problems and records that
// have exhausted their retry budget are escalated here.
package notify

import "log"

// Level classifies a notification.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Sink receives user-facing notifications.
type Sink interface {
	Notify(level Level, message string)
}

// LogSink writes notifications to the process log.
type LogSink struct{}

// Notify logs the message.
func (LogSink) Notify(level Level, message string) {
	log.Printf("[notify] %s: %s", level, message)
}

// Discard drops every notification. Useful in tests that don't assert on
// escalation.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(Level, string) {}
