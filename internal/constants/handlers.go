// Package constants provides shared constants used across the codebase.
package constants

// Handler constants
const (
	// DefaultEventsLimit is the number of events returned by the events endpoint
	DefaultEventsLimit = 100

	// MaxEventsLimit caps the limit query parameter
	MaxEventsLimit = 10000
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)
