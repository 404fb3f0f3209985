// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Matching constants
const (
	// DefaultMatchThreshold is the cosine similarity a match must strictly exceed
	DefaultMatchThreshold = 0.4

	// DefaultMatchIndexCandidates is how many HNSW neighbors are re-scored exactly
	DefaultMatchIndexCandidates = 16
)

// Reporting constants
const (
	// DefaultDedupWindow is the cool-down before the same identity is reported again
	DefaultDedupWindow = 30 * time.Second
)

// Zone constants, in pixels of a frame scaled to DefaultFrameWidth
const (
	// DefaultFrameWidth is the width frames are normalized to before detection
	DefaultFrameWidth = 640

	// DefaultZoneLeft is the x coordinate below which a face is in the left zone
	DefaultZoneLeft = 150

	// DefaultZoneRight is the x coordinate above which a face is in the right zone
	DefaultZoneRight = 490

	// ZoneNudgeStep is the default step for moving a zone line from the API
	ZoneNudgeStep = 10

	// DefaultSweepInterval is the number of frames between sweeps of crossed tracks
	DefaultSweepInterval = 100
)

// Capture constants
const (
	// DefaultPollInterval is the delay between camera snapshot requests
	DefaultPollInterval = 200 * time.Millisecond

	// JPEGQuality is the quality used when re-encoding normalized frames
	JPEGQuality = 90
)

// Storage defaults
const (
	// DefaultCatalogPath is the JSON file holding enrolled identities
	DefaultCatalogPath = "empleados.json"

	// DefaultEventLogPath is the JSON file holding emitted events
	DefaultEventLogPath = "asistencia_log.json"

	// DefaultEmbeddingURL is the face embedding server
	DefaultEmbeddingURL = "http://localhost:8000"

	// MaxRunIDLength is the width of the run_id column of the event tables
	MaxRunIDLength = 36
)
