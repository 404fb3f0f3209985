package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
)

type Config struct {
	Catalog   CatalogConfig
	Events    EventsConfig
	Embedding EmbeddingConfig
	Camera    CameraConfig
	Match     MatchConfig
	Zones     ZonesConfig
	Dedup     DedupConfig
	Web       WebConfig
}

type CatalogConfig struct {
	Path        string // JSON file with enrolled identities
	DatabaseURL string // PostgreSQL URL; when set the catalog lives in the identities table
}

type EventsConfig struct {
	LogPath     string // JSON event log, rewritten on every append
	DatabaseURL string // optional SQL sink: postgres://, mysql://, sqlite://
}

type EmbeddingConfig struct {
	URL string // defaults to http://localhost:8000
}

type CameraConfig struct {
	SnapshotURL  string // JPEG snapshot endpoint of an IP camera
	Username     string
	Password     string
	PollInterval time.Duration
	// StillDistance skips frames within this many hash bits of the last
	// processed one (0 = process every frame).
	StillDistance int
}

type MatchConfig struct {
	Threshold       float64
	IndexMinSize    int // catalogs at least this large use the HNSW index (0 = never)
	IndexCandidates int
}

type ZonesConfig struct {
	Left          float64
	Right         float64
	FrameWidth    int
	SweepInterval int // frames between sweeps of crossed tracks
}

type DedupConfig struct {
	Window time.Duration
}

type WebConfig struct {
	AllowedOrigins []string // CORS origins in addition to localhost
}

// Tuning is the optional YAML overlay for the tuning constants.
// Omitted fields keep the values loaded from the environment.
type Tuning struct {
	Threshold     *float64 `yaml:"threshold"`
	DedupWindow   *string  `yaml:"dedup_window"` // duration string like "30s"
	ZoneLeft      *float64 `yaml:"zone_left"`
	ZoneRight     *float64 `yaml:"zone_right"`
	FrameWidth    *int     `yaml:"frame_width"`
	SweepInterval *int     `yaml:"sweep_interval"`
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable as a positive time.Duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:        envString("CATALOG_PATH", constants.DefaultCatalogPath),
			DatabaseURL: os.Getenv("CATALOG_DATABASE_URL"),
		},
		Events: EventsConfig{
			LogPath:     envString("EVENT_LOG_PATH", constants.DefaultEventLogPath),
			DatabaseURL: os.Getenv("EVENT_DATABASE_URL"),
		},
		Embedding: EmbeddingConfig{
			URL: envString("EMBEDDING_URL", constants.DefaultEmbeddingURL),
		},
		Camera: CameraConfig{
			SnapshotURL:   os.Getenv("CAMERA_SNAPSHOT_URL"),
			Username:      os.Getenv("CAMERA_USERNAME"),
			Password:      os.Getenv("CAMERA_PASSWORD"),
			PollInterval:  envDuration("CAMERA_POLL_INTERVAL", constants.DefaultPollInterval),
			StillDistance: envInt("CAMERA_STILL_DISTANCE", 0),
		},
		Match: MatchConfig{
			Threshold:       envFloat("MATCH_THRESHOLD", constants.DefaultMatchThreshold),
			IndexMinSize:    envInt("MATCH_INDEX_MIN_SIZE", 0),
			IndexCandidates: envInt("MATCH_INDEX_CANDIDATES", constants.DefaultMatchIndexCandidates),
		},
		Zones: ZonesConfig{
			Left:          envFloat("ZONE_LEFT", constants.DefaultZoneLeft),
			Right:         envFloat("ZONE_RIGHT", constants.DefaultZoneRight),
			FrameWidth:    envInt("FRAME_WIDTH", constants.DefaultFrameWidth),
			SweepInterval: envInt("SWEEP_INTERVAL", constants.DefaultSweepInterval),
		},
		Dedup: DedupConfig{
			Window: envDuration("DEDUP_WINDOW", constants.DefaultDedupWindow),
		},
		Web: WebConfig{
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
	}
}

// ParseTuning decodes a YAML tuning document.
func ParseTuning(data []byte) (*Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning YAML: %w", err)
	}
	if t.DedupWindow != nil {
		if _, err := time.ParseDuration(*t.DedupWindow); err != nil {
			return nil, fmt.Errorf("invalid dedup_window %q: %w", *t.DedupWindow, err)
		}
	}
	return &t, nil
}

// LoadTuningFile reads a YAML tuning file.
func LoadTuningFile(path string) (*Tuning, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return ParseTuning(data)
}

// Apply overlays the non-nil tuning fields onto the config.
func (c *Config) Apply(t *Tuning) {
	if t == nil {
		return
	}
	if t.Threshold != nil {
		c.Match.Threshold = *t.Threshold
	}
	if t.DedupWindow != nil {
		if d, err := time.ParseDuration(*t.DedupWindow); err == nil && d > 0 {
			c.Dedup.Window = d
		}
	}
	if t.ZoneLeft != nil {
		c.Zones.Left = *t.ZoneLeft
	}
	if t.ZoneRight != nil {
		c.Zones.Right = *t.ZoneRight
	}
	if t.FrameWidth != nil && *t.FrameWidth > 0 {
		c.Zones.FrameWidth = *t.FrameWidth
	}
	if t.SweepInterval != nil && *t.SweepInterval > 0 {
		c.Zones.SweepInterval = *t.SweepInterval
	}
}
