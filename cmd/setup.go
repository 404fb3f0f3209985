package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Vallit0/asistencia-senoriales/internal/capture"
	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/config"
	"github.com/Vallit0/asistencia-senoriales/internal/database"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
)

// loadConfig reads the environment and applies the tuning file, if any.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()

	path := tuningFile
	if path == "" {
		path = os.Getenv("TUNING_FILE")
	}
	if path != "" {
		t, err := config.LoadTuningFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Apply(t)
	}
	return cfg, nil
}

// openCatalogStore returns the PostgreSQL catalog when CATALOG_DATABASE_URL is
// set, and the JSON file otherwise. The returned func releases resources.
func openCatalogStore(ctx context.Context, cfg *config.Config) (catalog.Store, func(), error) {
	if cfg.Catalog.DatabaseURL == "" {
		return catalog.NewFileStore(cfg.Catalog.Path), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Catalog.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	repo, err := database.NewIdentityRepository(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}

// eventStore bundles where events are written and read.
type eventStore struct {
	sink   events.Sink
	reader events.Reader
	close  func()
}

// openEventStore always writes the JSON log and, when EVENT_DATABASE_URL is
// set, also the SQL table, which then serves reads.
func openEventStore(ctx context.Context, cfg *config.Config, runID string) (*eventStore, error) {
	fileLog := events.NewFileLog(cfg.Events.LogPath)
	if cfg.Events.DatabaseURL == "" {
		return &eventStore{sink: fileLog, reader: fileLog, close: func() {}}, nil
	}

	db, err := database.OpenAndMigrate(ctx, cfg.Events.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}
	repo := database.NewEventRepository(db, runID)
	fmt.Printf("Recording events to %s database\n", db.Dialect())
	return &eventStore{
		sink:   events.MultiSink{fileLog, repo},
		reader: repo,
		close:  func() { db.Close() },
	}, nil
}

// captureFrame reads an image file, or grabs one snapshot from the camera
// when imagePath is empty.
func captureFrame(ctx context.Context, cfg *config.Config, imagePath string) (capture.Frame, error) {
	if imagePath != "" {
		data, err := os.ReadFile(imagePath) //nolint:gosec // user-supplied CLI path
		if err != nil {
			return capture.Frame{}, fmt.Errorf("failed to read image: %w", err)
		}
		return capture.Normalize(data, cfg.Zones.FrameWidth)
	}
	if cfg.Camera.SnapshotURL == "" {
		return capture.Frame{}, errors.New("either --image or CAMERA_SNAPSHOT_URL is required")
	}
	src := capture.NewSnapshotSource(cfg.Camera.SnapshotURL, cfg.Camera.Username, cfg.Camera.Password,
		cfg.Camera.PollInterval, cfg.Zones.FrameWidth)
	return src.Capture(ctx)
}
