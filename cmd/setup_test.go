package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vallit0/asistencia-senoriales/internal/config"
	"github.com/Vallit0/asistencia-senoriales/internal/database"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
)

func TestOpenEventStore_RunIDMatchesRunner(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Events: config.EventsConfig{
			LogPath:     filepath.Join(dir, "asistencia_log.json"),
			DatabaseURL: "sqlite://" + filepath.Join(dir, "events.db"),
		},
	}
	ctx := context.Background()

	runID, err := monitor.ResolveRunID("")
	require.NoError(t, err)

	store, err := openEventStore(ctx, cfg, runID)
	require.NoError(t, err)
	defer store.close()

	runner := monitor.NewRunner(nil, nil, monitor.NewProcessor(nil, monitor.Options{}), store.sink, runID)

	e := events.Event{Name: "Ana", Kind: events.Entrada, Timestamp: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	require.NoError(t, store.sink.Append(ctx, e))

	repo, ok := store.reader.(*database.EventRepository)
	require.True(t, ok, "database reader expected when EVENT_DATABASE_URL is set")
	assert.Equal(t, runner.RunID(), repo.RunID())

	rows, err := repo.ListByRun(ctx, runner.Stats().RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].Name)
}

func TestOpenEventStore_FileOnly(t *testing.T) {
	cfg := &config.Config{Events: config.EventsConfig{LogPath: filepath.Join(t.TempDir(), "log.json")}}

	store, err := openEventStore(context.Background(), cfg, "run-1")
	require.NoError(t, err)
	defer store.close()

	_, ok := store.reader.(*events.FileLog)
	assert.True(t, ok)
}
