package handlers

import (
	"net/http"

	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
)

// StatsHandler reports the monitor counters.
type StatsHandler struct {
	runner *monitor.Runner
}

func NewStatsHandler(runner *monitor.Runner) *StatsHandler {
	return &StatsHandler{runner: runner}
}

// StatsResponse combines the runner counters with the processor state.
type StatsResponse struct {
	monitor.Stats
	Mode        monitor.Mode `json:"mode"`
	CatalogSize int          `json:"catalog_size"`
	LiveTracks  int          `json:"live_tracks"`
	Subscribers int          `json:"subscribers"`
}

// Get returns the current stats.
func (h *StatsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	snap := h.runner.Processor().Snapshot()
	respondJSON(w, http.StatusOK, StatsResponse{
		Stats:       h.runner.Stats(),
		Mode:        snap.Mode,
		CatalogSize: snap.CatalogSize,
		LiveTracks:  len(snap.Tracks),
		Subscribers: h.runner.Listeners(),
	})
}
