package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
	"github.com/Vallit0/asistencia-senoriales/internal/zone"
)

// ZonesHandler reads and adjusts the zone lines at run time.
type ZonesHandler struct {
	processor *monitor.Processor
}

func NewZonesHandler(p *monitor.Processor) *ZonesHandler {
	return &ZonesHandler{processor: p}
}

// ZonesResponse describes the current lines and tracks.
type ZonesResponse struct {
	Boundaries zone.Boundaries `json:"boundaries"`
	FrameWidth int             `json:"frame_width"`
	Tracks     []TrackInfo     `json:"tracks"`
}

// TrackInfo is a live track as shown to operators.
type TrackInfo struct {
	ID          int    `json:"id"`
	Identity    string `json:"identity"`
	State       string `json:"state"`
	InitialZone string `json:"initial_zone"`
	CurrentZone string `json:"current_zone"`
}

func (h *ZonesHandler) response() ZonesResponse {
	snap := h.processor.Snapshot()
	tracks := make([]TrackInfo, len(snap.Tracks))
	for i, t := range snap.Tracks {
		tracks[i] = TrackInfo{
			ID:          t.ID,
			Identity:    t.Identity,
			State:       string(t.State()),
			InitialZone: t.InitialZone.String(),
			CurrentZone: t.CurrentZone.String(),
		}
	}
	return ZonesResponse{Boundaries: snap.Boundaries, FrameWidth: snap.FrameWidth, Tracks: tracks}
}

// Get returns the lines and live tracks.
func (h *ZonesHandler) Get(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.response())
}

// Put replaces both lines. Overlapping lines are clamped, not rejected.
func (h *ZonesHandler) Put(w http.ResponseWriter, r *http.Request) {
	var b zone.Boundaries
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	got := h.processor.SetBoundaries(b)
	log.Printf("Zone lines set: left=%.0f right=%.0f", got.Left, got.Right)
	respondJSON(w, http.StatusOK, h.response())
}

// nudgeRequest moves one line by Delta pixels; an omitted delta moves it
// one step to the right.
type nudgeRequest struct {
	Line  string  `json:"line"`
	Delta float64 `json:"delta"`
}

// Nudge moves one line by delta pixels within its limits.
func (h *ZonesHandler) Nudge(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	line, err := zone.ParseLine(req.Line)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Delta == 0 {
		req.Delta = constants.ZoneNudgeStep
	}
	got := h.processor.NudgeBoundary(line, req.Delta)
	log.Printf("Zone line %s nudged by %+.0f: left=%.0f right=%.0f", line, req.Delta, got.Left, got.Right)
	respondJSON(w, http.StatusOK, h.response())
}
