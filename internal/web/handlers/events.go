package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Vallit0/asistencia-senoriales/internal/constants"
	"github.com/Vallit0/asistencia-senoriales/internal/events"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
)

// EventsHandler serves the recorded and live attendance events.
type EventsHandler struct {
	reader events.Reader
	runner *monitor.Runner
}

func NewEventsHandler(reader events.Reader, runner *monitor.Runner) *EventsHandler {
	return &EventsHandler{reader: reader, runner: runner}
}

// EventsResponse is a page of the newest events, oldest first.
type EventsResponse struct {
	Total  int            `json:"total"`
	Events []events.Event `json:"events"`
}

// List returns the newest events (?limit=N, default 100).
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultEventsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, constants.MaxEventsLimit)
	}

	list, err := h.reader.List(r.Context())
	if err != nil {
		log.Printf("Failed to read events: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read events")
		return
	}

	page := events.Last(list, limit)
	if page == nil {
		page = []events.Event{}
	}
	respondJSON(w, http.StatusOK, EventsResponse{Total: len(list), Events: page})
}

// Stream sends every new event as a server-sent event until the client leaves.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventCh := h.runner.AddListener()
	defer h.runner.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", h.runner.Stats())

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, "attendance", e)
		}
	}
}
