package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
	"github.com/Vallit0/asistencia-senoriales/internal/monitor"
)

// IdentitiesHandler lists, reloads and enrolls catalog identities.
type IdentitiesHandler struct {
	store  catalog.Store
	runner *monitor.Runner
}

func NewIdentitiesHandler(store catalog.Store, runner *monitor.Runner) *IdentitiesHandler {
	return &IdentitiesHandler{store: store, runner: runner}
}

// IdentitiesResponse is the active catalog summary.
type IdentitiesResponse struct {
	Count      int                 `json:"count"`
	Dim        int                 `json:"dim"`
	Identities []catalog.NameCount `json:"identities"`
}

func identitiesResponse(c *catalog.Catalog) IdentitiesResponse {
	names := c.Names()
	if names == nil {
		names = []catalog.NameCount{}
	}
	return IdentitiesResponse{Count: c.Len(), Dim: c.Dim(), Identities: names}
}

// List returns the names in the catalog the monitor is using.
func (h *IdentitiesHandler) List(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, identitiesResponse(h.runner.Processor().Catalog()))
}

// Reload reads the catalog from the store and swaps it into the monitor.
func (h *IdentitiesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	c, err := h.runner.ReloadCatalog(r.Context(), h.store)
	if err != nil {
		log.Printf("Failed to reload catalog: %v", err)
		if errors.Is(err, catalog.ErrCorruptCatalog) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	log.Printf("Catalog reloaded: %d identities", c.Len())
	respondJSON(w, http.StatusOK, identitiesResponse(c))
}

type enrollRequest struct {
	Name string `json:"name"`
}

// Enroll registers the single face of the last processed frame under a name.
func (h *IdentitiesHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, catalog.ErrInvalidName.Error())
		return
	}

	err := h.runner.Enroll(r.Context(), req.Name, h.store)
	switch {
	case errors.Is(err, catalog.ErrInvalidName):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, catalog.ErrEnrollmentAmbiguous):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, catalog.ErrDimensionMismatch):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Printf("Failed to enroll %s: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to enroll")
		return
	}

	log.Printf("Enrolled %s", sanitizeForLog(req.Name))
	respondJSON(w, http.StatusCreated, identitiesResponse(h.runner.Processor().Catalog()))
}
