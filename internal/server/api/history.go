package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/airrunner/internal/store"
)

// HistoryHandler serves finished sessions under /api/sessions and
// calibration runs under /api/calibrations.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type listSessionsResponse struct {
	Sessions []*store.SessionRecord `json:"sessions"`
}

type listCalibrationsResponse struct {
	Calibrations []*store.CalibrationRecord `json:"calibrations"`
}

// Sessions handles GET /api/sessions and GET /api/sessions/{id}.
func (h *HistoryHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	if id != "" {
		h.session(w, id)
		return
	}

	limit, ok := limitParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	recs, err := h.store.Sessions().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: recs})
}

func (h *HistoryHandler) session(w http.ResponseWriter, id string) {
	rec, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Calibrations handles GET /api/calibrations.
func (h *HistoryHandler) Calibrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, ok := limitParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit == 0 {
		limit = store.DefaultRecent
	}
	recs, err := h.store.Calibrations().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calibrations")
		return
	}
	writeJSON(w, http.StatusOK, listCalibrationsResponse{Calibrations: recs})
}
