package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
	"github.com/ayusman/airrunner/internal/store"
)

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	store *store.Store
	ctrl  Controller
}

// NewSettingsHandler creates a SettingsHandler. ctrl may be nil, in which
// case new thresholds only take effect at the next session.
func NewSettingsHandler(s *store.Store, ctrl Controller) *SettingsHandler {
	return &SettingsHandler{store: s, ctrl: ctrl}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// update handles PUT /api/settings. Fields missing from the body keep their
// stored values.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Mode, _ = detector.ParseMode(string(s.Mode))

	if err := h.store.Settings().Save(s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if h.ctrl != nil {
		if err := h.ctrl.SetThresholds(s.Thresholds()); err != nil && !errors.Is(err, gesture.ErrInvalidThresholds) {
			log.Warn().Err(err).Msg("failed to apply thresholds to running session")
		}
	}

	writeJSON(w, http.StatusOK, s)
}
