package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/calibration"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// ControlHandler starts and stops game sessions and calibrations.
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a ControlHandler for ctrl.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

type startRequest struct {
	Mode string `json:"mode"`
}

type stopResponse struct {
	Report gesture.Report `json:"report"`
	// Warning is set when the session ended but could not be saved.
	Warning string `json:"warning,omitempty"`
}

type calibrationResponse struct {
	Running  bool                    `json:"running"`
	Progress *calibration.Progress   `json:"progress,omitempty"`
	Last     *app.CalibrationOutcome `json:"last,omitempty"`
}

// Session handles /api/session: GET status, POST start, DELETE stop.
func (h *ControlHandler) Session(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodPost:
		mode, ok := readMode(w, r)
		if !ok {
			return
		}
		if err := h.ctrl.StartSession(mode); err != nil {
			writeStartError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, h.ctrl.Status())
	case http.MethodDelete:
		report, err := h.ctrl.StopSession()
		if errors.Is(err, app.ErrNoSession) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		resp := stopResponse{Report: report}
		if err != nil {
			log.Warn().Err(err).Msg("session stopped but not saved")
			resp.Warning = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Calibration handles /api/calibration: GET progress, POST start, DELETE cancel.
func (h *ControlHandler) Calibration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.calibrationStatus())
	case http.MethodPost:
		mode, ok := readMode(w, r)
		if !ok {
			return
		}
		if err := h.ctrl.StartCalibration(mode); err != nil {
			writeStartError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, h.calibrationStatus())
	case http.MethodDelete:
		if err := h.ctrl.CancelCalibration(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.calibrationStatus())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ControlHandler) calibrationStatus() calibrationResponse {
	s := h.ctrl.Status()
	return calibrationResponse{
		Running:  s.Kind == app.KindCalibration,
		Progress: s.Calibration,
		Last:     s.LastCalibration,
	}
}

// readMode decodes an optional {"mode": "..."} body. An empty body selects
// the stored mode.
func readMode(w http.ResponseWriter, r *http.Request) (detector.Mode, bool) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return "", false
	}
	if req.Mode == "" {
		return "", true
	}
	mode, err := detector.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return mode, true
}

func writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrSessionRunning):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrFrameSource):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
