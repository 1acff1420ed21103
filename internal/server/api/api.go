// Package api provides HTTP API handlers for AirRunner.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// Controller is the part of the application the API drives.
type Controller interface {
	StartSession(mode detector.Mode) error
	StopSession() (gesture.Report, error)
	StartCalibration(mode detector.Mode) error
	CancelCalibration() error
	SetThresholds(t gesture.ThresholdSet) error
	Status() app.Status
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// limitParam parses the optional ?limit= query parameter. Zero means unset.
func limitParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
