package app

import (
	"time"

	"github.com/ayusman/airrunner/internal/calibration"
	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// Kind is what the frame loop is currently doing.
type Kind string

const (
	KindIdle        Kind = "idle"
	KindSession     Kind = "session"
	KindCalibration Kind = "calibration"
)

// FrameState is published once per processed frame.
type FrameState struct {
	Kind Kind          `json:"kind"`
	Mode detector.Mode `json:"mode,omitempty"`
	// Raw is the classifier output; Action is what the gate let through.
	Raw        gesture.Action       `json:"raw"`
	Action     gesture.Action       `json:"action"`
	Fired      bool                 `json:"fired"`
	Paused     bool                 `json:"paused"`
	Point      *gesture.Sample      `json:"point,omitempty"`
	Thresholds gesture.ThresholdSet `json:"thresholds"`
	// Countdown is the READY seconds left before input is accepted.
	Countdown   int                   `json:"countdown,omitempty"`
	Calibration *calibration.Progress `json:"calibration,omitempty"`
	Stats       gesture.Report        `json:"stats"`
	Time        time.Time             `json:"time"`
}

// CalibrationOutcome is the result of the last calibration run.
type CalibrationOutcome struct {
	Success    bool                  `json:"success"`
	Thresholds *gesture.ThresholdSet `json:"thresholds,omitempty"`
	Error      string                `json:"error,omitempty"`
	At         time.Time             `json:"at"`
}

// Status summarizes the application for the API and the tray.
type Status struct {
	Kind            Kind                  `json:"kind"`
	Mode            detector.Mode         `json:"mode,omitempty"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	Paused          bool                  `json:"paused"`
	Stats           gesture.Report        `json:"stats"`
	LastAction      gesture.Action        `json:"last_action"`
	Calibration     *calibration.Progress `json:"calibration,omitempty"`
	LastCalibration *CalibrationOutcome   `json:"last_calibration,omitempty"`
	LastReport      *gesture.Report       `json:"last_report,omitempty"`
	LastError       string                `json:"last_error,omitempty"`
}
