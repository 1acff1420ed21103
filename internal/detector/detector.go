package detector

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Mode selects which landmark model a detector runs.
type Mode string

const (
	// ModeHand tracks a single hand (21 landmarks).
	ModeHand Mode = "hand"
	// ModeBody tracks a full-body pose (33 landmarks).
	ModeBody Mode = "body"
)

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHand:
		return ModeHand, nil
	case ModeBody, "face", "pose":
		return ModeBody, nil
	default:
		return "", fmt.Errorf("unknown control mode %q", s)
	}
}

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected landmark sets.
	// Returns an empty slice if nobody is in view.
	Detect(frame *gocv.Mat) ([]Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// Mode selects the hand or pose model.
	Mode Mode

	// MaxHands is the maximum number of hands to detect in hand mode (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeHand,
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}
