package gesture

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when a ThresholdSet has a degenerate band.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// ThresholdSet holds the normalized trigger lines for one user.
// Jump/Duck bound the vertical band and Left/Right the horizontal band.
type ThresholdSet struct {
	Jump  float64 `json:"jump_thresh"`
	Duck  float64 `json:"duck_thresh"`
	Left  float64 `json:"left_thresh"`
	Right float64 `json:"right_thresh"`
}

// DefaultThresholds returns the factory trigger lines.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Jump:  0.4,
		Duck:  0.6,
		Left:  0.4,
		Right: 0.6,
	}
}

// Validate checks that every value lies in (0,1) and both bands are non-degenerate.
func (t ThresholdSet) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"jump_thresh", t.Jump},
		{"duck_thresh", t.Duck},
		{"left_thresh", t.Left},
		{"right_thresh", t.Right},
	}
	for _, f := range fields {
		// NaN fails both comparisons.
		if !(f.value > 0 && f.value < 1) {
			return fmt.Errorf("%w: %s=%v must be in (0,1)", ErrInvalidThresholds, f.name, f.value)
		}
	}
	if t.Jump >= t.Duck {
		return fmt.Errorf("%w: jump_thresh %.3f must be below duck_thresh %.3f", ErrInvalidThresholds, t.Jump, t.Duck)
	}
	if t.Left >= t.Right {
		return fmt.Errorf("%w: left_thresh %.3f must be below right_thresh %.3f", ErrInvalidThresholds, t.Left, t.Right)
	}
	return nil
}

// OrDefault returns t if it is valid, otherwise the defaults.
func (t ThresholdSet) OrDefault() ThresholdSet {
	if t.Validate() != nil {
		return DefaultThresholds()
	}
	return t
}
