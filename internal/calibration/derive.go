package calibration

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/airrunner/internal/gesture"
)

// Margin is the minimum normalized distance between a derived trigger line
// and the user's neutral position.
const Margin = 0.05

// Derived lines are kept inside the frame so they remain valid thresholds.
const (
	minLine = 0.01
	maxLine = 0.99
)

var (
	// ErrEmptyBucket is returned when a step recorded no points.
	ErrEmptyBucket = errors.New("calibration step recorded no samples")
	// ErrInvalidFrame is returned for non-positive frame dimensions.
	ErrInvalidFrame = errors.New("invalid frame size")
)

// Derive computes a ThresholdSet from a complete record. Points are divided
// by the frame size to return to normalized coordinates.
//
// Each trigger line is the midpoint between the neutral mean and the most
// extreme point of its pose, pushed out to at least Margin from neutral.
func Derive(r *Record, width, height int) (gesture.ThresholdSet, error) {
	if width <= 0 || height <= 0 {
		return gesture.ThresholdSet{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, width, height)
	}
	if r == nil {
		return gesture.ThresholdSet{}, fmt.Errorf("%w: no record", ErrEmptyBucket)
	}
	for _, step := range Steps {
		if len(r.Points(step)) == 0 {
			return gesture.ThresholdSet{}, fmt.Errorf("%w: %s", ErrEmptyBucket, step)
		}
	}

	w, h := float64(width), float64(height)

	var sumX, sumY float64
	neutral := r.Points(gesture.Neutral)
	for _, p := range neutral {
		sumX += p.X / w
		sumY += p.Y / h
	}
	neutralX := sumX / float64(len(neutral))
	neutralY := sumY / float64(len(neutral))

	jumpY := extreme(r.Points(gesture.Jump), func(p Point) float64 { return p.Y / h }, math.Min)
	duckY := extreme(r.Points(gesture.Duck), func(p Point) float64 { return p.Y / h }, math.Max)
	leftX := extreme(r.Points(gesture.Left), func(p Point) float64 { return p.X / w }, math.Min)
	rightX := extreme(r.Points(gesture.Right), func(p Point) float64 { return p.X / w }, math.Max)

	t := gesture.ThresholdSet{
		Jump:  clampLine(math.Min((neutralY+jumpY)/2, neutralY-Margin)),
		Duck:  clampLine(math.Max((neutralY+duckY)/2, neutralY+Margin)),
		Left:  clampLine(math.Min((neutralX+leftX)/2, neutralX-Margin)),
		Right: clampLine(math.Max((neutralX+rightX)/2, neutralX+Margin)),
	}
	if err := t.Validate(); err != nil {
		return gesture.ThresholdSet{}, fmt.Errorf("derive thresholds: %w", err)
	}
	return t, nil
}

// extreme folds pts through coord with pick (math.Min or math.Max).
func extreme(pts []Point, coord func(Point) float64, pick func(a, b float64) float64) float64 {
	v := coord(pts[0])
	for _, p := range pts[1:] {
		v = pick(v, coord(p))
	}
	return v
}

func clampLine(v float64) float64 {
	return math.Max(minLine, math.Min(maxLine, v))
}
