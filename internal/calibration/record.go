// Package calibration runs the guided recording session that derives a
// personal ThresholdSet from five reference poses.
package calibration

import "github.com/ayusman/airrunner/internal/gesture"

// Steps is the order in which reference poses are recorded.
var Steps = []gesture.Action{
	gesture.Neutral,
	gesture.Jump,
	gesture.Duck,
	gesture.Left,
	gesture.Right,
}

// Point is a control point in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record holds the pixel-space points collected for each step.
type Record struct {
	buckets map[gesture.Action][]Point
}

// NewRecord returns an empty record with one bucket per step.
func NewRecord() *Record {
	r := &Record{buckets: make(map[gesture.Action][]Point, len(Steps))}
	for _, step := range Steps {
		r.buckets[step] = nil
	}
	return r
}

// Add appends p to the bucket for step. Unknown steps are ignored.
func (r *Record) Add(step gesture.Action, p Point) {
	if _, ok := r.buckets[step]; !ok {
		return
	}
	r.buckets[step] = append(r.buckets[step], p)
}

// Points returns the points recorded for step in recording order.
func (r *Record) Points(step gesture.Action) []Point {
	return r.buckets[step]
}

// Counts returns the number of points per step.
func (r *Record) Counts() map[gesture.Action]int {
	counts := make(map[gesture.Action]int, len(r.buckets))
	for step, pts := range r.buckets {
		counts[step] = len(pts)
	}
	return counts
}
