package calibration

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ayusman/airrunner/internal/gesture"
)

func recordOf(buckets map[gesture.Action][]Point) *Record {
	r := NewRecord()
	for step, pts := range buckets {
		for _, p := range pts {
			r.Add(step, p)
		}
	}
	return r
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[gesture.Action][]Point
		want    gesture.ThresholdSet
	}{
		{
			name: "strong poses use midpoints",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{50, 50}, {50, 50}},
				gesture.Jump:    {{50, 30}, {50, 20}},
				gesture.Duck:    {{50, 70}, {50, 80}},
				gesture.Left:    {{30, 50}, {20, 50}},
				gesture.Right:   {{70, 50}, {80, 50}},
			},
			want: gesture.ThresholdSet{Jump: 0.35, Duck: 0.65, Left: 0.35, Right: 0.65},
		},
		{
			name: "weak poses fall back to margin",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{50, 50}},
				gesture.Jump:    {{50, 48}},
				gesture.Duck:    {{50, 52}},
				gesture.Left:    {{48, 50}},
				gesture.Right:   {{52, 50}},
			},
			want: gesture.ThresholdSet{Jump: 0.45, Duck: 0.55, Left: 0.45, Right: 0.55},
		},
		{
			name: "extremes equal neutral",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{40, 60}},
				gesture.Jump:    {{40, 60}},
				gesture.Duck:    {{40, 60}},
				gesture.Left:    {{40, 60}},
				gesture.Right:   {{40, 60}},
			},
			want: gesture.ThresholdSet{Jump: 0.55, Duck: 0.65, Left: 0.35, Right: 0.45},
		},
		{
			name: "neutral mean averages all points",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{40, 40}, {60, 60}},
				gesture.Jump:    {{50, 50}},
				gesture.Duck:    {{50, 50}},
				gesture.Left:    {{50, 50}},
				gesture.Right:   {{50, 50}},
			},
			want: gesture.ThresholdSet{Jump: 0.45, Duck: 0.55, Left: 0.45, Right: 0.55},
		},
		{
			name: "neutral at the top edge is clamped",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{50, 2}},
				gesture.Jump:    {{50, 0}},
				gesture.Duck:    {{50, 30}},
				gesture.Left:    {{20, 2}},
				gesture.Right:   {{80, 2}},
			},
			want: gesture.ThresholdSet{Jump: 0.01, Duck: 0.16, Left: 0.35, Right: 0.65},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(recordOf(tt.buckets), 100, 100)
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if !approx(got.Jump, tt.want.Jump) || !approx(got.Duck, tt.want.Duck) ||
				!approx(got.Left, tt.want.Left) || !approx(got.Right, tt.want.Right) {
				t.Errorf("Derive() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDerive_NormalizesByFrameSize(t *testing.T) {
	r := recordOf(map[gesture.Action][]Point{
		gesture.Neutral: {{320, 240}},
		gesture.Jump:    {{320, 48}},
		gesture.Duck:    {{320, 432}},
		gesture.Left:    {{64, 240}},
		gesture.Right:   {{576, 240}},
	})
	got, err := Derive(r, 640, 480)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	want := gesture.ThresholdSet{Jump: 0.3, Duck: 0.7, Left: 0.3, Right: 0.7}
	if !approx(got.Jump, want.Jump) || !approx(got.Duck, want.Duck) ||
		!approx(got.Left, want.Left) || !approx(got.Right, want.Right) {
		t.Errorf("Derive() = %+v, want %+v", got, want)
	}
}

func TestDerive_EmptyBucket(t *testing.T) {
	full := map[gesture.Action][]Point{
		gesture.Neutral: {{50, 50}},
		gesture.Jump:    {{50, 20}},
		gesture.Duck:    {{50, 80}},
		gesture.Left:    {{20, 50}},
		gesture.Right:   {{80, 50}},
	}

	for _, missing := range Steps {
		t.Run(string(missing), func(t *testing.T) {
			buckets := make(map[gesture.Action][]Point)
			for k, v := range full {
				if k != missing {
					buckets[k] = v
				}
			}
			got, err := Derive(recordOf(buckets), 100, 100)
			if !errors.Is(err, ErrEmptyBucket) {
				t.Fatalf("Derive() error = %v, want ErrEmptyBucket", err)
			}
			if got != (gesture.ThresholdSet{}) {
				t.Errorf("Derive() = %+v, want zero value", got)
			}
		})
	}
}

func TestDerive_NilRecord(t *testing.T) {
	if _, err := Derive(nil, 100, 100); !errors.Is(err, ErrEmptyBucket) {
		t.Errorf("Derive(nil) error = %v, want ErrEmptyBucket", err)
	}
}

func TestDerive_InvalidFrame(t *testing.T) {
	if _, err := Derive(NewRecord(), 0, 480); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("Derive() error = %v, want ErrInvalidFrame", err)
	}
}

func TestDerive_AlwaysValid(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const w, h = 640.0, 480.0

	for i := 0; i < 500; i++ {
		nx, ny := rng.Float64()*w, rng.Float64()*h
		jitter := func(v, span float64) float64 {
			return math.Max(0, math.Min(span, v+(rng.Float64()-0.5)*span*0.3))
		}
		r := NewRecord()
		for j := 0; j < 5; j++ {
			r.Add(gesture.Neutral, Point{nx, ny})
			r.Add(gesture.Jump, Point{jitter(nx, w), jitter(ny, h)})
			r.Add(gesture.Duck, Point{jitter(nx, w), jitter(ny, h)})
			r.Add(gesture.Left, Point{jitter(nx, w), jitter(ny, h)})
			r.Add(gesture.Right, Point{jitter(nx, w), jitter(ny, h)})
		}

		got, err := Derive(r, int(w), int(h))
		if err != nil {
			t.Fatalf("iteration %d: Derive() error = %v", i, err)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("iteration %d: derived %+v invalid: %v", i, got, err)
		}
		if got.Duck-got.Jump <= 0 || got.Right-got.Left <= 0 {
			t.Fatalf("iteration %d: degenerate band %+v", i, got)
		}
	}
}

func TestDerive_OutOfFrameNeutral(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[gesture.Action][]Point
	}{
		{
			name: "above the frame",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{50, -100}},
				gesture.Jump:    {{50, -130}},
				gesture.Duck:    {{50, -90}},
				gesture.Left:    {{20, -100}},
				gesture.Right:   {{80, -100}},
			},
		},
		{
			name: "below the frame",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{50, 200}},
				gesture.Jump:    {{50, 180}},
				gesture.Duck:    {{50, 230}},
				gesture.Left:    {{20, 200}},
				gesture.Right:   {{80, 200}},
			},
		},
		{
			name: "left of the frame",
			buckets: map[gesture.Action][]Point{
				gesture.Neutral: {{-100, 50}},
				gesture.Jump:    {{-100, 20}},
				gesture.Duck:    {{-100, 80}},
				gesture.Left:    {{-150, 50}},
				gesture.Right:   {{-80, 50}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(recordOf(tt.buckets), 100, 100)
			if !errors.Is(err, gesture.ErrInvalidThresholds) {
				t.Fatalf("Derive() error = %v, want ErrInvalidThresholds", err)
			}
			if got != (gesture.ThresholdSet{}) {
				t.Errorf("Derive() = %+v, want zero value", got)
			}
		})
	}
}
