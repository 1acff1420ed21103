package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu        sync.Mutex
	landmarks []Landmarks
	err       error
	calls     int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmark sets that will be returned by Detect.
// A nil or empty slice simulates nobody in view.
func (m *MockDetector) SetLandmarks(landmarks []Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landmarks = landmarks
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FistLandmarks returns a preset right hand with index, middle and ring fingers
// curled (tips below their PIP joints).
func FistLandmarks() Landmarks {
	p := make([]Point3D, NumHandLandmarks)

	p[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	p[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	p[ThumbMCP] = Point3D{X: 0.57, Y: 0.70, Z: -0.01}
	p[ThumbIP] = Point3D{X: 0.56, Y: 0.67, Z: -0.03}
	p[ThumbTip] = Point3D{X: 0.53, Y: 0.66, Z: -0.04}

	p[IndexMCP] = Point3D{X: 0.55, Y: 0.64, Z: -0.02}
	p[IndexPIP] = Point3D{X: 0.55, Y: 0.60, Z: -0.05}
	p[IndexDIP] = Point3D{X: 0.54, Y: 0.63, Z: -0.05}
	p[IndexTip] = Point3D{X: 0.54, Y: 0.66, Z: -0.03}

	p[MiddleMCP] = Point3D{X: 0.50, Y: 0.63, Z: -0.02}
	p[MiddlePIP] = Point3D{X: 0.50, Y: 0.59, Z: -0.05}
	p[MiddleDIP] = Point3D{X: 0.50, Y: 0.62, Z: -0.05}
	p[MiddleTip] = Point3D{X: 0.50, Y: 0.65, Z: -0.03}

	p[RingMCP] = Point3D{X: 0.46, Y: 0.64, Z: -0.02}
	p[RingPIP] = Point3D{X: 0.46, Y: 0.60, Z: -0.05}
	p[RingDIP] = Point3D{X: 0.46, Y: 0.63, Z: -0.05}
	p[RingTip] = Point3D{X: 0.46, Y: 0.66, Z: -0.03}

	p[PinkyMCP] = Point3D{X: 0.42, Y: 0.66, Z: -0.02}
	p[PinkyPIP] = Point3D{X: 0.42, Y: 0.63, Z: -0.04}
	p[PinkyDIP] = Point3D{X: 0.42, Y: 0.65, Z: -0.04}
	p[PinkyTip] = Point3D{X: 0.42, Y: 0.67, Z: -0.03}

	return Landmarks{Points: p, Handedness: "Right", Score: 0.95}
}

// OpenPalmLandmarks returns a preset right hand with all fingers extended upward.
func OpenPalmLandmarks() Landmarks {
	p := make([]Point3D, NumHandLandmarks)

	p[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	p[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	p[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	p[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	p[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	p[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	p[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	p[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	p[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	p[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	p[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	p[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	p[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	p[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	p[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	p[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	p[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	p[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	p[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	p[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	p[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return Landmarks{Points: p, Handedness: "Right", Score: 0.95}
}

// HandAt shifts a hand preset so its middle finger MCP (the hand-mode
// control point) sits at (x, y).
func HandAt(hand Landmarks, x, y float64) Landmarks {
	if len(hand.Points) <= MiddleMCP {
		return hand
	}
	dx := x - hand.Points[MiddleMCP].X
	dy := y - hand.Points[MiddleMCP].Y

	moved := Landmarks{
		Points:     make([]Point3D, len(hand.Points)),
		Handedness: hand.Handedness,
		Score:      hand.Score,
	}
	for i, pt := range hand.Points {
		moved.Points[i] = Point3D{X: pt.X + dx, Y: pt.Y + dy, Z: pt.Z}
	}
	// The control point lands exactly on (x, y), free of rounding.
	moved.Points[MiddleMCP].X = x
	moved.Points[MiddleMCP].Y = y
	return moved
}

// PoseAt returns a preset upright body whose nose tip is at (x, y).
func PoseAt(x, y float64) Landmarks {
	p := make([]Point3D, NumPoseLandmarks)
	for i := range p {
		// Everything not explicitly placed hangs below the head.
		p[i] = Point3D{X: x, Y: y + 0.3}
	}

	p[PoseNose] = Point3D{X: x, Y: y}
	p[PoseLeftShoulder] = Point3D{X: x + 0.12, Y: y + 0.18}
	p[PoseRightShoulder] = Point3D{X: x - 0.12, Y: y + 0.18}
	p[PoseLeftHip] = Point3D{X: x + 0.08, Y: y + 0.5}
	p[PoseRightHip] = Point3D{X: x - 0.08, Y: y + 0.5}

	return Landmarks{Points: p, Score: 0.9}
}
