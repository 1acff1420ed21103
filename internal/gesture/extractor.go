package gesture

import "github.com/ayusman/airrunner/internal/detector"

// FistFingers is the number of folded fingers that reads as a fist.
const FistFingers = 3

// Sample is one frame's control point in normalized frame coordinates.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// FoldedFingers counts curled fingers in hand mode; always 0 in body mode.
	FoldedFingers int `json:"folded_fingers,omitempty"`
}

// ControlPointExtractor selects the control point from a frame's detections.
// It returns nil when nothing usable was detected.
type ControlPointExtractor interface {
	Extract(detections []detector.Landmarks) *Sample
}

// NoseExtractor drives body mode from the nose tip of the first detected pose.
type NoseExtractor struct{}

// Extract implements ControlPointExtractor.
func (NoseExtractor) Extract(detections []detector.Landmarks) *Sample {
	if len(detections) == 0 {
		return nil
	}
	nose, ok := detections[0].Point(detector.PoseNose)
	if !ok {
		return nil
	}
	return &Sample{X: nose.X, Y: nose.Y}
}

// HandExtractor drives hand mode from the middle finger MCP of the first
// detected hand and counts folded fingers for fist detection.
type HandExtractor struct{}

// fingerJoints pairs fingertip and PIP joint for index, middle and ring.
var fingerJoints = [][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
}

// Extract implements ControlPointExtractor.
func (HandExtractor) Extract(detections []detector.Landmarks) *Sample {
	if len(detections) == 0 {
		return nil
	}
	hand := &detections[0]
	if len(hand.Points) < detector.NumHandLandmarks {
		return nil
	}

	center := hand.Points[detector.MiddleMCP]
	return &Sample{
		X:             center.X,
		Y:             center.Y,
		FoldedFingers: FoldedFingers(hand),
	}
}

// FoldedFingers counts fingers whose tip is below its PIP joint.
// Image Y grows downward.
func FoldedFingers(hand *detector.Landmarks) int {
	folded := 0
	for _, j := range fingerJoints {
		tip, okTip := hand.Point(j[0])
		pip, okPip := hand.Point(j[1])
		if okTip && okPip && tip.Y > pip.Y {
			folded++
		}
	}
	return folded
}

// ExtractorFor returns the control point extractor for a detector mode.
func ExtractorFor(mode detector.Mode) ControlPointExtractor {
	if mode == detector.ModeBody {
		return NoseExtractor{}
	}
	return HandExtractor{}
}
