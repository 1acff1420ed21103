package gesture

import "github.com/ayusman/airrunner/internal/detector"

// Classify maps one frame's sample to an action.
//
// A nil sample is NEUTRAL. A fist pauses before any positional test. The
// positional tests run vertical before horizontal, above before below, so a
// sample past both a vertical and a horizontal line is classified vertical.
// The thresholds are assumed valid.
func Classify(s *Sample, t ThresholdSet) Action {
	if s == nil {
		return Neutral
	}
	if s.FoldedFingers >= FistFingers {
		return Pause
	}

	switch {
	case s.Y < t.Jump:
		return Jump
	case s.Y > t.Duck:
		return Duck
	case s.X < t.Left:
		return Left
	case s.X > t.Right:
		return Right
	default:
		return Neutral
	}
}

// Classifier pairs a control point extractor with Classify.
type Classifier struct {
	extractor ControlPointExtractor
}

// NewClassifier creates a Classifier for the given extractor.
func NewClassifier(extractor ControlPointExtractor) *Classifier {
	return &Classifier{extractor: extractor}
}

// Classify extracts the control point from detections and classifies it.
// The extracted sample is returned for display; it is nil when nobody was detected.
func (c *Classifier) Classify(detections []detector.Landmarks, t ThresholdSet) (Action, *Sample) {
	s := c.extractor.Extract(detections)
	return Classify(s, t), s
}
