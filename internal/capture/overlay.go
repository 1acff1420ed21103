package capture

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/airrunner/internal/gesture"
)

var (
	guideColor  = color.RGBA{0, 255, 255, 0}
	pointColor  = color.RGBA{0, 255, 0, 0}
	fistColor   = color.RGBA{255, 0, 0, 0}
	bannerColor = color.RGBA{255, 255, 255, 0}
	actionColor = color.RGBA{255, 200, 0, 0}
)

// Overlay is what gets drawn over a frame.
type Overlay struct {
	Thresholds gesture.ThresholdSet
	Point      *gesture.Sample
	Action     gesture.Action
	// Banner is large centered text, e.g. a countdown or PAUSED.
	Banner string
	// Status is small text in the top-left corner.
	Status string
}

// Guides holds the trigger lines in pixel coordinates.
type Guides struct {
	JumpY  int
	DuckY  int
	LeftX  int
	RightX int
}

// GuidesFor converts normalized thresholds to pixel lines.
func GuidesFor(t gesture.ThresholdSet, width, height int) Guides {
	return Guides{
		JumpY:  int(t.Jump * float64(height)),
		DuckY:  int(t.Duck * float64(height)),
		LeftX:  int(t.Left * float64(width)),
		RightX: int(t.Right * float64(width)),
	}
}

// Draw renders o onto mat in place.
func Draw(mat *gocv.Mat, o Overlay) {
	w, h := mat.Cols(), mat.Rows()
	g := GuidesFor(o.Thresholds, w, h)

	gocv.Line(mat, image.Pt(0, g.JumpY), image.Pt(w, g.JumpY), guideColor, 2)
	gocv.Line(mat, image.Pt(0, g.DuckY), image.Pt(w, g.DuckY), guideColor, 2)
	gocv.Line(mat, image.Pt(g.LeftX, 0), image.Pt(g.LeftX, h), guideColor, 2)
	gocv.Line(mat, image.Pt(g.RightX, 0), image.Pt(g.RightX, h), guideColor, 2)

	if o.Point != nil {
		c := pointColor
		if o.Point.FoldedFingers >= gesture.FistFingers {
			c = fistColor
		}
		center := image.Pt(int(o.Point.X*float64(w)), int(o.Point.Y*float64(h)))
		gocv.Circle(mat, center, 10, c, -1)
	}

	if o.Status != "" {
		gocv.PutText(mat, o.Status, image.Pt(10, 25), gocv.FontHersheySimplex, 0.6, bannerColor, 2)
	}
	if !o.Action.IsNeutral() {
		gocv.PutText(mat, string(o.Action), image.Pt(10, h-20), gocv.FontHersheySimplex, 1.0, actionColor, 2)
	}
	if o.Banner != "" {
		size := gocv.GetTextSize(o.Banner, gocv.FontHersheySimplex, 2.0, 4)
		pos := image.Pt((w-size.X)/2, (h+size.Y)/2)
		gocv.PutText(mat, o.Banner, pos, gocv.FontHersheySimplex, 2.0, bannerColor, 4)
	}
}

// EncodeJPEG encodes mat as a JPEG image.
func EncodeJPEG(mat *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", *mat)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
