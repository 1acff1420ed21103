package capture

import (
	"bytes"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/airrunner/internal/gesture"
)

func TestGuidesFor(t *testing.T) {
	got := GuidesFor(gesture.DefaultThresholds(), 640, 480)
	want := Guides{JumpY: 192, DuckY: 288, LeftX: 256, RightX: 384}
	if got != want {
		t.Errorf("GuidesFor() = %+v, want %+v", got, want)
	}
}

func TestDraw_MarksFrame(t *testing.T) {
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer mat.Close()

	Draw(&mat, Overlay{
		Thresholds: gesture.DefaultThresholds(),
		Point:      &gesture.Sample{X: 0.5, Y: 0.5},
		Action:     gesture.Jump,
		Banner:     "READY 3",
		Status:     "hand",
	})

	// The guide line at y=192 must no longer be black.
	px := mat.GetVecbAt(192, 10)
	if px[0] == 0 && px[1] == 0 && px[2] == 0 {
		t.Error("guide line not drawn")
	}
	// Control point at the center.
	px = mat.GetVecbAt(240, 320)
	if px[0] == 0 && px[1] == 0 && px[2] == 0 {
		t.Error("control point not drawn")
	}
}

func TestMirror(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 4, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetUCharAt(0, 0, 255)

	Mirror(&mat)

	if mat.GetUCharAt(0, 3) != 255 || mat.GetUCharAt(0, 0) != 0 {
		t.Errorf("Mirror did not flip horizontally")
	}
}

func TestEncodeJPEG(t *testing.T) {
	mat := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer mat.Close()

	data, err := EncodeJPEG(&mat)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("EncodeJPEG() does not start with a JPEG SOI marker")
	}
}
