package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "hand", want: ModeHand},
		{input: "HAND", want: ModeHand},
		{input: " body ", want: ModeBody},
		{input: "face", want: ModeBody},
		{input: "pose", want: ModeBody},
		{input: "feet", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeHand {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeHand)
	}
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.7 {
		t.Errorf("MinConfidence = %f, want 0.7", cfg.MinConfidence)
	}
	if cfg.MinTrackingConf != 0.5 {
		t.Errorf("MinTrackingConf = %f, want 0.5", cfg.MinTrackingConf)
	}
}

func TestLandmarks_Point(t *testing.T) {
	hand := OpenPalmLandmarks()

	pt, ok := hand.Point(MiddleMCP)
	if !ok {
		t.Fatal("Point(MiddleMCP) should exist on a full hand")
	}
	if pt != hand.Points[MiddleMCP] {
		t.Errorf("Point(MiddleMCP) = %+v, want %+v", pt, hand.Points[MiddleMCP])
	}

	if _, ok := hand.Point(NumHandLandmarks); ok {
		t.Error("Point beyond the slice should report false")
	}
	if _, ok := hand.Point(-1); ok {
		t.Error("negative index should report false")
	}

	var missing *Landmarks
	if _, ok := missing.Point(0); ok {
		t.Error("nil landmarks should report false")
	}
}

func TestHandAt(t *testing.T) {
	moved := HandAt(OpenPalmLandmarks(), 0.2, 0.3)

	if len(moved.Points) != NumHandLandmarks {
		t.Fatalf("len(Points) = %d, want %d", len(moved.Points), NumHandLandmarks)
	}
	if moved.Points[MiddleMCP].X != 0.2 || moved.Points[MiddleMCP].Y != 0.3 {
		t.Errorf("MiddleMCP = %+v, want exactly (0.2, 0.3)", moved.Points[MiddleMCP])
	}
	if near := HandAt(OpenPalmLandmarks(), 0.1, 0.1); near.Points[MiddleMCP].X != 0.1 || near.Points[MiddleMCP].Y != 0.1 {
		t.Errorf("MiddleMCP = %+v, want exactly (0.1, 0.1)", near.Points[MiddleMCP])
	}

	// Relative geometry must survive the shift.
	orig := OpenPalmLandmarks()
	wantDY := orig.Points[MiddleTip].Y - orig.Points[MiddleMCP].Y
	gotDY := moved.Points[MiddleTip].Y - moved.Points[MiddleMCP].Y
	if math.Abs(wantDY-gotDY) > epsilon {
		t.Errorf("finger length changed: got %f, want %f", gotDY, wantDY)
	}
}

func TestFistLandmarks(t *testing.T) {
	fist := FistLandmarks()

	pairs := [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}}
	for _, pair := range pairs {
		if fist.Points[pair[0]].Y <= fist.Points[pair[1]].Y {
			t.Errorf("tip %d should be below PIP %d (higher Y)", pair[0], pair[1])
		}
	}
}

func TestOpenPalmLandmarks(t *testing.T) {
	palm := OpenPalmLandmarks()

	t.Run("has correct handedness and score", func(t *testing.T) {
		if palm.Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", palm.Handedness)
		}
		if palm.Score < 0.9 {
			t.Errorf("expected score >= 0.9, got %f", palm.Score)
		}
	})

	t.Run("all fingers are extended", func(t *testing.T) {
		minExtension := 0.2
		for _, pair := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
			ext := palm.Points[pair[0]].Y - palm.Points[pair[1]].Y
			if ext < minExtension {
				t.Errorf("finger %d not extended enough (extension: %f), expected >= %f", pair[1], ext, minExtension)
			}
		}
	})
}

func TestPoseAt(t *testing.T) {
	pose := PoseAt(0.45, 0.35)

	if len(pose.Points) != NumPoseLandmarks {
		t.Fatalf("len(Points) = %d, want %d", len(pose.Points), NumPoseLandmarks)
	}
	nose := pose.Points[PoseNose]
	if nose.X != 0.45 || nose.Y != 0.35 {
		t.Errorf("nose = %+v, want (0.45, 0.35)", nose)
	}
	if pose.Points[PoseLeftShoulder].Y <= nose.Y {
		t.Error("shoulders should sit below the nose")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns configured landmarks", func(t *testing.T) {
		d := NewMockDetector()
		d.SetLandmarks([]Landmarks{OpenPalmLandmarks()})

		got, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if d.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", d.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		d := NewMockDetector()
		wantErr := errors.New("camera unplugged")
		d.SetError(wantErr)

		if _, err := d.Detect(nil); !errors.Is(err, wantErr) {
			t.Errorf("Detect() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("empty means nobody in view", func(t *testing.T) {
		d := NewMockDetector()
		got, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("close is a no-op", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes landmark sets", func(t *testing.T) {
		line := []byte(`{"landmarks":[{"points":[{"x":0.1,"y":0.2,"z":0.0},{"x":0.3,"y":0.4,"z":0.1}],"handedness":"Left","score":0.8}]}` + "\n")

		got, err := parseResponse(line)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Handedness != "Left" || got[0].Score != 0.8 {
			t.Errorf("metadata = %q/%f, want Left/0.8", got[0].Handedness, got[0].Score)
		}
		if got[0].Points[1].X != 0.3 || got[0].Points[1].Y != 0.4 {
			t.Errorf("Points[1] = %+v", got[0].Points[1])
		}
	})

	t.Run("skips empty sets", func(t *testing.T) {
		got, err := parseResponse([]byte(`{"landmarks":[{"points":[]}]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"landmarks":[],"error":"model missing"}`)); err == nil {
			t.Error("expected error for service error field")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}
