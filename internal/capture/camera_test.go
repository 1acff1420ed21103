package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantFPS    int
		wantWidth  int
		wantHeight int
	}{
		{name: "defaults", cfg: DefaultConfig(), wantFPS: 30, wantWidth: 640, wantHeight: 480},
		{name: "zero config", cfg: Config{}, wantFPS: 30, wantWidth: 640, wantHeight: 480},
		{name: "custom", cfg: Config{DeviceID: 1, Width: 1280, Height: 720, FPS: 60}, wantFPS: 60, wantWidth: 1280, wantHeight: 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.cfg)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if w, h := cam.Size(); w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}
		})
	}
}

func TestDefaultConfig_Mirrors(t *testing.T) {
	if !DefaultConfig().Mirror {
		t.Error("DefaultConfig().Mirror = false")
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	tests := []struct {
		fps  int
		want int
	}{
		{fps: 10, want: 10},
		{fps: 15, want: 15},
		{fps: 0, want: 15},
		{fps: -5, want: 15},
	}
	for _, tt := range tests {
		cam.SetFPS(tt.fps)
		if got := cam.FPS(); got != tt.want {
			t.Errorf("SetFPS(%d): FPS() = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}
	if !cam.IsOpen() {
		t.Error("IsOpen() = false after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() error = %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() = true after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	_, err := NewCamera(DefaultConfig()).ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	if err := NewCamera(DefaultConfig()).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
