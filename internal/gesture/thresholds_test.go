package gesture

import (
	"errors"
	"math"
	"testing"
)

func TestThresholdSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     ThresholdSet
		wantErr bool
	}{
		{name: "defaults", set: DefaultThresholds()},
		{name: "wide bands", set: ThresholdSet{Jump: 0.1, Duck: 0.9, Left: 0.1, Right: 0.9}},
		{name: "jump equals duck", set: ThresholdSet{Jump: 0.5, Duck: 0.5, Left: 0.4, Right: 0.6}, wantErr: true},
		{name: "jump above duck", set: ThresholdSet{Jump: 0.7, Duck: 0.3, Left: 0.4, Right: 0.6}, wantErr: true},
		{name: "left equals right", set: ThresholdSet{Jump: 0.4, Duck: 0.6, Left: 0.5, Right: 0.5}, wantErr: true},
		{name: "left above right", set: ThresholdSet{Jump: 0.4, Duck: 0.6, Left: 0.8, Right: 0.2}, wantErr: true},
		{name: "zero value", set: ThresholdSet{}, wantErr: true},
		{name: "out of range", set: ThresholdSet{Jump: 0.4, Duck: 1.2, Left: 0.4, Right: 0.6}, wantErr: true},
		{name: "negative", set: ThresholdSet{Jump: -0.1, Duck: 0.6, Left: 0.4, Right: 0.6}, wantErr: true},
		{name: "NaN", set: ThresholdSet{Jump: math.NaN(), Duck: 0.6, Left: 0.4, Right: 0.6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidThresholds) {
					t.Errorf("Validate() error = %v, want ErrInvalidThresholds", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestThresholdSet_OrDefault(t *testing.T) {
	custom := ThresholdSet{Jump: 0.3, Duck: 0.7, Left: 0.35, Right: 0.65}
	if got := custom.OrDefault(); got != custom {
		t.Errorf("OrDefault() = %+v, want %+v", got, custom)
	}

	broken := ThresholdSet{Jump: 0.7, Duck: 0.3, Left: 0.4, Right: 0.6}
	if got := broken.OrDefault(); got != DefaultThresholds() {
		t.Errorf("OrDefault() = %+v, want defaults", got)
	}
}

func TestDefaultKeyMap(t *testing.T) {
	keys := DefaultKeyMap()
	want := map[Action]string{Jump: "up", Duck: "down", Left: "left", Right: "right", Pause: "esc"}
	for a, k := range want {
		got, ok := keys.Key(a)
		if !ok || got != k {
			t.Errorf("Key(%s) = %q, %v; want %q", a, got, ok, k)
		}
	}
	if _, ok := keys.Key(Neutral); ok {
		t.Error("NEUTRAL should have no key")
	}
}
