package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gazebridge/pkg/math"
)

func TestHeadForward(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       math.Vec3
	}{
		{"ahead", 0, 0, math.Vec3{Z: -1}},
		{"left", 90, 0, math.Vec3{X: -1}},
		{"right", -90, 0, math.Vec3{X: 1}},
		{"up", 0, 90, math.Vec3{Y: 1}},
		{"behind", 180, 0, math.Vec3{Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHead()
			h.TurnDegrees(tt.yaw, tt.pitch)
			if got := h.Forward(); !got.ApproxEqual(tt.want, 1e-5) {
				t.Errorf("Forward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeadPitchClamp(t *testing.T) {
	h := NewHead()
	h.Turn(0, 10)
	if h.Pitch != h.MaxPitch {
		t.Errorf("Pitch = %v, want clamp at %v", h.Pitch, h.MaxPitch)
	}
	h.Turn(0, -20)
	if h.Pitch != h.MinPitch {
		t.Errorf("Pitch = %v, want clamp at %v", h.Pitch, h.MinPitch)
	}
}

func TestHeadYawWraps(t *testing.T) {
	h := NewHead()
	for i := 0; i < 10; i++ {
		h.TurnDegrees(100, 0)
	}
	if h.Yaw <= -math32.Pi || h.Yaw > math32.Pi {
		t.Errorf("Yaw = %v, outside (-Pi, Pi]", h.Yaw)
	}
	// 1000 degrees is 280, which wraps to -80.
	if want := float32(-80) * math32.Pi / 180; math32.Abs(h.Yaw-want) > 1e-4 {
		t.Errorf("Yaw = %v, want %v", h.Yaw, want)
	}
}

func TestHandleLook(t *testing.T) {
	h := NewHead()
	h.HandleLook(100, 0)
	if h.Yaw >= 0 {
		t.Errorf("dragging right should turn right (negative yaw), got %v", h.Yaw)
	}
	h.HandleLook(0, -100)
	if h.Pitch <= 0 {
		t.Errorf("dragging up should look up, got pitch %v", h.Pitch)
	}
}
