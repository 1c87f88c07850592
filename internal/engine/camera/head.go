// Package camera provides the head pose gaze rays are cast from.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/gazebridge/pkg/math"
)

// Head is a first person viewpoint: a fixed eye position looking along -Z,
// turned by yaw about +Y and then by pitch about the turned +X.
type Head struct {
	Position math.Vec3

	Yaw   float32 // radians, positive turns left
	Pitch float32 // radians, positive looks up

	// Constraints
	MinPitch float32
	MaxPitch float32

	// Sensitivity
	LookSensitivity float32
}

// NewHead creates a head at the origin looking straight ahead.
func NewHead() *Head {
	return &Head{
		MinPitch:        -math32.Pi / 2,
		MaxPitch:        math32.Pi / 2,
		LookSensitivity: 0.005,
	}
}

// Orientation returns the head rotation as a quaternion.
func (h *Head) Orientation() math.Quat {
	return math.QuatFromYawPitch(h.Yaw, h.Pitch)
}

// Forward returns the unit view direction.
func (h *Head) Forward() math.Vec3 {
	return h.Orientation().Rotate(math.Vec3{Z: -1}).Normalize()
}

// Turn adds yaw and pitch in radians, clamping pitch and wrapping yaw into
// (-Pi, Pi].
func (h *Head) Turn(yaw, pitch float32) {
	h.Yaw = wrapAngle(h.Yaw + yaw)
	h.Pitch += pitch

	// Clamp pitch
	if h.Pitch < h.MinPitch {
		h.Pitch = h.MinPitch
	}
	if h.Pitch > h.MaxPitch {
		h.Pitch = h.MaxPitch
	}
}

// TurnDegrees is Turn with angles in degrees.
func (h *Head) TurnDegrees(yaw, pitch float32) {
	h.Turn(yaw*math32.Pi/180, pitch*math32.Pi/180)
}

// HandleLook turns the head from a pointer drag delta.
func (h *Head) HandleLook(deltaX, deltaY float32) {
	h.Turn(-deltaX*h.LookSensitivity, -deltaY*h.LookSensitivity)
}

func wrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a <= -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}
