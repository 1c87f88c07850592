package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if got := q.Rotate(Vec3{1, 2, 3}); got != (Vec3{1, 2, 3}) {
		t.Errorf("identity Rotate() = %v", got)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	length := math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W))
	if math.Abs(length-1) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatToMat4MatchesRotateY(t *testing.T) {
	angle := float32(0.8)
	got := QuatFromAxisAngle(Vec3{Y: 1}, angle).ToMat4()
	if !got.ApproxEqual(RotateY(angle), 1e-5) {
		t.Errorf("ToMat4() = %v, want %v", got, RotateY(angle))
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromYawPitch(0.6, -0.3)
	v := Vec3{0.2, -1, 3}
	got := q.Rotate(v)
	want := q.ToMat4().TransformDirection(v)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Rotate() = %v, matrix gives %v", got, want)
	}
}

func TestQuatFromYawPitchForward(t *testing.T) {
	// Yawing 90 degrees left turns -Z forward into -X.
	q := QuatFromYawPitch(float32(math.Pi/2), 0)
	got := q.Rotate(Vec3{Z: -1})
	if !got.ApproxEqual(Vec3{X: -1}, 1e-5) {
		t.Errorf("forward after yaw = %v, want (-1, 0, 0)", got)
	}

	// Pitching up tilts forward toward +Y.
	q = QuatFromYawPitch(0, float32(math.Pi/2))
	got = q.Rotate(Vec3{Z: -1})
	if !got.ApproxEqual(Vec3{Y: 1}, 1e-5) {
		t.Errorf("forward after pitch = %v, want (0, 1, 0)", got)
	}
}
