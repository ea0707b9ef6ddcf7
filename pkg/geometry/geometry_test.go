package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecClose(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func quatClose(a, b Quaternion) bool {
	// Antipodal quaternions represent the same rotation.
	d := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	return math.Abs(math.Abs(d)-1) < eps
}

// zRot builds a rotation of angle radians about the Z axis.
func zRot(angle float64) Quaternion {
	return Quaternion{Z: math.Sin(angle / 2), W: math.Cos(angle / 2)}
}

func TestQuaternionRotate(t *testing.T) {
	q := zRot(math.Pi / 2)
	got := q.Rotate(Vec3{X: 1})
	if !vecClose(got, Vec3{Y: 1}) {
		t.Fatalf("90 deg Z rotation of +X should be +Y, got %+v", got)
	}
}

func TestQuaternionMulMatchesSequentialRotate(t *testing.T) {
	a := zRot(math.Pi / 3)
	b := Quaternion{X: math.Sin(0.4), W: math.Cos(0.4)}
	v := Vec3{0.3, -1.2, 0.5}

	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	if !vecClose(got, want) {
		t.Fatalf("composed rotation mismatch: got %+v, want %+v", got, want)
	}
}

func TestQuaternionConjugateInverts(t *testing.T) {
	q := Quaternion{0.1, -0.2, 0.3, 0.9}.Normalized()
	v := Vec3{1, 2, 3}
	got := q.Conjugate().Rotate(q.Rotate(v))
	if !vecClose(got, v) {
		t.Fatalf("conjugate did not invert rotation: got %+v", got)
	}
}

func TestRotationVectorRoundTrip(t *testing.T) {
	q := Quaternion{0.2, 0.1, -0.3, 0.8}.Normalized()
	back := QuaternionFromRotationVector(q.RotationVector())
	if !quatClose(q, back) {
		t.Fatalf("rotation vector round trip mismatch: got %+v, want %+v", back, q)
	}

	// Negative-w quaternions must map to the same rotation.
	neg := Quaternion{-q.X, -q.Y, -q.Z, -q.W}
	back = QuaternionFromRotationVector(neg.RotationVector())
	if !quatClose(q, back) {
		t.Fatalf("antipodal round trip mismatch: got %+v, want %+v", back, q)
	}
}

func TestTransformMulInverse(t *testing.T) {
	a := RigidTransform{
		Translation: Vec3{1, -2, 0.5},
		Rotation:    zRot(0.7),
	}
	b := RigidTransform{
		Translation: Vec3{-0.3, 0.1, 2},
		Rotation:    Quaternion{X: math.Sin(0.25), W: math.Cos(0.25)},
	}

	v := Vec3{0.4, 0.4, -1}
	got := a.Mul(b).Apply(v)
	want := a.Apply(b.Apply(v))
	if !vecClose(got, want) {
		t.Fatalf("composed transform mismatch: got %+v, want %+v", got, want)
	}

	id := a.Mul(a.Inverse())
	if !vecClose(id.Translation, Vec3{}) || !quatClose(id.Rotation, QuaternionIdentity()) {
		t.Fatalf("a * a^-1 should be identity, got %+v", id)
	}
}

func TestSlerpEndpointsAndMidpoint(t *testing.T) {
	a := QuaternionIdentity()
	b := zRot(math.Pi / 2)

	if got := Slerp(a, b, 0); !quatClose(got, a) {
		t.Fatalf("slerp(0) should return start, got %+v", got)
	}
	if got := Slerp(a, b, 1); !quatClose(got, b) {
		t.Fatalf("slerp(1) should return end, got %+v", got)
	}

	mid := Slerp(a, b, 0.5)
	want := zRot(math.Pi / 4)
	if !quatClose(mid, want) {
		t.Fatalf("slerp midpoint mismatch: got %+v, want %+v", mid, want)
	}
}

func TestInterpolate(t *testing.T) {
	a := TransformIdentity()
	b := RigidTransform{Translation: Vec3{2, 0, 0}, Rotation: zRot(math.Pi / 2)}

	mid := Interpolate(a, b, 0.5)
	if !vecClose(mid.Translation, Vec3{X: 1}) {
		t.Fatalf("interpolated translation mismatch: got %+v", mid.Translation)
	}
	if !quatClose(mid.Rotation, zRot(math.Pi/4)) {
		t.Fatalf("interpolated rotation mismatch: got %+v", mid.Rotation)
	}

	if math.Abs(mid.Rotation.Norm()-1) > eps {
		t.Fatalf("interpolated rotation not unit norm: %v", mid.Rotation.Norm())
	}
}
