// Package geometry provides the minimal rigid-body math used for hand-eye
// calibration: 3-vectors, unit quaternions and rigid transforms (rotation +
// translation, no scale or shear).
package geometry

import "math"

// Vec3 is a 3-component translation or direction.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Quaternion is a rotation in x, y, z, w component order. All operations
// assume (and preserve) unit norm unless stated otherwise.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// QuaternionIdentity is the no-rotation quaternion.
func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns q scaled to unit norm. A zero quaternion normalizes to
// identity rather than NaN.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return QuaternionIdentity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Mul returns the Hamilton product q*o, i.e. the rotation o followed by q.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate is the inverse rotation for unit quaternions.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// RotationVector returns axis*2*sin(angle/2), the modified Rodrigues form
// used by the Tsai-Lenz linear system. The sign of w is folded into the
// vector so antipodal quaternions map to the same rotation.
func (q Quaternion) RotationVector() Vec3 {
	v := Vec3{q.X, q.Y, q.Z}
	if q.W < 0 {
		v = v.Scale(-1)
	}
	return v.Scale(2)
}

// QuaternionFromRotationVector is the inverse of RotationVector. The input
// must satisfy |p| <= 2.
func QuaternionFromRotationVector(p Vec3) Quaternion {
	half := p.Scale(0.5)
	w2 := 1 - half.Dot(half)
	if w2 < 0 {
		w2 = 0
	}
	return Quaternion{half.X, half.Y, half.Z, math.Sqrt(w2)}.Normalized()
}

// Slerp interpolates between a and b along the shortest arc. t is clamped to
// [0, 1].
func Slerp(a, b Quaternion, t float64) Quaternion {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	if dot < 0 {
		b = Quaternion{-b.X, -b.Y, -b.Z, -b.W}
		dot = -dot
	}

	// Nearly parallel: fall back to normalized lerp.
	if dot > 0.9995 {
		return Quaternion{
			a.X + t*(b.X-a.X),
			a.Y + t*(b.Y-a.Y),
			a.Z + t*(b.Z-a.Z),
			a.W + t*(b.W-a.W),
		}.Normalized()
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Quaternion{
		wa*a.X + wb*b.X,
		wa*a.Y + wb*b.Y,
		wa*a.Z + wb*b.Z,
		wa*a.W + wb*b.W,
	}.Normalized()
}

// RigidTransform is a rotation followed by a translation. No scale, no shear.
type RigidTransform struct {
	Translation Vec3       `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

func TransformIdentity() RigidTransform {
	return RigidTransform{Rotation: QuaternionIdentity()}
}

// Mul composes the two transforms: (t.Mul(o)).Apply(v) == t.Apply(o.Apply(v)).
func (t RigidTransform) Mul(o RigidTransform) RigidTransform {
	return RigidTransform{
		Translation: t.Translation.Add(t.Rotation.Rotate(o.Translation)),
		Rotation:    t.Rotation.Mul(o.Rotation).Normalized(),
	}
}

// Inverse returns the transform mapping the target frame back to the source.
func (t RigidTransform) Inverse() RigidTransform {
	r := t.Rotation.Conjugate()
	return RigidTransform{
		Translation: r.Rotate(t.Translation).Scale(-1),
		Rotation:    r,
	}
}

// Apply transforms a point.
func (t RigidTransform) Apply(v Vec3) Vec3 {
	return t.Rotation.Rotate(v).Add(t.Translation)
}

// Interpolate blends two transforms: linear in translation, slerp in
// rotation. Used for timestamped lookups between two buffered observations.
func Interpolate(a, b RigidTransform, t float64) RigidTransform {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RigidTransform{
		Translation: a.Translation.Add(b.Translation.Sub(a.Translation).Scale(t)),
		Rotation:    Slerp(a.Rotation, b.Rotation, t),
	}
}
