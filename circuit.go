/*
Package circuit implements waypoint circuits: routes built from authored
control points, sampled by distance, and agents driven along them.

The root package holds the numeric helpers shared by the sub-packages.
Vectors are mgl64.Vec3, orientations are mgl64.Quat. The world is y-up and
an unrotated body faces +z.

Sub-packages:

	route   builds distance tables and curve points, samples positions by distance
	follow  is the path-following state machine
	motion  moves a body toward a target and gates it by a forward ray
	zone    holds obstacle zones and their busy-flags

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package circuit

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'circuit'
func tracer() tracing.Trace {
	return tracing.Select("circuit")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// Clamp01 clamps t to [0,1].
func Clamp01(t float64) float64 {
	return mgl64.Clamp(t, 0, 1)
}

// Lerp interpolates between a and b, t clamped to [0,1].
func Lerp(a, b float64, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// InverseLerp returns the clamped parameter t for which Lerp(a,b,t) = v.
// For a = b the result is 0.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// Repeat wraps t into [0,length]. Negative t wraps from the top.
func Repeat(t, length float64) float64 {
	return mgl64.Clamp(t-math.Floor(t/length)*length, 0, length)
}

// === Vectors ===============================================================

// Up is the world's up direction.
var Up = mgl64.Vec3{0, 1, 0}

// Forward is the direction an unrotated body faces.
var Forward = mgl64.Vec3{0, 0, 1}

// V is a quick notation for constructing a vector from floats.
func V(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// VString is a pretty Stringer for vectors.
func VString(v mgl64.Vec3) string {
	return fmt.Sprintf("(%g,%g,%g)", v[0], v[1], v[2])
}

// Equal compares two vectors component-wise within Epsilon.
func Equal(a, b mgl64.Vec3) bool {
	return Is0(a[0]-b[0]) && Is0(a[1]-b[1]) && Is0(a[2]-b[2])
}

// IsZero is a predicate: is v the null vector?
func IsZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Distance returns |a-b|.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// LerpV interpolates between two vectors, t clamped to [0,1].
func LerpV(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	return mgl64.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// Normalized returns v scaled to unit length. Vectors shorter than 1e-5
// normalize to the null vector instead of NaN.
func Normalized(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l <= 1e-5 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// MoveTowards moves current toward target by at most maxDelta and never
// overshoots.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	to := target.Sub(current)
	d := to.Len()
	if d == 0 || (maxDelta >= 0 && d <= maxDelta) {
		return target
	}
	return current.Add(to.Mul(maxDelta / d))
}

// === Orientations ==========================================================

// LookRotation returns the orientation whose forward axis points along
// forward, with its up axis as close to up as possible.
// A null forward yields the identity.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	f := Normalized(forward)
	if IsZero(f) {
		return mgl64.QuatIdent()
	}
	r := up.Cross(f)
	if r.Len() <= 1e-6 { // forward is parallel to up
		tracer().Debugf("look rotation along up axis %s", VString(f))
		return mgl64.QuatBetweenVectors(Forward, f)
	}
	r = r.Normalize()
	u := f.Cross(r)
	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// RotateTowards interpolates spherically from q1 toward q2 by factor t,
// clamped to [0,1].
func RotateTowards(q1, q2 mgl64.Quat, t float64) mgl64.Quat {
	return mgl64.QuatSlerp(q1, q2, Clamp01(t))
}

// ForwardOf returns the forward axis of an orientation.
func ForwardOf(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(Forward)
}
