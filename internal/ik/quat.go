package ik

import "github.com/go-gl/mathgl/mgl32"

// quatFromVectors returns the shortest-arc rotation taking unit vector a
// onto unit vector b (spec.md 4.7.2's "quatFromMat"/"quatFromVectors"
// conversion layer — mathgl has no built-in for this one).
func quatFromVectors(a, b mgl32.Vec3) mgl32.Quat {
	d := a.Dot(b)
	if d > 0.999999 {
		return mgl32.QuatIdent()
	}
	if d < -0.999999 {
		// a and b point directly apart: any axis perpendicular to a works.
		axis := mgl32.Vec3{1, 0, 0}.Cross(a)
		if axis.Len() < 1e-6 {
			axis = mgl32.Vec3{0, 1, 0}.Cross(a)
		}
		axis = axis.Normalize()
		return mgl32.QuatRotate(mgl32.DegToRad(180), axis)
	}
	axis := a.Cross(b)
	w := float32(1) + d
	q := mgl32.Quat{W: w, V: axis}
	return q.Normalize()
}

// quatFromMat extracts the rotation component of a composed transform,
// defensively normalized (spec.md 4.7.4: "non-unit input quaternions:
// renormalize defensively").
func quatFromMat(m mgl32.Mat4) mgl32.Quat {
	return mgl32.Mat4ToQuat(m).Normalize()
}
