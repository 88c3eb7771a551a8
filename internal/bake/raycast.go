package bake

import "github.com/go-gl/mathgl/mgl32"

// intersectDownwardRay runs Möller-Trumbore for a straight-down ray
// (origin, direction (0,-1,0)) against one triangle, returning the
// intersection parameter t and whether it is a valid hit with t > epsilon
// (spec.md 4.8).
func intersectDownwardRay(tri Triangle, origin mgl32.Vec3, epsilon float32) (t float32, hit bool) {
	const rayDirY = float32(-1)

	edge1 := tri.B.Sub(tri.A)
	edge2 := tri.C.Sub(tri.A)

	// h = dir x edge2; since dir = (0,-1,0), this simplifies but we keep the
	// general cross product so the routine reads like every other
	// Möller-Trumbore implementation in the corpus.
	dir := mgl32.Vec3{0, rayDirY, 0}
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -1e-8 && a < 1e-8 {
		return 0, false // ray parallel to the triangle's plane
	}
	f := 1 / a
	s := origin.Sub(tri.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = f * edge2.Dot(q)
	if t <= epsilon {
		return 0, false
	}
	return t, true
}
