// Package bake implements the offline heightmap baker: an OBJ triangle-soup
// loader and an orthographic downward raycaster that produces the 16-bit
// heightmap PNGs the runtime world loader consumes (spec.md 4.8).
package bake

import "github.com/go-gl/mathgl/mgl32"

// Triangle is one face of the baked mesh, plus its precomputed XZ AABB used
// to cull the per-pixel raycast (spec.md 4.8: "Precompute each triangle's
// XZ AABB").
type Triangle struct {
	A, B, C mgl32.Vec3

	MinX, MaxX float32
	MinZ, MaxZ float32
}

// Mesh is a flat triangle soup plus its XZ/Y bounds.
type Mesh struct {
	Triangles []Triangle
	MinY, MaxY float32
}

func newTriangle(a, b, c mgl32.Vec3) Triangle {
	t := Triangle{A: a, B: b, C: c}
	t.MinX, t.MaxX = minmax3(a.X(), b.X(), c.X())
	t.MinZ, t.MaxZ = minmax3(a.Z(), b.Z(), c.Z())
	return t
}

func minmax3(a, b, c float32) (min, max float32) {
	min, max = a, a
	for _, v := range [2]float32{b, c} {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// buildMesh computes per-triangle and mesh-wide bounds once, up front, so
// the per-pixel raycast never recomputes them (spec.md 4.8).
func buildMesh(triangles []Triangle) *Mesh {
	m := &Mesh{Triangles: triangles}
	if len(triangles) == 0 {
		return m
	}
	m.MinY, m.MaxY = triangles[0].A.Y(), triangles[0].A.Y()
	for _, tri := range triangles {
		for _, v := range [3]mgl32.Vec3{tri.A, tri.B, tri.C} {
			if v.Y() < m.MinY {
				m.MinY = v.Y()
			}
			if v.Y() > m.MaxY {
				m.MaxY = v.Y()
			}
		}
	}
	return m
}
