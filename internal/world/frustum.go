package world

import "github.com/go-gl/mathgl/mgl32"

// plane is a frustum plane in the form normal.P + d >= 0 for points inside
// the frustum.
type plane struct {
	normal mgl32.Vec3
	d      float32
}

func planeFromVec4(v mgl32.Vec4) plane {
	n := mgl32.Vec3{v[0], v[1], v[2]}
	length := n.Len()
	if length == 0 {
		return plane{}
	}
	return plane{normal: n.Mul(1 / length), d: v[3] / length}
}

// extractFrustumPlanes derives the six clip planes from a column-combined
// view-projection matrix using the row-sum/row-difference form (spec.md
// 4.2, 9 "Row-major vs. column-major"): L = r3+r0, R = r3-r0, B = r3+r1,
// T = r3-r1, N = r3+r2, F = r3-r2, each normalized. go-gl/mathgl stores
// matrices column-major as OpenGL expects, so Row(i) here already returns
// the row this derivation assumes; an implementation storing row-major
// would need to transpose first.
func extractFrustumPlanes(viewProj mgl32.Mat4) [6]plane {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	return [6]plane{
		planeFromVec4(r3.Add(r0)), // left
		planeFromVec4(r3.Sub(r0)), // right
		planeFromVec4(r3.Add(r1)), // bottom
		planeFromVec4(r3.Sub(r1)), // top
		planeFromVec4(r3.Add(r2)), // near
		planeFromVec4(r3.Sub(r2)), // far
	}
}

// positiveVertex picks the AABB corner farthest along the plane normal —
// the standard "positive vertex" trick for a cheap plane/AABB test.
func positiveVertex(min, max mgl32.Vec3, n mgl32.Vec3) mgl32.Vec3 {
	p := min
	if n.X() >= 0 {
		p[0] = max.X()
	}
	if n.Y() >= 0 {
		p[1] = max.Y()
	}
	if n.Z() >= 0 {
		p[2] = max.Z()
	}
	return p
}

func (p plane) rejectsAABB(min, max mgl32.Vec3) bool {
	pv := positiveVertex(min, max, p.normal)
	return p.normal.Dot(pv)+p.d < 0
}

// DrawVisible extracts the six frustum planes from viewProj and calls emit
// for every loaded chunk whose AABB is not rejected by any plane. Culling is
// the core's responsibility; drawing is the renderer's (spec.md 4.2).
func (w *ChunkedWorld) DrawVisible(viewProj mgl32.Mat4, emit func(coord ChunkCoord, hf *HeightField)) {
	if emit == nil {
		return
	}
	planes := extractFrustumPlanes(viewProj)

	for cz := 0; cz < w.chunksZ; cz++ {
		for cx := 0; cx < w.chunksX; cx++ {
			hf := w.chunks[cz*w.chunksX+cx]
			if hf == nil {
				continue
			}
			min, max := hf.Bounds()
			visible := true
			for _, pl := range planes {
				if pl.rejectsAABB(min, max) {
					visible = false
					break
				}
			}
			if visible {
				emit(ChunkCoord{X: cx, Z: cz}, hf)
			}
		}
	}
}
