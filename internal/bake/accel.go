package bake

// accelGrid buckets triangles into a uniform XZ grid so the per-pixel
// raycast only tests nearby geometry — the "optional uniform XZ grid
// acceleration" spec.md 4.8 allows but does not require.
type accelGrid struct {
	cellsPerAxis int
	minX, minZ   float32
	cellSize     float32
	buckets      [][]Triangle
}

// newAccelGrid returns nil if cellsPerAxis <= 0, so callers fall back to the
// naive O(N^2*T) scan the baker is explicitly allowed to use.
func newAccelGrid(triangles []Triangle, cellsPerAxis int) *accelGrid {
	if cellsPerAxis <= 0 || len(triangles) == 0 {
		return nil
	}
	minX, maxX := triangles[0].MinX, triangles[0].MaxX
	minZ, maxZ := triangles[0].MinZ, triangles[0].MaxZ
	for _, tri := range triangles {
		if tri.MinX < minX {
			minX = tri.MinX
		}
		if tri.MaxX > maxX {
			maxX = tri.MaxX
		}
		if tri.MinZ < minZ {
			minZ = tri.MinZ
		}
		if tri.MaxZ > maxZ {
			maxZ = tri.MaxZ
		}
	}
	span := maxX - minX
	if zSpan := maxZ - minZ; zSpan > span {
		span = zSpan
	}
	if span <= 0 {
		span = 1
	}
	cellSize := span / float32(cellsPerAxis)

	g := &accelGrid{
		cellsPerAxis: cellsPerAxis,
		minX:         minX,
		minZ:         minZ,
		cellSize:     cellSize,
		buckets:      make([][]Triangle, cellsPerAxis*cellsPerAxis),
	}
	for _, tri := range triangles {
		x0, z0 := g.cellIndex(tri.MinX, tri.MinZ)
		x1, z1 := g.cellIndex(tri.MaxX, tri.MaxZ)
		for cz := z0; cz <= z1; cz++ {
			for cx := x0; cx <= x1; cx++ {
				idx := cz*cellsPerAxis + cx
				g.buckets[idx] = append(g.buckets[idx], tri)
			}
		}
	}
	return g
}

func (g *accelGrid) cellIndex(x, z float32) (cx, cz int) {
	cx = int((x - g.minX) / g.cellSize)
	cz = int((z - g.minZ) / g.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= g.cellsPerAxis {
		cx = g.cellsPerAxis - 1
	}
	if cz < 0 {
		cz = 0
	}
	if cz >= g.cellsPerAxis {
		cz = g.cellsPerAxis - 1
	}
	return cx, cz
}

func (g *accelGrid) candidatesAt(x, z float32) []Triangle {
	cx, cz := g.cellIndex(x, z)
	return g.buckets[cz*g.cellsPerAxis+cx]
}
