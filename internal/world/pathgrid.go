package world

// PathGrid is a chunk's downsampled walkability grid, built once from the
// chunk's full-resolution walkmask by threshold voting (spec.md 4.3). It is
// mutated only during chunk build and is read-only afterwards.
type PathGrid struct {
	k     int
	cells []byte // 0 = blocked, 1 = walkable, row-major k*k
}

// K returns the grid's per-edge resolution.
func (g *PathGrid) K() int { return g.k }

// Walkable reports whether cell (gx, gz) is walkable. Out-of-range cells are
// treated as blocked.
func (g *PathGrid) Walkable(gx, gz int) bool {
	if g == nil || gx < 0 || gz < 0 || gx >= g.k || gz >= g.k {
		return false
	}
	return g.cells[gz*g.k+gx] == 1
}

// buildPathGrid samples the walkmask in (W/K)x(H/K) blocks and marks a cell
// walkable iff at least voteFrac of the sampled texels exceed the walkable
// threshold. voteFrac defaults to 0.90 (spec.md 4.3): a high threshold buys
// a safety border so downsampling never erases a narrow obstacle.
func buildPathGrid(h *HeightField, k int, voteFrac float64) *PathGrid {
	if k <= 0 {
		k = 64
	}
	if voteFrac <= 0 {
		voteFrac = 0.90
	}

	cells := make([]byte, k*k)
	blockW := h.width / k
	blockH := h.height / k
	if blockW <= 0 {
		blockW = 1
	}
	if blockH <= 0 {
		blockH = 1
	}

	for v := 0; v < k; v++ {
		for u := 0; u < k; u++ {
			startX := u * blockW
			startZ := v * blockH
			endX := startX + blockW
			endZ := startZ + blockH
			if u == k-1 {
				endX = h.width
			}
			if v == k-1 {
				endZ = h.height
			}
			if endX > h.width {
				endX = h.width
			}
			if endZ > h.height {
				endZ = h.height
			}

			samples := 0
			walkable := 0
			for z := startZ; z < endZ; z++ {
				for x := startX; x < endX; x++ {
					samples++
					if h.walkmask[z*h.width+x] > walkableThreshold {
						walkable++
					}
				}
			}

			if samples > 0 && float64(walkable)/float64(samples) >= voteFrac {
				cells[v*k+u] = 1
			}
		}
	}

	return &PathGrid{k: k, cells: cells}
}
