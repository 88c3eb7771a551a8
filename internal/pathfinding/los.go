package pathfinding

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/world"
)

// lineOfSight implements the fast path of spec.md 4.4.2: when start and goal
// fall in the same chunk, an integer Bresenham walk over that chunk's
// PathGrid checking every visited cell avoids the cost of assembling a
// window for the common "click nearby" case.
func (p *WindowPlanner) lineOfSight(hf *world.HeightField, start, goal mgl32.Vec3) (*Path, bool) {
	gx0, gz0, ok := hf.GridCell(start.X(), start.Z())
	if !ok {
		return nil, false
	}
	gx1, gz1, ok := hf.GridCell(goal.X(), goal.Z())
	if !ok {
		return nil, false
	}

	grid := hf.PathGrid()
	if !bresenhamClear(grid, gx0, gz0, gx1, gz1) {
		return nil, false
	}

	return &Path{Waypoints: []mgl32.Vec3{start, goal}}, true
}

// bresenhamClear walks the integer line from (x0,z0) to (x1,z1) and reports
// whether every cell it touches, inclusive of both ends, is walkable.
func bresenhamClear(grid *world.PathGrid, x0, z0, x1, z1 int) bool {
	dx := abs(x1 - x0)
	dz := -abs(z1 - z0)
	sx, sz := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if z0 > z1 {
		sz = -1
	}
	err := dx + dz

	x, z := x0, z0
	for {
		if !grid.Walkable(x, z) {
			return false
		}
		if x == x1 && z == z1 {
			return true
		}
		e2 := 2 * err
		if e2 >= dz {
			err += dz
			x += sx
		}
		if e2 <= dx {
			err += dx
			z += sz
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
