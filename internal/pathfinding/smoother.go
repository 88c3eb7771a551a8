package pathfinding

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/world"
)

// trivialSegmentLength is the distance below which a segment is always
// visible without raymarching (spec.md 4.5).
const trivialSegmentLength = 0.1

// PathSmoother string-pulls a waypoint polyline: from each committed point it
// greedily finds the farthest later waypoint with a clear line of sight and
// skips straight to it, converting the stair-step 8-connected A* output into
// natural diagonals. Unlike the planner's fast path (which trusts the
// conservative PathGrid), the smoother raymarches the full-resolution
// walkmask, since that was the point of keeping the two grids separate
// (spec.md 4.5).
type PathSmoother struct {
	stepMeter float32
}

// NewPathSmoother builds a smoother with the given raymarch step.
func NewPathSmoother(stepMeter float32) *PathSmoother {
	if stepMeter <= 0 {
		stepMeter = 0.2
	}
	return &PathSmoother{stepMeter: stepMeter}
}

// Smooth returns a new Path with interior waypoints removed wherever a
// straight line through the world is walkable end to end.
func (s *PathSmoother) Smooth(w *world.ChunkedWorld, path *Path) *Path {
	if path == nil || len(path.Waypoints) < 3 {
		return path
	}
	wp := path.Waypoints
	result := []mgl32.Vec3{wp[0]}

	i := 0
	for i < len(wp)-1 {
		j := len(wp) - 1
		for ; j > i+1; j-- {
			if s.segmentVisible(w, wp[i], wp[j]) {
				break
			}
		}
		result = append(result, wp[j])
		i = j
	}

	return &Path{Waypoints: result}
}

// segmentVisible raymarches from a to b in XZ at the configured step,
// querying is_walkable on the full-resolution walkmask at every sample.
func (s *PathSmoother) segmentVisible(w *world.ChunkedWorld, a, b mgl32.Vec3) bool {
	delta := mgl32.Vec2{b.X() - a.X(), b.Z() - a.Z()}
	length := delta.Len()
	if length < trivialSegmentLength {
		return true
	}

	steps := int(length/s.stepMeter) + 1
	for k := 0; k <= steps; k++ {
		t := float32(k) / float32(steps)
		x := a.X() + delta.X()*t
		z := a.Z() + delta.Y()*t
		if !w.IsWalkable(x, z) {
			return false
		}
	}
	return true
}
