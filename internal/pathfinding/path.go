package pathfinding

import "github.com/go-gl/mathgl/mgl32"

// Path is a sequence of world-space waypoints. It is owned by whoever
// requested it; a new request supersedes the previous one and the caller is
// responsible for discarding the old Path before writing the new one
// (spec.md 5: cancellation).
type Path struct {
	Waypoints []mgl32.Vec3
}

// Length returns the path's total world-space length.
func (p *Path) Length() float32 {
	if p == nil || len(p.Waypoints) < 2 {
		return 0
	}
	var total float32
	for i := 1; i < len(p.Waypoints); i++ {
		total += p.Waypoints[i].Sub(p.Waypoints[i-1]).Len()
	}
	return total
}
