package pathfinding

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSmoothRemovesRedundantColinearWaypoints(t *testing.T) {
	cw := buildTestWorld(t, 1, 1, nil)
	path := &Path{Waypoints: []mgl32.Vec3{
		{-20, 0, 0}, {-10, 0, 0}, {0, 0, 0}, {10, 0, 0}, {20, 0, 0},
	}}

	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if len(smoothed.Waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2 (fully visible straight line)", len(smoothed.Waypoints))
	}
	if smoothed.Waypoints[0] != path.Waypoints[0] || smoothed.Waypoints[1] != path.Waypoints[len(path.Waypoints)-1] {
		t.Fatalf("smoothed endpoints changed: %+v", smoothed.Waypoints)
	}
}

func TestSmoothKeepsWaypointsAroundObstacle(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx > -4 && wx < 4 && wz < 20 }
	cw := buildTestWorld(t, 1, 1, wall)

	// A detour that actually goes around the wall (through the +Z texels,
	// which this predicate never blocks) must survive smoothing, since a
	// straight line from start to goal would cross the wall.
	path := &Path{Waypoints: []mgl32.Vec3{
		{-20, 0, 0}, {0, 0, 25}, {20, 0, 0},
	}}

	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if len(smoothed.Waypoints) < 3 {
		t.Fatalf("expected the detour waypoint to survive smoothing, got %+v", smoothed.Waypoints)
	}
}

func TestSmoothNeverLengthensThePath(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx > -4 && wx < 4 && wz < 20 }
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 10000, 10000)

	path, err := planner.FindPath(nil, cw, mgl32.Vec3{-20, 0, -20}, mgl32.Vec3{20, 0, -20}, nil)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if smoothed.Length() > path.Length()+1e-3 {
		t.Fatalf("smoothed length %v exceeds original %v", smoothed.Length(), path.Length())
	}
}

func TestSmoothShortPathIsUnchanged(t *testing.T) {
	cw := buildTestWorld(t, 1, 1, nil)
	path := &Path{Waypoints: []mgl32.Vec3{{0, 0, 0}, {1, 0, 1}}}
	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if len(smoothed.Waypoints) != 2 {
		t.Fatalf("expected a 2-waypoint path to pass through unchanged")
	}
}
