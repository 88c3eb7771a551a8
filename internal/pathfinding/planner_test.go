package pathfinding

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/world"
)

const (
	testChunkSize = float32(64)
	testTexels    = 32
	testGridK     = 8
)

// buildTestWorld assembles a chunksX x chunksZ world of uniform chunks
// centered on the world origin, marking a texel blocked whenever the
// supplied predicate (evaluated on the texel's world-space center) returns
// true.
func buildTestWorld(t *testing.T, chunksX, chunksZ int, blocked func(worldX, worldZ float32) bool) *world.ChunkedWorld {
	t.Helper()
	originX := -float32(chunksX) * testChunkSize / 2
	originZ := -float32(chunksZ) * testChunkSize / 2
	cw, err := world.NewChunkedWorld(chunksX, chunksZ, testChunkSize, originX, originZ)
	if err != nil {
		t.Fatalf("NewChunkedWorld() error = %v", err)
	}
	texel := testChunkSize / float32(testTexels)
	for cz := 0; cz < chunksZ; cz++ {
		for cx := 0; cx < chunksX; cx++ {
			offX := originX + float32(cx)*testChunkSize
			offZ := originZ + float32(cz)*testChunkSize
			heights := make([]float32, testTexels*testTexels)
			mask := make([]byte, testTexels*testTexels)
			for tz := 0; tz < testTexels; tz++ {
				for tx := 0; tx < testTexels; tx++ {
					wx := offX + (float32(tx)+0.5)*texel
					wz := offZ + (float32(tz)+0.5)*texel
					v := byte(255)
					if blocked != nil && blocked(wx, wz) {
						v = 0
					}
					mask[tz*testTexels+tx] = v
				}
			}
			hf, err := world.NewHeightField(testTexels, testTexels, heights, mask, testChunkSize, offX, offZ, testGridK, 0.9)
			if err != nil {
				t.Fatalf("NewHeightField() error = %v", err)
			}
			if err := cw.SetChunk(cx, cz, hf); err != nil {
				t.Fatalf("SetChunk() error = %v", err)
			}
		}
	}
	return cw
}

func TestFindPathClearLineTakesFastPath(t *testing.T) {
	cw := buildTestWorld(t, 1, 1, nil)
	planner := NewWindowPlanner(3, testGridK, 1000, 1000)
	metrics := &PlannerMetrics{}

	path, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-20, 0, -20}, mgl32.Vec3{20, 0, 20}, metrics)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(path.Waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2 (fast path)", len(path.Waypoints))
	}
	if metrics.Snapshot().FastPathHits != 1 {
		t.Fatalf("expected one fast-path hit")
	}
}

func TestFindPathRoutesAroundWall(t *testing.T) {
	wall := func(wx, wz float32) bool {
		return wx > -4 && wx < 4 && wz < 20
	}
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 10000, 10000)
	metrics := &PlannerMetrics{}

	start := mgl32.Vec3{-20, 0, -20}
	goal := mgl32.Vec3{20, 0, -20}
	path, err := planner.FindPath(context.Background(), cw, start, goal, metrics)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(path.Waypoints) < 3 {
		t.Fatalf("expected a multi-waypoint detour around the wall, got %d waypoints", len(path.Waypoints))
	}

	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if smoothed.Length() > path.Length()+1e-3 {
		t.Fatalf("smoother lengthened the path: %v > %v", smoothed.Length(), path.Length())
	}
	for i := 0; i < len(smoothed.Waypoints)-1; i++ {
		a, b := smoothed.Waypoints[i], smoothed.Waypoints[i+1]
		if !segmentWalkableEveryStep(t, cw, a, b) {
			t.Fatalf("smoothed segment %v -> %v is not walkable throughout", a, b)
		}
	}
}

func segmentWalkableEveryStep(t *testing.T, w *world.ChunkedWorld, a, b mgl32.Vec3) bool {
	t.Helper()
	delta := mgl32.Vec2{b.X() - a.X(), b.Z() - a.Z()}
	length := delta.Len()
	steps := int(length/0.2) + 1
	for k := 0; k <= steps; k++ {
		tt := float32(k) / float32(steps)
		x := a.X() + delta.X()*tt
		z := a.Z() + delta.Y()*tt
		if !w.IsWalkable(x, z) {
			return false
		}
	}
	return true
}

func TestFindPathAcrossMultipleChunks(t *testing.T) {
	cw := buildTestWorld(t, 2, 1, nil)
	planner := NewWindowPlanner(3, testGridK, 10000, 10000)
	metrics := &PlannerMetrics{}

	path, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-60, 0, 0}, mgl32.Vec3{60, 0, 0}, metrics)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(path.Waypoints) < 2 {
		t.Fatalf("expected at least a start/goal pair across the seam")
	}

	smoother := NewPathSmoother(0.2)
	smoothed := smoother.Smooth(cw, path)
	if len(smoothed.Waypoints) != 2 {
		t.Fatalf("expected the open seam to smooth to a straight 2-point path, got %d", len(smoothed.Waypoints))
	}
}

func TestFindPathReportsBlockedStart(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx < -15 }
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 1000, 1000)

	_, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-20, 0, 0}, mgl32.Vec3{20, 0, 0}, nil)
	blocked, ok := err.(*PlanBlocked)
	if !ok {
		t.Fatalf("FindPath() error = %v, want *PlanBlocked", err)
	}
	if blocked.End != "start" {
		t.Fatalf("PlanBlocked.End = %q, want %q", blocked.End, "start")
	}
}

func TestFindPathReportsBlockedGoal(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx > 15 }
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 1000, 1000)

	_, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-20, 0, 0}, mgl32.Vec3{20, 0, 0}, nil)
	blocked, ok := err.(*PlanBlocked)
	if !ok {
		t.Fatalf("FindPath() error = %v, want *PlanBlocked", err)
	}
	if blocked.End != "goal" {
		t.Fatalf("PlanBlocked.End = %q, want %q", blocked.End, "goal")
	}
}

func TestFindPathStartEqualsGoalReturnsTrivialPath(t *testing.T) {
	cw := buildTestWorld(t, 1, 1, nil)
	planner := NewWindowPlanner(3, testGridK, 1000, 1000)

	pos := mgl32.Vec3{5, 0, 5}
	path, err := planner.FindPath(context.Background(), cw, pos, pos, nil)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	for _, wp := range path.Waypoints {
		if wp != pos {
			t.Fatalf("expected every waypoint to equal the shared start/goal, got %v", wp)
		}
	}
}

func TestFindPathIsDeterministicAcrossRepeatedQueries(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx > -4 && wx < 4 && wz < 20 }
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 10000, 10000)

	start := mgl32.Vec3{-20, 0, -20}
	goal := mgl32.Vec3{20, 0, -20}

	first, err := planner.FindPath(context.Background(), cw, start, goal, nil)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	second, err := planner.FindPath(context.Background(), cw, start, goal, nil)
	if err != nil {
		t.Fatalf("FindPath() error = %v", err)
	}
	if len(first.Waypoints) != len(second.Waypoints) {
		t.Fatalf("repeated query returned different waypoint counts: %d vs %d", len(first.Waypoints), len(second.Waypoints))
	}
	for i := range first.Waypoints {
		if first.Waypoints[i] != second.Waypoints[i] {
			t.Fatalf("repeated query diverged at waypoint %d: %v vs %v", i, first.Waypoints[i], second.Waypoints[i])
		}
	}
}

func TestFindPathFailsOnEndpointsTooFarApart(t *testing.T) {
	cw := buildTestWorld(t, 8, 1, nil)
	planner := NewWindowPlanner(3, testGridK, 10000, 10000)

	_, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-250, 0, 0}, mgl32.Vec3{250, 0, 0}, nil)
	if err != ErrPlanNoRoute {
		t.Fatalf("FindPath() error = %v, want ErrPlanNoRoute", err)
	}
}

func TestFindPathReportsCapacityExceeded(t *testing.T) {
	wall := func(wx, wz float32) bool { return wx > -4 && wx < 4 && wz < 20 }
	cw := buildTestWorld(t, 1, 1, wall)
	planner := NewWindowPlanner(3, testGridK, 2, 2)

	_, err := planner.FindPath(context.Background(), cw, mgl32.Vec3{-20, 0, -20}, mgl32.Vec3{20, 0, -20}, nil)
	if err != ErrPlanCapacityExceeded {
		t.Fatalf("FindPath() error = %v, want ErrPlanCapacityExceeded", err)
	}
}
