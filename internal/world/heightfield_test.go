package world

import (
	"math"
	"testing"
)

func flatHeightField(t *testing.T, size int, worldSize float32, height float32, walkable bool) *HeightField {
	t.Helper()
	heights := make([]float32, size*size)
	mask := make([]byte, size*size)
	fill := byte(0)
	if walkable {
		fill = 255
	}
	for i := range heights {
		heights[i] = height
		mask[i] = fill
	}
	hf, err := NewHeightField(size, size, heights, mask, worldSize, 0, 0, 8, 0.9)
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}
	return hf
}

func TestHeightAtOutOfRangeReturnsSentinel(t *testing.T) {
	hf := flatHeightField(t, 4, 16, 10, true)
	if got := hf.HeightAt(-1, 0); got != DeepHeight {
		t.Fatalf("HeightAt(out of range) = %v, want %v", got, DeepHeight)
	}
	if got := hf.HeightAt(100, 100); got != DeepHeight {
		t.Fatalf("HeightAt(out of range) = %v, want %v", got, DeepHeight)
	}
}

func TestHeightAtFlatFieldIsConstant(t *testing.T) {
	hf := flatHeightField(t, 4, 16, 7.5, true)
	for _, p := range [][2]float32{{0, 0}, {1, 1}, {8, 8}, {15.9, 0.1}} {
		if got := hf.HeightAt(p[0], p[1]); math.Abs(float64(got-7.5)) > 1e-4 {
			t.Fatalf("HeightAt(%v,%v) = %v, want ~7.5", p[0], p[1], got)
		}
	}
}

func TestHeightAtIsContinuous(t *testing.T) {
	size := 8
	worldSize := float32(32)
	heights := make([]float32, size*size)
	mask := make([]byte, size*size)
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			heights[z*size+x] = float32(x+z) * 0.5
			mask[z*size+x] = 255
		}
	}
	hf, err := NewHeightField(size, size, heights, mask, worldSize, 0, 0, 4, 0.9)
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}

	cellSize := worldSize / float32(size-1)
	maxNeighborDelta := float32(0.5 * 2) // max |dh| per grid step on either axis

	points := [][2]float32{{4, 4}, {8.3, 12.7}, {20, 5}}
	for _, p := range points {
		base := hf.HeightAt(p[0], p[1])
		perturbed := hf.HeightAt(p[0]+0.01, p[1])
		delta := float32(math.Abs(float64(perturbed - base)))
		bound := maxNeighborDelta * 0.01 / cellSize
		if delta > bound+1e-3 {
			t.Fatalf("height not continuous at %v: delta=%v bound=%v", p, delta, bound)
		}
	}
}

func TestIsWalkableMatchesWalkmaskSample(t *testing.T) {
	size := 4
	heights := make([]float32, size*size)
	mask := make([]byte, size*size)
	mask[0] = 200 // walkable
	mask[1] = 50  // blocked
	hf, err := NewHeightField(size, size, heights, mask, 12, 0, 0, 2, 0.9)
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}

	if !hf.IsWalkable(0, 0) {
		t.Fatalf("expected (0,0) walkable")
	}
	cellSize := float32(12) / float32(size-1)
	if hf.IsWalkable(cellSize, 0) {
		t.Fatalf("expected (%v,0) blocked", cellSize)
	}
}

func TestIsWalkableOutOfRangeIsFalse(t *testing.T) {
	hf := flatHeightField(t, 4, 16, 0, true)
	if hf.IsWalkable(-5, -5) {
		t.Fatalf("expected out-of-range query to be unwalkable")
	}
}

func TestNormalAtFlatFieldIsUp(t *testing.T) {
	hf := flatHeightField(t, 4, 16, 5, true)
	n := hf.NormalAt(8, 8)
	if math.Abs(float64(n.Y()-1)) > 1e-4 {
		t.Fatalf("NormalAt(flat) = %v, want +Y", n)
	}
}

func TestBoundsReflectsHeightRange(t *testing.T) {
	size := 4
	heights := []float32{0, 0, 0, 0, 0, 10, 0, 0, 0, 0, -3, 0, 0, 0, 0, 0}
	mask := make([]byte, size*size)
	for i := range mask {
		mask[i] = 255
	}
	hf, err := NewHeightField(size, size, heights, mask, 20, 5, 5, 2, 0.9)
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}
	min, max := hf.Bounds()
	if min.Y() != -3 || max.Y() != 10 {
		t.Fatalf("Bounds() y range = [%v,%v], want [-3,10]", min.Y(), max.Y())
	}
	if min.X() != 5 || min.Z() != 5 || max.X() != 25 || max.Z() != 25 {
		t.Fatalf("Bounds() xz = [%v,%v], want offset+worldSize square", min, max)
	}
}

func TestEnableSlopeGatingRejectsSteepSlope(t *testing.T) {
	size := 4
	heights := make([]float32, size*size)
	mask := make([]byte, size*size)
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			heights[z*size+x] = float32(x) * 50 // steep ramp
			mask[z*size+x] = 255
		}
	}
	hf, err := NewHeightField(size, size, heights, mask, 12, 0, 0, 2, 0.9)
	if err != nil {
		t.Fatalf("NewHeightField() error = %v", err)
	}
	hf.EnableSlopeGating(10)
	if hf.IsWalkable(6, 6) {
		t.Fatalf("expected steep slope to be rejected once slope gating is enabled")
	}
}

func TestNewHeightFieldRejectsMismatchedGrids(t *testing.T) {
	if _, err := NewHeightField(4, 4, make([]float32, 15), make([]byte, 16), 16, 0, 0, 2, 0.9); err == nil {
		t.Fatalf("expected error for mismatched heights length")
	}
	if _, err := NewHeightField(4, 4, make([]float32, 16), make([]byte, 15), 16, 0, 0, 2, 0.9); err == nil {
		t.Fatalf("expected error for mismatched walkmask length")
	}
	if _, err := NewHeightField(4, 4, make([]float32, 16), make([]byte, 16), 0, 0, 0, 2, 0.9); err == nil {
		t.Fatalf("expected error for non-positive worldSize")
	}
}
