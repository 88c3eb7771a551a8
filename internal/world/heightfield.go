package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// walkableThreshold is the walkmask texel value above which a cell counts as
// walkable (spec.md 6.3).
const walkableThreshold = 127

// normalSampleEpsilon is the central-difference step used by NormalAt,
// expressed in meters (spec.md 4.1).
const normalSampleEpsilon = 0.5

// HeightField is one chunk's dense height + walkability data. Its grids are
// not modified after NewHeightField returns; EnableSlopeGating is the only
// later mutation.
type HeightField struct {
	width, height int
	heights       []float32 // row-major, width*height, meters
	walkmask      []byte    // row-major, width*height; >127 means walkable

	worldSize float32
	offsetX   float32
	offsetZ   float32

	minY, maxY float32

	pathgrid *PathGrid

	slopeGating     bool
	maxSlopeRadians float64
}

// NewHeightField validates and wraps a dense heights/walkmask pair into an
// immutable HeightField, deriving minY/maxY for frustum AABBs and building
// the chunk's PathGrid by threshold voting over the walkmask.
func NewHeightField(width, height int, heights []float32, walkmask []byte, worldSize, offsetX, offsetZ float32, gridSize int, voteFrac float64) (*HeightField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: heightfield dimensions must be positive", ErrIoMalformed)
	}
	if len(heights) != width*height {
		return nil, fmt.Errorf("%w: heights length %d does not match %dx%d", ErrIoMalformed, len(heights), width, height)
	}
	if len(walkmask) != width*height {
		return nil, fmt.Errorf("%w: walkmask length %d does not match %dx%d", ErrIoMalformed, len(walkmask), width, height)
	}
	if worldSize <= 0 {
		return nil, fmt.Errorf("%w: worldSize must be positive", ErrIoMalformed)
	}

	minY, maxY := heights[0], heights[0]
	for _, h := range heights[1:] {
		if h < minY {
			minY = h
		}
		if h > maxY {
			maxY = h
		}
	}

	hf := &HeightField{
		width:     width,
		height:    height,
		heights:   heights,
		walkmask:  walkmask,
		worldSize: worldSize,
		offsetX:   offsetX,
		offsetZ:   offsetZ,
		minY:      minY,
		maxY:      maxY,
	}
	hf.pathgrid = buildPathGrid(hf, gridSize, voteFrac)
	return hf, nil
}

// EnableSlopeGating turns on the (disabled-by-default, spec.md 4.1) slope
// check in IsWalkable. maxSlopeDegrees is the maximum walkable slope.
func (h *HeightField) EnableSlopeGating(maxSlopeDegrees float64) {
	h.slopeGating = true
	h.maxSlopeRadians = maxSlopeDegrees * math.Pi / 180
}

func (h *HeightField) worldToGrid(x, z float32) (fx, fz float32, inRange bool) {
	if x < h.offsetX || x >= h.offsetX+h.worldSize || z < h.offsetZ || z >= h.offsetZ+h.worldSize {
		return 0, 0, false
	}
	fx = (x - h.offsetX) / h.worldSize * float32(h.width-1)
	fz = (z - h.offsetZ) / h.worldSize * float32(h.height-1)
	return fx, fz, true
}

// HeightAt bilinearly samples the height grid at world-space (x, z). Queries
// outside the chunk's footprint return DeepHeight rather than panicking
// (spec.md 4.1, 7: OutOfRange surfaces as a sentinel, never a crash).
func (h *HeightField) HeightAt(x, z float32) float32 {
	fx, fz, ok := h.worldToGrid(x, z)
	if !ok {
		return DeepHeight
	}
	return h.bilinear(h.heights, fx, fz)
}

func (h *HeightField) bilinear(grid []float32, fx, fz float32) float32 {
	x0 := int(math.Floor(float64(fx)))
	z0 := int(math.Floor(float64(fz)))
	x1 := clampIndex(x0+1, h.width-1)
	z1 := clampIndex(z0+1, h.height-1)
	x0 = clampIndex(x0, h.width-1)
	z0 = clampIndex(z0, h.height-1)

	tx := fx - float32(x0)
	tz := fz - float32(z0)

	v00 := grid[z0*h.width+x0]
	v10 := grid[z0*h.width+x1]
	v01 := grid[z1*h.width+x0]
	v11 := grid[z1*h.width+x1]

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*tz
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// NormalAt returns the unit surface normal at world-space (x, z) via central
// differences over a +/-epsilon step (spec.md 4.1).
func (h *HeightField) NormalAt(x, z float32) mgl32.Vec3 {
	eps := float32(normalSampleEpsilon)
	hl := h.HeightAt(x-eps, z)
	hr := h.HeightAt(x+eps, z)
	hd := h.HeightAt(x, z-eps)
	hu := h.HeightAt(x, z+eps)
	n := mgl32.Vec3{hl - hr, 2 * eps, hd - hu}
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// IsWalkable reports whether (x, z) is walkable: in range, and the nearest
// walkmask texel exceeds the walkable threshold. Slope gating is available
// but disabled unless EnableSlopeGating was called (spec.md 4.1).
func (h *HeightField) IsWalkable(x, z float32) bool {
	fx, fz, ok := h.worldToGrid(x, z)
	if !ok {
		return false
	}
	gx := clampIndex(int(math.Round(float64(fx))), h.width-1)
	gz := clampIndex(int(math.Round(float64(fz))), h.height-1)
	if h.walkmask[gz*h.width+gx] <= walkableThreshold {
		return false
	}
	if h.slopeGating {
		n := h.NormalAt(x, z)
		slope := math.Acos(float64(n.Y()))
		if slope > h.maxSlopeRadians {
			return false
		}
	}
	return true
}

// Bounds returns the chunk's world-space AABB for frustum culling
// (spec.md 4.1).
func (h *HeightField) Bounds() (min, max mgl32.Vec3) {
	min = mgl32.Vec3{h.offsetX, h.minY, h.offsetZ}
	max = mgl32.Vec3{h.offsetX + h.worldSize, h.maxY, h.offsetZ + h.worldSize}
	return min, max
}

// PathGrid returns the chunk's downsampled walkability grid, built once at
// load time (spec.md 4.3).
func (h *HeightField) PathGrid() *PathGrid { return h.pathgrid }

// WorldSize, OffsetX, OffsetZ expose the chunk footprint to ChunkedWorld.
func (h *HeightField) WorldSize() float32 { return h.worldSize }
func (h *HeightField) OffsetX() float32   { return h.offsetX }
func (h *HeightField) OffsetZ() float32   { return h.offsetZ }
func (h *HeightField) Width() int         { return h.width }
func (h *HeightField) Height() int        { return h.height }

// GridCell maps world-space (x, z) to this chunk's PathGrid cell coordinates,
// used by the planner to seed window assembly and by the line-of-sight
// fast path (spec.md 4.4.2).
func (h *HeightField) GridCell(x, z float32) (gx, gz int, ok bool) {
	fx, fz, ok := h.worldToGrid(x, z)
	if !ok {
		return 0, 0, false
	}
	k := h.pathgrid.K()
	gx = clampIndex(int(fx/float32(h.width)*float32(k)), k-1)
	gz = clampIndex(int(fz/float32(h.height)*float32(k)), k-1)
	return gx, gz, true
}

// CellCenter returns the world-space center of this chunk's PathGrid cell
// (gx, gz), used when reconstructing a planned path into world coordinates
// (spec.md 4.4.3: "cell-center offset 0.5").
func (h *HeightField) CellCenter(gx, gz int) (x, z float32) {
	k := h.pathgrid.K()
	cellSize := h.worldSize / float32(k)
	x = h.offsetX + (float32(gx)+0.5)*cellSize
	z = h.offsetZ + (float32(gz)+0.5)*cellSize
	return x, z
}

// walkmaskAt returns the raw walkmask texel nearest to world-space (x, z),
// used by the PathSmoother which must consult the full-resolution mask
// rather than the conservative PathGrid (spec.md 4.5).
func (h *HeightField) walkmaskAt(x, z float32) (byte, bool) {
	fx, fz, ok := h.worldToGrid(x, z)
	if !ok {
		return 0, false
	}
	gx := clampIndex(int(math.Round(float64(fx))), h.width-1)
	gz := clampIndex(int(math.Round(float64(fz))), h.height-1)
	return h.walkmask[gz*h.width+gx], true
}
