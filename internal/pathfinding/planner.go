// Package pathfinding assembles a sliding multi-chunk grid around a
// (start, goal) pair and runs A* over it, then hands the raw waypoint
// polyline to the smoother for string-pulling.
package pathfinding

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/world"
)

const sqrt2 = float32(1.4142135)

// node is one entry in the planner's node pool. parent is a pool index and
// heapIndex a position in the heap slice, never raw pointers, so the pool
// can live in one contiguous preallocated slice (spec.md 4.4.3: "parent
// pointer into the pool").
type node struct {
	gx, gz    int
	g, h, f   float32
	parent    int32 // pool index, -1 = none
	cell      int32 // linear window-cell index
	heapIndex int
}

type neighborOffset struct {
	dx, dz int
	cost   float32
}

var neighborOffsets = [8]neighborOffset{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, sqrt2}, {1, -1, sqrt2}, {-1, 1, sqrt2}, {-1, -1, sqrt2},
}

// WindowPlanner is the fixed-capacity A* planner described by spec.md 4.4.
// It owns one statically sized scratch buffer set — walkability grid,
// g-cost array, visited-tag array, node pool, and binary min-heap — and
// reuses them across every FindPath call. The scratch buffers are allocated
// once, here; a query allocates only the Path it returns and the cell chain
// used to build it.
type WindowPlanner struct {
	cmax   int
	k      int
	maxDim int // cmax * k, the scratch buffer's edge length

	walk       []byte    // 0 = blocked, 1 = walkable; reused row-major per query
	visited    []uint32  // search-id tags, see newSearch
	nodeOfCell []int32   // pool index currently holding this cell's best node
	gcost      []float32 // best known g for this cell in the current search
	searchID   uint32

	pool    []node
	poolLen int

	heap []int32 // pool indices, binary min-heap keyed on node.f
}

// NewWindowPlanner preallocates every scratch buffer. cmax bounds the window
// to cmax x cmax chunks; k is the PathGrid resolution (must match the
// world's); nodePoolSize and heapCapacity bound one query's working set.
func NewWindowPlanner(cmax, k, nodePoolSize, heapCapacity int) *WindowPlanner {
	maxDim := cmax * k
	cells := maxDim * maxDim
	return &WindowPlanner{
		cmax:       cmax,
		k:          k,
		maxDim:     maxDim,
		walk:       make([]byte, cells),
		visited:    make([]uint32, cells),
		nodeOfCell: make([]int32, cells),
		gcost:      make([]float32, cells),
		pool:       make([]node, nodePoolSize),
		heap:       make([]int32, 0, heapCapacity),
	}
}

// FindPath resolves a world-space (start, goal) pair into a Path, or a
// structured failure (PlanBlocked, ErrPlanNoRoute, ErrPlanCapacityExceeded).
// Ordering follows spec.md 5: setup_window -> A* -> reconstruct; smoothing
// is a separate, explicit call (see PathSmoother) so callers can skip it.
func (p *WindowPlanner) FindPath(ctx context.Context, w *world.ChunkedWorld, start, goal mgl32.Vec3, metrics *PlannerMetrics) (*Path, error) {
	profiler := profilerFromContext(ctx)
	if profiler == nil {
		profiler = metrics.Profiler()
	}

	if !w.IsWalkable(start.X(), start.Z()) {
		return nil, &PlanBlocked{End: "start"}
	}
	if !w.IsWalkable(goal.X(), goal.Z()) {
		return nil, &PlanBlocked{End: "goal"}
	}

	startChunk, startCoord, ok := w.ChunkAt(start.X(), start.Z())
	if !ok {
		return nil, &PlanBlocked{End: "start"}
	}
	goalChunk, goalCoord, ok := w.ChunkAt(goal.X(), goal.Z())
	if !ok {
		return nil, &PlanBlocked{End: "goal"}
	}

	if startCoord == goalCoord {
		if path, ok := p.lineOfSight(startChunk, start, goal); ok {
			if profiler != nil {
				profiler.RecordFastPathHit()
			}
			return path, nil
		}
	}
	_ = goalChunk

	return p.windowSearch(w, startChunk, startCoord, goalCoord, start, goal, profiler)
}

func (p *WindowPlanner) windowSearch(w *world.ChunkedWorld, startChunk *world.HeightField, startCoord, goalCoord world.ChunkCoord, start, goal mgl32.Vec3, profiler PlannerProfiler) (*Path, error) {
	minCX, maxCX := minInt(startCoord.X, goalCoord.X), maxInt(startCoord.X, goalCoord.X)
	minCZ, maxCZ := minInt(startCoord.Z, goalCoord.Z), maxInt(startCoord.Z, goalCoord.Z)
	spanX := maxCX - minCX + 1
	spanZ := maxCZ - minCZ + 1
	if spanX > p.cmax || spanZ > p.cmax {
		return nil, ErrPlanNoRoute
	}

	k := p.k
	winW := spanX * k
	winH := spanZ * k
	chunkSize := w.ChunkSize()
	originX := startChunk.OffsetX() - float32(startCoord.X-minCX)*chunkSize
	originZ := startChunk.OffsetZ() - float32(startCoord.Z-minCZ)*chunkSize

	for wz := 0; wz < winH; wz++ {
		ccz := minCZ + wz/k
		lz := wz % k
		for wx := 0; wx < winW; wx++ {
			ccx := minCX + wx/k
			lx := wx % k
			idx := wz*winW + wx
			chunk := w.ChunkAtCoord(world.ChunkCoord{X: ccx, Z: ccz})
			if chunk == nil {
				p.walk[idx] = 0
				continue
			}
			if chunk.PathGrid().Walkable(lx, lz) {
				p.walk[idx] = 1
			} else {
				p.walk[idx] = 0
			}
		}
	}
	if profiler != nil {
		profiler.RecordWindowSetup(winW * winH)
	}

	startLX, startLZ, ok := startChunk.GridCell(start.X(), start.Z())
	if !ok {
		return nil, &PlanBlocked{End: "start"}
	}
	startWX := (startCoord.X-minCX)*k + startLX
	startWZ := (startCoord.Z-minCZ)*k + startLZ

	goalChunk := w.ChunkAtCoord(goalCoord)
	goalLX, goalLZ, ok := goalChunk.GridCell(goal.X(), goal.Z())
	if !ok {
		return nil, &PlanBlocked{End: "goal"}
	}
	goalWX := (goalCoord.X-minCX)*k + goalLX
	goalWZ := (goalCoord.Z-minCZ)*k + goalLZ
	goalCell := int32(goalWZ*winW + goalWX)

	p.poolLen = 0
	p.heap = p.heap[:0]
	p.newSearch()

	startCell := int32(startWZ*winW + startWX)
	startIdx, ok := p.allocNode()
	if !ok {
		return nil, ErrPlanCapacityExceeded
	}
	h0 := heuristic(startWX, startWZ, goalWX, goalWZ)
	p.pool[startIdx] = node{gx: startWX, gz: startWZ, g: 0, h: h0, f: h0, parent: -1, cell: startCell}
	p.gcost[startCell] = 0
	p.visited[startCell] = p.searchID
	p.nodeOfCell[startCell] = startIdx
	if profiler != nil {
		profiler.RecordNodeAllocated()
	}
	if len(p.heap) >= cap(p.heap) {
		return nil, ErrPlanCapacityExceeded
	}
	p.heapPush(startIdx)

	for len(p.heap) > 0 {
		idx := p.heapPop()
		nd := p.pool[idx]
		if nd.g > p.gcost[nd.cell] {
			continue // stale entry superseded by a cheaper discovery
		}
		if profiler != nil {
			profiler.RecordNodeExpanded()
		}
		if nd.cell == goalCell {
			return p.reconstruct(w, minCX, minCZ, k, winW, idx), nil
		}

		for _, off := range neighborOffsets {
			nx := nd.gx + off.dx
			nz := nd.gz + off.dz
			if nx < 0 || nz < 0 || nx >= winW || nz >= winH {
				continue
			}
			ncell := int32(nz*winW + nx)
			if p.walk[ncell] == 0 {
				continue
			}
			tentative := nd.g + off.cost
			if p.visited[ncell] == p.searchID && tentative >= p.gcost[ncell] {
				continue
			}
			newIdx, ok := p.allocNode()
			if !ok {
				return nil, ErrPlanCapacityExceeded
			}
			hh := heuristic(nx, nz, goalWX, goalWZ)
			p.pool[newIdx] = node{gx: nx, gz: nz, g: tentative, h: hh, f: tentative + hh, parent: idx, cell: ncell}
			p.gcost[ncell] = tentative
			p.visited[ncell] = p.searchID
			p.nodeOfCell[ncell] = newIdx
			if profiler != nil {
				profiler.RecordNodeAllocated()
				profiler.RecordHeuristicEvaluation()
			}
			if len(p.heap) >= cap(p.heap) {
				return nil, ErrPlanCapacityExceeded
			}
			p.heapPush(newIdx)
		}
	}

	return nil, ErrPlanNoRoute
}

// newSearch bumps the monotonic search id that makes the visited array
// reusable without clearing it every query (spec.md 4.4.1). The wrap case
// is explicit: incrementing past the uint32 max wraps to 0, which this
// detects and handles by zeroing visited and resuming at 1, so 0 can stay a
// permanent "never visited" sentinel.
func (p *WindowPlanner) newSearch() {
	p.searchID++
	if p.searchID == 0 {
		for i := range p.visited {
			p.visited[i] = 0
		}
		p.searchID = 1
	}
}

func (p *WindowPlanner) allocNode() (int32, bool) {
	if p.poolLen >= len(p.pool) {
		return 0, false
	}
	idx := int32(p.poolLen)
	p.poolLen++
	return idx, true
}

func (p *WindowPlanner) reconstruct(w *world.ChunkedWorld, minCX, minCZ, k, winW int, goalIdx int32) *Path {
	var cellChain []int32
	for idx := goalIdx; idx != -1; {
		nd := p.pool[idx]
		cellChain = append(cellChain, nd.cell)
		idx = nd.parent
	}

	waypoints := make([]mgl32.Vec3, len(cellChain))
	for i, cellIdx := range cellChain {
		wx := int(cellIdx) % winW
		wz := int(cellIdx) / winW
		ccx := minCX + wx/k
		ccz := minCZ + wz/k
		lx := wx % k
		lz := wz % k
		chunk := w.ChunkAtCoord(world.ChunkCoord{X: ccx, Z: ccz})
		x, z := chunk.CellCenter(lx, lz)
		y := w.HeightAt(x, z)
		waypoints[len(cellChain)-1-i] = mgl32.Vec3{x, y, z}
	}
	return &Path{Waypoints: waypoints}
}

func heuristic(ax, az, bx, bz int) float32 {
	dx := float64(ax - bx)
	dz := float64(az - bz)
	return float32(math.Sqrt(dx*dx + dz*dz))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// heapPush inserts a pool index into the binary min-heap keyed on node.f,
// sifting up. Every swap updates the moved node's heapIndex field so the
// heap can later be extended to support decrease-key without a linear scan
// (spec.md 4.4.3: "every swap updates the node's heap-index field").
func (p *WindowPlanner) heapPush(idx int32) {
	p.heap = append(p.heap, idx)
	i := len(p.heap) - 1
	p.pool[idx].heapIndex = i
	p.siftUp(i)
}

// heapPop removes and returns the minimum-f pool index: swap root with the
// last element, shrink, sift down.
func (p *WindowPlanner) heapPop() int32 {
	top := p.heap[0]
	last := len(p.heap) - 1
	p.heap[0] = p.heap[last]
	p.heap = p.heap[:last]
	p.pool[top].heapIndex = -1
	if last > 0 {
		p.pool[p.heap[0]].heapIndex = 0
		p.siftDown(0)
	}
	return top
}

func (p *WindowPlanner) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if p.pool[p.heap[parent]].f <= p.pool[p.heap[i]].f {
			break
		}
		p.heapSwap(parent, i)
		i = parent
	}
}

func (p *WindowPlanner) siftDown(i int) {
	n := len(p.heap)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && p.pool[p.heap[left]].f < p.pool[p.heap[smallest]].f {
			smallest = left
		}
		if right < n && p.pool[p.heap[right]].f < p.pool[p.heap[smallest]].f {
			smallest = right
		}
		if smallest == i {
			break
		}
		p.heapSwap(i, smallest)
		i = smallest
	}
}

func (p *WindowPlanner) heapSwap(i, j int) {
	p.heap[i], p.heap[j] = p.heap[j], p.heap[i]
	p.pool[p.heap[i]].heapIndex = i
	p.pool[p.heap[j]].heapIndex = j
}
