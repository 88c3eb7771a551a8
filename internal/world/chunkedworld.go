package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk by its position in the ChunkedWorld's dense
// array (spec.md 3: "chunks[Cx][Cz]"), not by the level descriptor's
// centered file-naming indices — LevelDescriptor.ArrayIndex translates
// between the two, and Load applies it at level-load time.
type ChunkCoord struct {
	X int
	Z int
}

// ChunkedWorld is the mosaic of HeightFields loaded for one level. Holes
// (missing or failed chunks) are represented by a nil entry and treated as
// unwalkable, non-existent ground (spec.md 3).
type ChunkedWorld struct {
	chunksX, chunksZ int
	chunkSize        float32
	originX, originZ float32
	chunks           []*HeightField // row-major, chunksZ rows of chunksX
}

// NewChunkedWorld allocates an empty chunk mosaic. Every slot starts as a
// hole; SetChunk populates it during level load.
func NewChunkedWorld(chunksX, chunksZ int, chunkSize, originX, originZ float32) (*ChunkedWorld, error) {
	if chunksX <= 0 || chunksZ <= 0 {
		return nil, fmt.Errorf("%w: chunksX/chunksZ must be positive", ErrIoMalformed)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunkSize must be positive", ErrIoMalformed)
	}
	return &ChunkedWorld{
		chunksX:   chunksX,
		chunksZ:   chunksZ,
		chunkSize: chunkSize,
		originX:   originX,
		originZ:   originZ,
		chunks:    make([]*HeightField, chunksX*chunksZ),
	}, nil
}

// SetChunk installs a loaded HeightField at array index (cx, cz), enforcing
// the invariant that its footprint matches the world's chunk grid
// (spec.md 3: "chunks[i][j].worldSize == chunkSize").
func (w *ChunkedWorld) SetChunk(cx, cz int, hf *HeightField) error {
	if cx < 0 || cz < 0 || cx >= w.chunksX || cz >= w.chunksZ {
		return fmt.Errorf("chunk index (%d,%d) outside %dx%d world", cx, cz, w.chunksX, w.chunksZ)
	}
	if hf == nil {
		w.chunks[cz*w.chunksX+cx] = nil
		return nil
	}
	wantX := w.originX + float32(cx)*w.chunkSize
	wantZ := w.originZ + float32(cz)*w.chunkSize
	if hf.WorldSize() != w.chunkSize {
		return fmt.Errorf("chunk (%d,%d) worldSize %v does not match chunkSize %v", cx, cz, hf.WorldSize(), w.chunkSize)
	}
	if hf.OffsetX() != wantX || hf.OffsetZ() != wantZ {
		return fmt.Errorf("chunk (%d,%d) offset (%v,%v) does not match expected (%v,%v)", cx, cz, hf.OffsetX(), hf.OffsetZ(), wantX, wantZ)
	}
	w.chunks[cz*w.chunksX+cx] = hf
	return nil
}

// ChunkSize returns the world's square chunk footprint in meters.
func (w *ChunkedWorld) ChunkSize() float32 { return w.chunkSize }

// ChunksX, ChunksZ report the world's array dimensions.
func (w *ChunkedWorld) ChunksX() int { return w.chunksX }
func (w *ChunkedWorld) ChunksZ() int { return w.chunksZ }

func (w *ChunkedWorld) chunkIndex(x, z float32) (int, int) {
	cx := int(math.Floor(float64((x - w.originX) / w.chunkSize)))
	cz := int(math.Floor(float64((z - w.originZ) / w.chunkSize)))
	return cx, cz
}

// ChunkAt returns the chunk owning world-space (x, z), or ok=false if the
// coordinates fall outside the world or the owning chunk is a hole
// (spec.md 4.2).
func (w *ChunkedWorld) ChunkAt(x, z float32) (*HeightField, ChunkCoord, bool) {
	cx, cz := w.chunkIndex(x, z)
	if cx < 0 || cz < 0 || cx >= w.chunksX || cz >= w.chunksZ {
		return nil, ChunkCoord{}, false
	}
	hf := w.chunks[cz*w.chunksX+cx]
	if hf == nil {
		return nil, ChunkCoord{X: cx, Z: cz}, false
	}
	return hf, ChunkCoord{X: cx, Z: cz}, true
}

// ChunkAtCoord returns the chunk at a known array index, or nil for a hole
// or out-of-range index.
func (w *ChunkedWorld) ChunkAtCoord(c ChunkCoord) *HeightField {
	if c.X < 0 || c.Z < 0 || c.X >= w.chunksX || c.Z >= w.chunksZ {
		return nil
	}
	return w.chunks[c.Z*w.chunksX+c.X]
}

// HeightAt delegates to the owning chunk; a missing chunk yields DeepHeight
// (spec.md 4.2, 7).
func (w *ChunkedWorld) HeightAt(x, z float32) float32 {
	hf, _, ok := w.ChunkAt(x, z)
	if !ok {
		return DeepHeight
	}
	return hf.HeightAt(x, z)
}

// NormalAt delegates to the owning chunk; a missing chunk yields +Y
// (spec.md 4.2).
func (w *ChunkedWorld) NormalAt(x, z float32) mgl32.Vec3 {
	hf, _, ok := w.ChunkAt(x, z)
	if !ok {
		return mgl32.Vec3{0, 1, 0}
	}
	return hf.NormalAt(x, z)
}

// IsWalkable delegates to the owning chunk; a missing chunk is unwalkable
// (spec.md 4.2).
func (w *ChunkedWorld) IsWalkable(x, z float32) bool {
	hf, _, ok := w.ChunkAt(x, z)
	if !ok {
		return false
	}
	return hf.IsWalkable(x, z)
}
