package world

import (
	"fmt"
	"sync"
)

// ChunkIndex is a registry mapping a chunk's array coordinate to the
// descriptor entry that backs it, resolved once at level load and returned
// by Load alongside the ChunkedWorld. It answers "which files back chunk
// (cx,cz)?" without rescanning the descriptor.
//
// Adapted from central/internal/worldmap/index.go's ServerInfo registry,
// which answered the analogous question "which chunk server owns block
// (x,y)?" in the teacher's distributed topology. A single local game client
// has no chunk servers to route between, so Lookup here resolves straight
// to a ChunkRecord instead of a network endpoint.
type ChunkIndex struct {
	mu      sync.RWMutex
	byCoord map[ChunkCoord]ChunkRecord
}

// NewChunkIndex builds a registry from a parsed level descriptor.
func NewChunkIndex(desc *LevelDescriptor) *ChunkIndex {
	idx := &ChunkIndex{byCoord: make(map[ChunkCoord]ChunkRecord, len(desc.Chunks))}
	idx.LoadFromDescriptor(desc)
	return idx
}

// LoadFromDescriptor replaces the registry's contents from desc.
func (idx *ChunkIndex) LoadFromDescriptor(desc *LevelDescriptor) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byCoord = make(map[ChunkCoord]ChunkRecord, len(desc.Chunks))
	for _, rec := range desc.Chunks {
		x, z := desc.ArrayIndex(rec)
		idx.byCoord[ChunkCoord{X: x, Z: z}] = rec
	}
}

// Lookup resolves a chunk's descriptor entry by array coordinate.
func (idx *ChunkIndex) Lookup(coord ChunkCoord) (ChunkRecord, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rec, ok := idx.byCoord[coord]
	if !ok {
		return ChunkRecord{}, fmt.Errorf("no chunk record for %v", coord)
	}
	return rec, nil
}

// Records returns a snapshot of every registered chunk record.
func (idx *ChunkIndex) Records() []ChunkRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]ChunkRecord, 0, len(idx.byCoord))
	for _, rec := range idx.byCoord {
		out = append(out, rec)
	}
	return out
}
