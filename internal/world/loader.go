package world

import (
	"log"
	"os"
)

// LoadParams bundles the build-time constants a level load needs beyond
// what the descriptor itself carries.
type LoadParams struct {
	PathGridSize int     // K
	WalkVoteFrac float64 // tau
	HeightMin    float32
	HeightMax    float32
}

// Load reads a level descriptor and every chunk it references, producing a
// ChunkedWorld and the ChunkIndex used to resolve chunk coordinates back to
// their source files. An individual chunk whose heightmap fails to load
// becomes a hole (logged once) rather than aborting the whole level —
// spec.md 3 explicitly allows holes for missing/failed chunks; a malformed
// descriptor itself is still a hard failure (spec.md 7: load is aborted
// atomically).
func Load(descriptorPath string, params LoadParams) (*ChunkedWorld, *LevelDescriptor, *ChunkIndex, error) {
	desc, err := LoadDescriptor(descriptorPath)
	if err != nil {
		return nil, nil, nil, err
	}

	originX := -float32(desc.ChunksX/2) * desc.ChunkSize
	originZ := -float32(desc.ChunksZ/2) * desc.ChunkSize

	cw, err := NewChunkedWorld(desc.ChunksX, desc.ChunksZ, desc.ChunkSize, originX, originZ)
	if err != nil {
		return nil, nil, nil, err
	}

	idx := NewChunkIndex(desc)

	for _, rec := range desc.Chunks {
		cx, cz := desc.ArrayIndex(rec)
		hf, err := loadChunkHeightField(desc, rec, params)
		if err != nil {
			log.Printf("chunk (%d,%d) load failed, leaving hole: %v", rec.IX, rec.IZ, err)
			continue
		}
		if err := cw.SetChunk(cx, cz, hf); err != nil {
			log.Printf("chunk (%d,%d) rejected, leaving hole: %v", rec.IX, rec.IZ, err)
			continue
		}
	}

	return cw, desc, idx, nil
}

func loadChunkHeightField(desc *LevelDescriptor, rec ChunkRecord, params LoadParams) (*HeightField, error) {
	heightPath := desc.ResolvePath(rec.HeightmapPath)
	hf, err := os.Open(heightPath)
	if err != nil {
		return nil, err
	}
	defer hf.Close()

	width, height, heights, err := DecodeHeightmap(hf, params.HeightMin, params.HeightMax)
	if err != nil {
		return nil, err
	}

	var mask []byte
	if rec.WalkmaskPath != "" {
		wf, err := os.Open(desc.ResolvePath(rec.WalkmaskPath))
		if err != nil {
			return nil, err
		}
		defer wf.Close()
		mw, mh, m, err := DecodeWalkmask(wf)
		if err != nil {
			return nil, err
		}
		if mw != width || mh != height {
			log.Printf("chunk (%d,%d) walkmask dimensions (%d,%d) do not match heightmap (%d,%d); treating as fully walkable", rec.IX, rec.IZ, mw, mh, width, height)
			mask = fullyWalkableMask(width, height)
		} else {
			mask = m
		}
	} else {
		mask = fullyWalkableMask(width, height)
	}

	offsetX := float32(rec.IX) * desc.ChunkSize
	offsetZ := float32(rec.IZ) * desc.ChunkSize

	return NewHeightField(width, height, heights, mask, desc.ChunkSize, offsetX, offsetZ, params.PathGridSize, params.WalkVoteFrac)
}

func fullyWalkableMask(width, height int) []byte {
	mask := make([]byte, width*height)
	for i := range mask {
		mask[i] = 255
	}
	return mask
}
