package world

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ChunkRecord is one chunk line from a level descriptor (spec.md 6.1):
// "<ix> <iz> <obj_relpath> <heightmap_relpath> [walkmask_relpath]".
type ChunkRecord struct {
	IX, IZ        int
	ObjPath       string // static prop mesh; not consumed by the core, passed through
	HeightmapPath string
	WalkmaskPath  string // optional; empty means "no walkmask supplied"
}

// LevelDescriptor is the parsed form of a level's text descriptor.
type LevelDescriptor struct {
	ChunksX, ChunksZ int
	ChunkSize        float32
	Chunks           []ChunkRecord
	Dir              string // directory the descriptor lived in; paths resolve relative to it
}

// LoadDescriptor reads and parses a level descriptor file from disk.
func LoadDescriptor(path string) (*LevelDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open descriptor %s: %v", ErrIoMissing, path, err)
	}
	defer f.Close()
	return ParseDescriptor(f, filepath.Dir(path))
}

// ParseDescriptor parses the whitespace-tolerant text format from r. dir is
// used to resolve the chunk records' relative paths.
func ParseDescriptor(r io.Reader, dir string) (*LevelDescriptor, error) {
	desc := &LevelDescriptor{Dir: dir}
	haveChunksX, haveChunksZ, haveChunkSize := false, false, false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "chunks_x":
			v, err := parseIntField(fields, lineNo, "chunks_x")
			if err != nil {
				return nil, err
			}
			desc.ChunksX = v
			haveChunksX = true
		case "chunks_z":
			v, err := parseIntField(fields, lineNo, "chunks_z")
			if err != nil {
				return nil, err
			}
			desc.ChunksZ = v
			haveChunksZ = true
		case "chunk_size":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: chunk_size expects one value", ErrIoMalformed, lineNo)
			}
			v, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: chunk_size: %v", ErrIoMalformed, lineNo, err)
			}
			desc.ChunkSize = float32(v)
			haveChunkSize = true
		default:
			record, err := parseChunkRecord(fields, lineNo)
			if err != nil {
				return nil, err
			}
			desc.Chunks = append(desc.Chunks, record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan descriptor: %v", ErrIoMalformed, err)
	}

	if !haveChunksX || !haveChunksZ || !haveChunkSize {
		return nil, fmt.Errorf("%w: descriptor missing chunks_x/chunks_z/chunk_size header", ErrIoMalformed)
	}
	if desc.ChunksX <= 0 || desc.ChunksZ <= 0 {
		return nil, fmt.Errorf("%w: chunks_x/chunks_z must be positive", ErrIoMalformed)
	}
	if desc.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive", ErrIoMalformed)
	}

	return desc, nil
}

func parseIntField(fields []string, lineNo int, name string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: line %d: %s expects one value", ErrIoMalformed, lineNo, name)
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %s: %v", ErrIoMalformed, lineNo, name, err)
	}
	return v, nil
}

func parseChunkRecord(fields []string, lineNo int) (ChunkRecord, error) {
	if len(fields) != 4 && len(fields) != 5 {
		return ChunkRecord{}, fmt.Errorf("%w: line %d: expected 4 or 5 fields for a chunk record, got %d", ErrIoMalformed, lineNo, len(fields))
	}
	ix, err := strconv.Atoi(fields[0])
	if err != nil {
		return ChunkRecord{}, fmt.Errorf("%w: line %d: chunk ix: %v", ErrIoMalformed, lineNo, err)
	}
	iz, err := strconv.Atoi(fields[1])
	if err != nil {
		return ChunkRecord{}, fmt.Errorf("%w: line %d: chunk iz: %v", ErrIoMalformed, lineNo, err)
	}
	record := ChunkRecord{
		IX:            ix,
		IZ:            iz,
		ObjPath:       fields[2],
		HeightmapPath: fields[3],
	}
	if len(fields) == 5 {
		record.WalkmaskPath = fields[4]
	}
	return record, nil
}

// ArrayIndex translates a descriptor's centered chunk index into the
// ChunkedWorld's 0-based array index (spec.md 6.1: "for chunks_x = 4,
// ix in {-2,-1,0,1}").
func (d *LevelDescriptor) ArrayIndex(rec ChunkRecord) (int, int) {
	return rec.IX + d.ChunksX/2, rec.IZ + d.ChunksZ/2
}

// ResolvePath joins a chunk record's relative path against the descriptor's
// directory.
func (d *LevelDescriptor) ResolvePath(relPath string) string {
	return filepath.Join(d.Dir, relPath)
}
