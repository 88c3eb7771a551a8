package bake

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/ioerr"
)

// LoadOBJ reads a Wavefront OBJ triangle soup: it accumulates vertex
// positions from "v" lines and fan-triangulates every "f" line, supporting
// both 1-based and negative (relative-to-end) face indices (spec.md 4.8).
// Normals, UVs, and material directives are ignored — the baker only needs
// geometry.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	var positions []mgl32.Vec3
	var triangles []Triangle

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ioerr.Malformed, lineNo, err)
			}
			positions = append(positions, v)
		case "f":
			faceVerts, err := resolveFace(fields[1:], positions)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ioerr.Malformed, lineNo, err)
			}
			for i := 1; i+1 < len(faceVerts); i++ {
				triangles = append(triangles, newTriangle(faceVerts[0], faceVerts[i], faceVerts[i+1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan obj: %v", ioerr.Malformed, err)
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: obj contains no triangulated faces", ioerr.Malformed)
	}
	return buildMesh(triangles), nil
}

func parseVertex(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("vertex line needs 3 components, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("parse vertex component %q: %w", fields[i], err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// resolveFace converts a face line's index tokens (possibly "v/vt/vn") into
// positions, fanning out from the first vertex (spec.md 4.8:
// "fan-triangulate faces").
func resolveFace(fields []string, positions []mgl32.Vec3) ([]mgl32.Vec3, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face line needs at least 3 vertices, got %d", len(fields))
	}
	verts := make([]mgl32.Vec3, len(fields))
	for i, tok := range fields {
		idxStr := strings.SplitN(tok, "/", 2)[0]
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("parse face index %q: %w", tok, err)
		}
		pos, err := resolveIndex(idx, positions)
		if err != nil {
			return nil, err
		}
		verts[i] = pos
	}
	return verts, nil
}

// resolveIndex applies OBJ's index convention: positive indices are
// 1-based, negative indices count backward from the most recently declared
// vertex (spec.md 4.8: "support 1-based and negative indices").
func resolveIndex(idx int, positions []mgl32.Vec3) (mgl32.Vec3, error) {
	var at int
	switch {
	case idx > 0:
		at = idx - 1
	case idx < 0:
		at = len(positions) + idx
	default:
		return mgl32.Vec3{}, fmt.Errorf("face index 0 is invalid")
	}
	if at < 0 || at >= len(positions) {
		return mgl32.Vec3{}, fmt.Errorf("face index %d out of range (%d vertices declared)", idx, len(positions))
	}
	return positions[at], nil
}
