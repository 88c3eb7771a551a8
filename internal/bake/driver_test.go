package bake

import (
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/brackenfall/heightworld/internal/config"
	"github.com/brackenfall/heightworld/internal/world"
)

// inclinedPlaneOBJ describes a single quad sloping linearly from Y=0 at
// x=-worldSize/2 to Y=10 at x=+worldSize/2, covering the full bake footprint.
func inclinedPlaneOBJ(worldSize float32) string {
	half := worldSize / 2
	return "" +
		"v " + f32(-half) + " 0 " + f32(-half) + "\n" +
		"v " + f32(half) + " 10 " + f32(-half) + "\n" +
		"v " + f32(half) + " 10 " + f32(half) + "\n" +
		"v " + f32(-half) + " 0 " + f32(half) + "\n" +
		"f 1 2 3 4\n"
}

func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func TestBakeThenEncodeDecodeRoundTripsInclinedPlane(t *testing.T) {
	const worldSize = float32(100)
	mesh, err := LoadOBJ(strings.NewReader(inclinedPlaneOBJ(worldSize)))
	if err != nil {
		t.Fatalf("LoadOBJ() error = %v", err)
	}

	cfg := config.Default().Baker
	cfg.ImageSize = 16
	hmin, hmax := float32(-1), float32(11)

	heights := Bake(context.Background(), mesh, worldSize, cfg, hmin)

	var buf bytes.Buffer
	if err := world.EncodeHeightmap(&buf, cfg.ImageSize, cfg.ImageSize, heights, hmin, hmax); err != nil {
		t.Fatalf("EncodeHeightmap() error = %v", err)
	}

	width, height, decoded, err := world.DecodeHeightmap(bytes.NewReader(buf.Bytes()), hmin, hmax)
	if err != nil {
		t.Fatalf("DecodeHeightmap() error = %v", err)
	}
	if width != cfg.ImageSize || height != cfg.ImageSize {
		t.Fatalf("decoded dims = %dx%d, want %dx%d", width, height, cfg.ImageSize, cfg.ImageSize)
	}

	// The plane rises linearly across X: height(worldX) = 10*(worldX+half)/worldSize.
	// Sample interior columns (never the exact edge, to dodge boundary
	// rounding between the quad's two triangles) and check against that
	// formula; quantization to 16 bits over a 12-unit span tolerates a
	// small epsilon.
	row := cfg.ImageSize / 2
	for _, col := range []int{1, cfg.ImageSize / 4, cfg.ImageSize - 2} {
		worldX := pixelToWorld(col, cfg.ImageSize, worldSize)
		want := 10 * (worldX + worldSize/2) / worldSize
		got := decoded[row*cfg.ImageSize+col]
		if math.Abs(float64(got-want)) > 0.5 {
			t.Fatalf("column %d height = %v, want ~%v", col, got, want)
		}
	}
}

func TestBakeMissedColumnsFallBackToHeightMin(t *testing.T) {
	const worldSize = float32(10)
	// A tiny triangle far from the pixel grid's footprint: every raycast
	// column should miss and fall back to heightMin.
	src := "v 1000 0 1000\nv 1001 0 1000\nv 1000 0 1001\nf 1 2 3\n"
	mesh, err := LoadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadOBJ() error = %v", err)
	}

	cfg := config.Default().Baker
	cfg.ImageSize = 4
	heights := Bake(context.Background(), mesh, worldSize, cfg, -64)

	for i, h := range heights {
		if h != -64 {
			t.Fatalf("pixel %d height = %v, want -64 (fallback)", i, h)
		}
	}
}
