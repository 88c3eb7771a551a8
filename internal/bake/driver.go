package bake

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/config"
)

// Bake runs the offline raycast over an N×N grid and returns the dense
// meters heightmap (spec.md 4.8). worldSize is the square footprint in
// meters the image covers, centered at the origin. Heights outside any
// triangle's footprint fall back to worldHeightMin.
func Bake(ctx context.Context, mesh *Mesh, worldSize float32, cfg config.BakerConfig, worldHeightMin float32) []float32 {
	n := cfg.ImageSize
	heights := make([]float32, n*n)
	epsilon := float32(cfg.RayEpsilon)
	rayOriginY := mesh.MaxY + cfg.SkyClearance

	grid := newAccelGrid(mesh.Triangles, cfg.AccelGridSize)

	for y := 0; y < n; y++ {
		select {
		case <-ctx.Done():
			return heights
		default:
		}
		worldZ := pixelToWorld(y, n, worldSize)
		for x := 0; x < n; x++ {
			worldX := pixelToWorld(x, n, worldSize)
			heights[y*n+x] = castColumn(mesh, grid, worldX, worldZ, rayOriginY, epsilon, worldHeightMin)
		}
	}
	return heights
}

// pixelToWorld maps pixel index i (0..n-1) to a centered world coordinate
// (spec.md 4.8: "worldX = (x/(N-1) - 0.5) * worldSize").
func pixelToWorld(i, n int, worldSize float32) float32 {
	if n <= 1 {
		return 0
	}
	return (float32(i)/float32(n-1) - 0.5) * worldSize
}

// castColumn finds the highest surface under (worldX, worldZ), culling
// triangles by XZ AABB (and, if present, by acceleration grid cell) before
// running Möller-Trumbore (spec.md 4.8).
func castColumn(mesh *Mesh, grid *accelGrid, worldX, worldZ, rayOriginY, epsilon, heightMin float32) float32 {
	origin := mgl32.Vec3{worldX, rayOriginY, worldZ}
	bestT := float32(-1)
	hitAny := false

	candidates := mesh.Triangles
	if grid != nil {
		candidates = grid.candidatesAt(worldX, worldZ)
	}
	for _, tri := range candidates {
		if worldX < tri.MinX || worldX > tri.MaxX || worldZ < tri.MinZ || worldZ > tri.MaxZ {
			continue
		}
		t, hit := intersectDownwardRay(tri, origin, epsilon)
		if !hit {
			continue
		}
		if !hitAny || t < bestT {
			bestT = t
			hitAny = true
		}
	}
	if !hitAny {
		return heightMin
	}
	return rayOriginY - bestT
}
