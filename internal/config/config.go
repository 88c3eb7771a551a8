// Package config loads and validates the tunable parameters for the game
// client: world streaming, the path planner's fixed capacities, the skeletal
// runtime, and the offline baker's shared constants.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Config captures the tunable parameters needed to bootstrap the client.
type Config struct {
	World       WorldConfig       `json:"world"`
	Pathfinding PathfindingConfig `json:"pathfinding"`
	Skeleton    SkeletonConfig    `json:"skeleton"`
	Baker       BakerConfig       `json:"baker"`
}

// WorldConfig describes the chunk mosaic a level descriptor populates.
type WorldConfig struct {
	ChunkSize       float32 `json:"chunkSize"`       // meters
	PathGridSize    int     `json:"pathGridSize"`    // K, cells per chunk edge
	WalkVoteFrac    float64 `json:"walkVoteFrac"`    // tau, threshold voting fraction
	HeightMin       float32 `json:"heightMin"`       // Hmin, meters
	HeightMax       float32 `json:"heightMax"`       // Hmax, meters
	SlopeGating     bool    `json:"slopeGating"`     // disabled by default (spec 4.1); not read by world.Load or cmd/game
	MaxSlopeDegrees float64 `json:"maxSlopeDegrees"` // not read by world.Load or cmd/game; HeightField.EnableSlopeGating takes the limit directly
}

// PathfindingConfig bounds the WindowPlanner's fixed scratch capacities.
type PathfindingConfig struct {
	MaxChunkWindow  int     `json:"maxChunkWindow"`  // Cmax, chunks per axis
	NodePoolSize    int     `json:"nodePoolSize"`    // A* node pool capacity
	HeapCapacity    int     `json:"heapCapacity"`    // A* open-set capacity
	SmoothStepMeter float32 `json:"smoothStepMeter"` // raymarch step for string pulling
}

// SkeletonConfig bounds the skeletal runtime's compile-time caps.
type SkeletonConfig struct {
	MaxBones           int     `json:"maxBones"`
	QuatTolerance      float64 `json:"quatTolerance"`
	DefaultBlendSecond float32 `json:"defaultBlendSeconds"`
}

// BakerConfig holds the offline heightmap baker's raycasting parameters.
type BakerConfig struct {
	ImageSize     int     `json:"imageSize"` // N, output is N x N
	RayEpsilon    float64 `json:"rayEpsilon"`
	SkyClearance  float32 `json:"skyClearance"` // meters above mesh max Y to start the ray
	AccelGridSize int     `json:"accelGridSize"` // optional uniform XZ grid; 0 disables
}

// Load reads configuration from a JSON file if provided. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns the build-time constants documented as a contract between
// the runtime and the baker (spec.md 6.2): Hmin/Hmax must match exactly or
// decoded heights silently disagree with the baked image.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkSize:       64,
			PathGridSize:    64,
			WalkVoteFrac:    0.90,
			HeightMin:       -64,
			HeightMax:       192,
			SlopeGating:     false,
			MaxSlopeDegrees: 50,
		},
		Pathfinding: PathfindingConfig{
			MaxChunkWindow:  3,
			NodePoolSize:    50_000,
			HeapCapacity:    50_000,
			SmoothStepMeter: 0.2,
		},
		Skeleton: SkeletonConfig{
			MaxBones:           64,
			QuatTolerance:      1e-3,
			DefaultBlendSecond: 0.2,
		},
		Baker: BakerConfig{
			ImageSize:     1024,
			RayEpsilon:    1e-6,
			SkyClearance:  10,
			AccelGridSize: 0,
		},
	}
}

// Validate rejects configurations that would violate a documented invariant
// elsewhere in the system (e.g. a zero chunk size breaks chunk_at's floor
// division).
func (c *Config) Validate() error {
	if c.World.ChunkSize <= 0 {
		return errors.New("world.chunkSize must be positive")
	}
	if c.World.PathGridSize <= 0 {
		return errors.New("world.pathGridSize must be positive")
	}
	if c.World.WalkVoteFrac <= 0 || c.World.WalkVoteFrac > 1 {
		return errors.New("world.walkVoteFrac must be in (0, 1]")
	}
	if c.World.HeightMax <= c.World.HeightMin {
		return errors.New("world.heightMax must exceed world.heightMin")
	}
	if c.Pathfinding.MaxChunkWindow <= 0 {
		return errors.New("pathfinding.maxChunkWindow must be positive")
	}
	if c.Pathfinding.NodePoolSize <= 0 {
		return errors.New("pathfinding.nodePoolSize must be positive")
	}
	if c.Pathfinding.HeapCapacity <= 0 {
		return errors.New("pathfinding.heapCapacity must be positive")
	}
	if c.Skeleton.MaxBones <= 0 {
		return errors.New("skeleton.maxBones must be positive")
	}
	if c.Baker.ImageSize <= 1 {
		return errors.New("baker.imageSize must be greater than 1")
	}
	return nil
}
