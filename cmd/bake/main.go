package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/brackenfall/heightworld/internal/bake"
	"github.com/brackenfall/heightworld/internal/config"
	"github.com/brackenfall/heightworld/internal/world"
)

func main() {
	objPath := flag.String("obj", "", "path to the input OBJ triangle soup")
	outPath := flag.String("out", "", "path to write the baked 16-bit heightmap PNG")
	worldSize := flag.Float64("worldsize", 64, "square footprint in meters the image covers")
	cfgPath := flag.String("config", "", "path to a baker preset config file (JSON)")
	imageSize := flag.Int("imagesize", 0, "override config.Baker.ImageSize if > 0")
	heightMin := flag.Float64("hmin", 0, "override config.World.HeightMin if -hmin-set is also passed")
	heightMinSet := flag.Bool("hmin-set", false, "set to apply -hmin")
	heightMax := flag.Float64("hmax", 0, "override config.World.HeightMax if -hmax-set is also passed")
	heightMaxSet := flag.Bool("hmax-set", false, "set to apply -hmax")
	flag.Parse()

	if *objPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bake -obj <input.obj> -out <output.png> [-worldsize 64] [-config preset.json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *imageSize > 0 {
		cfg.Baker.ImageSize = *imageSize
	}
	if *heightMinSet {
		cfg.World.HeightMin = float32(*heightMin)
	}
	if *heightMaxSet {
		cfg.World.HeightMax = float32(*heightMax)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validate config: %v", err)
	}

	objFile, err := os.Open(*objPath)
	if err != nil {
		log.Fatalf("open obj: %v", err)
	}
	mesh, err := bake.LoadOBJ(objFile)
	objFile.Close()
	if err != nil {
		log.Fatalf("load obj: %v", err)
	}

	heights := bake.Bake(context.Background(), mesh, float32(*worldSize), cfg.Baker, cfg.World.HeightMin)

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer out.Close()

	if err := world.EncodeHeightmap(out, cfg.Baker.ImageSize, cfg.Baker.ImageSize, heights, cfg.World.HeightMin, cfg.World.HeightMax); err != nil {
		log.Fatalf("encode heightmap: %v", err)
	}

	log.Printf("baked %dx%d heightmap from %s to %s (hmin=%v hmax=%v)", cfg.Baker.ImageSize, cfg.Baker.ImageSize, *objPath, *outPath, cfg.World.HeightMin, cfg.World.HeightMax)
}
