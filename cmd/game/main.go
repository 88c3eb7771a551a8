package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/avatar"
	"github.com/brackenfall/heightworld/internal/config"
	"github.com/brackenfall/heightworld/internal/game"
	"github.com/brackenfall/heightworld/internal/ik"
	"github.com/brackenfall/heightworld/internal/pathfinding"
	"github.com/brackenfall/heightworld/internal/skeleton"
	"github.com/brackenfall/heightworld/internal/world"
)

func main() {
	var descriptorPath, cfgPath, skeletonPath string
	flag.StringVar(&descriptorPath, "level", "", "path to the level descriptor")
	flag.StringVar(&cfgPath, "config", "", "path to a client configuration file")
	flag.StringVar(&skeletonPath, "skeleton", "", "path to the player's SKEL asset")
	flag.Parse()

	if descriptorPath == "" || skeletonPath == "" {
		log.Fatalf("usage: game -level <descriptor.txt> -skeleton <player.skel> [-config config.json]")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	w, _, _, err := world.Load(descriptorPath, world.LoadParams{
		PathGridSize: cfg.World.PathGridSize,
		WalkVoteFrac: cfg.World.WalkVoteFrac,
		HeightMin:    cfg.World.HeightMin,
		HeightMax:    cfg.World.HeightMax,
	})
	if err != nil {
		log.Fatalf("load level: %v", err)
	}

	skelFile, err := os.Open(skeletonPath)
	if err != nil {
		log.Fatalf("open skeleton: %v", err)
	}
	skel, err := skeleton.Load(skelFile, cfg.Skeleton.MaxBones, cfg.Skeleton.QuatTolerance)
	skelFile.Close()
	if err != nil {
		log.Fatalf("load skeleton: %v", err)
	}

	planner := pathfinding.NewWindowPlanner(cfg.Pathfinding.MaxChunkWindow, cfg.World.PathGridSize, cfg.Pathfinding.NodePoolSize, cfg.Pathfinding.HeapCapacity)
	smoother := pathfinding.NewPathSmoother(cfg.Pathfinding.SmoothStepMeter)
	metrics := &pathfinding.PlannerMetrics{}

	hero := spawnHero(skel)

	loop := game.New(w, planner, smoother, logSink{}, 33*time.Millisecond)
	loop.SetMetrics(metrics)
	loop.AddAvatar("hero", hero)

	ctx, cancel := signalContext()
	defer cancel()

	log.Printf("loaded level %s, skeleton %s; starting gameplay loop", descriptorPath, skeletonPath)
	loop.Start(ctx)
	log.Printf("gameplay loop stopped: %+v", metrics.Snapshot())
}

// spawnHero builds a player avatar from its bind pose, playing its first
// animation (if any) and rigging hip/knee/foot chains by bone name when the
// skeleton declares them.
func spawnHero(skel *skeleton.Skeleton) *avatar.Avatar {
	inst := skeleton.NewInstance(skel)
	anim := skeleton.NewAnimator(inst)
	if len(skel.Animations) > 0 {
		anim.Play(0, 0)
	}

	var legs []*avatar.Leg
	for _, pair := range [][3]string{
		{"hip_l", "knee_l", "foot_l"},
		{"hip_r", "knee_r", "foot_r"},
	} {
		hip, knee, foot := boneIndex(skel, pair[0]), boneIndex(skel, pair[1]), boneIndex(skel, pair[2])
		if hip < 0 || knee < 0 || foot < 0 {
			continue
		}
		offsetX := float32(-0.15)
		if pair[0] == "hip_r" {
			offsetX = 0.15
		}
		legs = append(legs, &avatar.Leg{
			Solver:       ik.New(inst, hip, knee, foot, mgl32.Vec3{0, 0, 1}),
			RestOffsetXZ: mgl32.Vec2{offsetX, 0},
		})
	}

	return avatar.New(inst, anim, mgl32.Vec3{0, 0, 0}, 3, legs)
}

func boneIndex(skel *skeleton.Skeleton, name string) int {
	for i, b := range skel.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// logSink is the default FrameSink when no renderer is wired up: it exists
// so the loop has somewhere to hand final matrices without the GL/GLFW
// surface spec.md explicitly excludes.
type logSink struct{}

func (logSink) SubmitFrame(avatarID string, pose avatar.Snapshot, finalMatrices []mgl32.Mat4) {}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
