package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/avatar"
	"github.com/brackenfall/heightworld/internal/ik"
	"github.com/brackenfall/heightworld/internal/pathfinding"
	"github.com/brackenfall/heightworld/internal/skeleton"
	"github.com/brackenfall/heightworld/internal/world"
)

func flatSkeleton() *skeleton.Skeleton {
	return &skeleton.Skeleton{
		Bones: []skeleton.Bone{
			{Name: "root", ParentIndex: -1, InverseBind: mgl32.Ident4(), LocalBindRot: mgl32.QuatIdent(), LocalBindScale: mgl32.Vec3{1, 1, 1}},
		},
	}
}

func newTestAvatar(speed float32) *avatar.Avatar {
	skel := flatSkeleton()
	inst := skeleton.NewInstance(skel)
	anim := skeleton.NewAnimator(inst)
	return avatar.New(inst, anim, mgl32.Vec3{0, 0, 0}, speed, nil)
}

type stubSink struct {
	mu    sync.Mutex
	calls int
}

func (s *stubSink) SubmitFrame(avatarID string, pose avatar.Snapshot, finalMatrices []mgl32.Mat4) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestLoopTickMovesAvatarAndNotifiesSink(t *testing.T) {
	sink := &stubSink{}
	l := New(nil, nil, nil, sink, time.Millisecond)

	a := newTestAvatar(2)
	a.SetPath(&pathfinding.Path{Waypoints: []mgl32.Vec3{{10, 0, 0}}})
	l.AddAvatar("hero", a)

	l.Tick(time.Second)

	snap := a.Snapshot()
	if snap.Position.X() < 1.9 || snap.Position.X() > 2.1 {
		t.Fatalf("position.X after a 1s tick at 2 m/s = %v, want ~2", snap.Position.X())
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d frames, want 1", sink.count())
	}
}

func TestLoopRemoveAvatarStopsTicking(t *testing.T) {
	l := New(nil, nil, nil, nil, time.Millisecond)
	a := newTestAvatar(2)
	a.SetPath(&pathfinding.Path{Waypoints: []mgl32.Vec3{{10, 0, 0}}})
	l.AddAvatar("hero", a)
	l.RemoveAvatar("hero")

	l.Tick(time.Second)

	snap := a.Snapshot()
	if snap.Position.Len() > 1e-9 {
		t.Fatalf("removed avatar still moved: %v", snap.Position)
	}
}

func TestLoopStartClampsOversizedAndZeroDeltas(t *testing.T) {
	sink := &stubSink{}
	l := New(nil, nil, nil, sink, 10*time.Millisecond)
	a := newTestAvatar(1)
	a.SetPath(&pathfinding.Path{Waypoints: []mgl32.Vec3{{10, 0, 0}}})
	l.AddAvatar("hero", a)

	base := time.Unix(0, 0)
	l.now = func() time.Time { return base }

	times := []time.Time{
		base.Add(l.tick),
		base.Add(l.tick),      // zero delta relative to the previous -> clamp
		base.Add(20 * l.tick), // oversized delta -> clamp
	}
	tickerChan := make(chan time.Time, len(times))
	for _, tm := range times {
		tickerChan <- tm
	}
	l.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return tickerChan, func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go l.Start(ctx)

	deadline := time.After(time.Second)
	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()
	for sink.count() < len(times) {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("loop did not emit %d ticks, got %d", len(times), sink.count())
		case <-poll.C:
		}
	}
	cancel()

	// Each of the three ticks advances by one clamped 10ms step at 1 m/s;
	// the raw deltas (10ms, 0, 190ms) would move the avatar 0.2 m.
	if x := a.Snapshot().Position.X(); x < 0.029 || x > 0.031 {
		t.Fatalf("position.X after three clamped ticks = %v, want ~0.03", x)
	}
}

func TestSetDebugFlagsPropagatesFootIKToAvatars(t *testing.T) {
	// Avatar.Tick skips foot IK for a nil world whatever the flag says, so
	// the loop gets a real (chunkless) world: only the propagated flag can
	// then keep the leg solver from writing the root bone's local rotation.
	w, err := world.NewChunkedWorld(1, 1, 64, -32, -32)
	if err != nil {
		t.Fatalf("NewChunkedWorld() error = %v", err)
	}
	l := New(w, nil, nil, nil, time.Millisecond)
	inst := skeleton.NewInstance(flatSkeleton())
	anim := skeleton.NewAnimator(inst)
	leg := &avatar.Leg{Solver: ik.New(inst, 0, 0, 0, mgl32.Vec3{0, 0, 1})}
	a := avatar.New(inst, anim, mgl32.Vec3{0, 0, 0}, 1, []*avatar.Leg{leg})
	l.AddAvatar("hero", a)

	l.SetDebugFlags(DebugFlags{FootIK: false})

	before := inst.Locals()[0].Rot
	l.Tick(time.Millisecond)
	if after := inst.Locals()[0].Rot; after != before {
		t.Fatalf("root rotation changed from %v to %v with FootIK disabled", before, after)
	}
}
