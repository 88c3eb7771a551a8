// Package game drives the per-tick ordering between the terrain,
// pathfinding, and skeletal-runtime subsystems: one ticker-driven loop that
// moves avatars along their planned paths and advances their animation and
// foot IK in the strict order spec.md §5 requires.
package game

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/avatar"
	"github.com/brackenfall/heightworld/internal/pathfinding"
	"github.com/brackenfall/heightworld/internal/world"
)

// tickerFactory and timeSource are injection points for deterministic
// tests, mirroring chunk-server/internal/server/movement.go's
// movementEngine.
type tickerFactory func(time.Duration) (<-chan time.Time, func())

type timeSource func() time.Time

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// FrameSink receives the per-avatar render state the embedding application
// (renderer/UI) consumes each tick — the minimal interface spec.md §1
// describes handing off matrices/waypoints to external collaborators.
type FrameSink interface {
	SubmitFrame(avatarID string, pose avatar.Snapshot, finalMatrices []mgl32.Mat4)
}

// Loop is the single-threaded cooperative gameplay loop (spec.md §5:
// "Single-threaded cooperative. ... No subsystem ... spawns threads").
// Unlike its teacher movementEngine, which fans work across worker
// goroutines, Loop runs every avatar's tick on the one goroutine that calls
// Start, since planning's scratch buffers and the Skeleton's composed
// matrices are process-wide, exclusive, and not safe for concurrent tick
// ordering (spec.md §5 "Shared-resource policy").
type Loop struct {
	world   *world.ChunkedWorld
	planner *pathfinding.WindowPlanner
	smoother *pathfinding.PathSmoother
	metrics *pathfinding.PlannerMetrics

	avatars map[string]*avatar.Avatar
	sink    FrameSink
	debug   DebugFlags

	tick      time.Duration
	newTicker tickerFactory
	now       timeSource
}

// New builds a Loop bound to the given world, planner, and smoother.
// Avatars are registered with AddAvatar before Start.
func New(w *world.ChunkedWorld, planner *pathfinding.WindowPlanner, smoother *pathfinding.PathSmoother, sink FrameSink, tick time.Duration) *Loop {
	if tick <= 0 {
		tick = 33 * time.Millisecond
	}
	return &Loop{
		world:     w,
		planner:   planner,
		smoother:  smoother,
		avatars:   make(map[string]*avatar.Avatar),
		sink:      sink,
		debug:     DebugFlags{FootIK: true},
		tick:      tick,
		newTicker: defaultTickerFactory(),
		now:       time.Now,
	}
}

// AddAvatar registers an avatar under id for Tick/Start to drive.
func (l *Loop) AddAvatar(id string, a *avatar.Avatar) {
	l.avatars[id] = a
}

// RemoveAvatar unregisters an avatar, e.g. on despawn.
func (l *Loop) RemoveAvatar(id string) {
	delete(l.avatars, id)
}

// SetMetrics attaches a PlannerMetrics sink for RequestPath to report into.
func (l *Loop) SetMetrics(metrics *pathfinding.PlannerMetrics) {
	l.metrics = metrics
}

// SetDebugFlags replaces the diagnostic overlay toggles (spec.md §6.7).
func (l *Loop) SetDebugFlags(flags DebugFlags) {
	l.debug = flags
	for _, a := range l.avatars {
		a.SetFootIKEnabled(flags.FootIK)
	}
}

// RequestPath plans and smooths a path for avatarID, superseding whatever
// path it was following (spec.md §5: "ordering for one planning call:
// setup_window -> A* -> reconstruct -> smooth"). This runs out-of-band of
// Tick, on whatever goroutine the caller (e.g. an input handler) is on —
// planning shares no mutable state with Tick besides the planner's own
// scratch buffers, which are exclusive to it per spec.md §5.
func (l *Loop) RequestPath(ctx context.Context, avatarID string, goal mgl32.Vec3) error {
	a, ok := l.avatars[avatarID]
	if !ok {
		return nil
	}
	start := a.Snapshot().Position
	path, err := l.planner.FindPath(ctx, l.world, start, goal, l.metrics)
	if err != nil {
		return err
	}
	if l.smoother != nil {
		path = l.smoother.Smooth(l.world, path)
	}
	a.SetPath(path)
	return nil
}

// Tick runs one frame for every registered avatar and hands the result to
// the FrameSink: per avatar, Avatar.Tick already enforces "advance animator
// -> sample -> compose globals -> apply IK deltas -> recompose globals";
// Loop's job is only to run that for every avatar and forward the final
// matrix palette (spec.md §5's per-tick ordering, in full).
func (l *Loop) Tick(dt time.Duration) {
	seconds := float32(dt.Seconds())
	for id, a := range l.avatars {
		a.Tick(seconds, l.world)
		if l.sink == nil {
			continue
		}
		snap := a.Snapshot()
		var matrices []mgl32.Mat4
		if anim := a.Animator(); anim != nil {
			matrices = anim.FinalMatrixPalette()
		}
		l.sink.SubmitFrame(id, snap, matrices)
	}
}

// Start runs the loop until ctx is cancelled, ticking on the interval Loop
// was built with. It blocks; callers typically run it in its own
// goroutine.
func (l *Loop) Start(ctx context.Context) {
	if l.newTicker == nil {
		l.newTicker = defaultTickerFactory()
	}
	if l.now == nil {
		l.now = time.Now
	}

	tickerC, stop := l.newTicker(l.tick)
	defer stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tickerC:
			delta := now.Sub(last)
			if delta <= 0 {
				delta = l.tick
			} else if delta > 10*l.tick {
				delta = l.tick
			}
			last = now
			l.Tick(delta)
		}
	}
}
