// Package avatar drives the player-controlled character: following a
// planned Path at a fixed speed, advancing its animator, and overlaying
// per-leg foot IK against the terrain it stands on.
package avatar

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/ik"
	"github.com/brackenfall/heightworld/internal/pathfinding"
	"github.com/brackenfall/heightworld/internal/skeleton"
	"github.com/brackenfall/heightworld/internal/world"
)

// arriveEpsilon is how close (meters) the avatar must get to a waypoint
// before it advances to the next one.
const arriveEpsilon = 0.05

// Leg binds a TwoBoneIK solver to a resting foot offset in the avatar's own
// facing-relative frame (spec.md 4.7: "per-leg" IK).
type Leg struct {
	Solver       *ik.TwoBoneIK
	RestOffsetXZ mgl32.Vec2 // offset from the avatar's position, in its own facing frame
}

// Avatar is one player-controlled character's runtime state. Position,
// facing, and the active path are mutex-guarded the way the teacher's
// entity state is (chunk-server/internal/entities/entity.go), since the
// render loop and gameplay tick may read a Snapshot independently of the
// tick that mutates it.
type Avatar struct {
	mu sync.RWMutex

	position mgl32.Vec3
	facingYaw float32 // radians, 0 = +Z
	speed    float32  // meters/second

	path          *pathfinding.Path
	waypointIndex int

	animator  *skeleton.Animator
	instance  *skeleton.Instance
	legs      []*Leg
	footIK    bool
}

// Snapshot is an immutable, race-free copy of an Avatar's pose for render
// or debug-overlay consumption.
type Snapshot struct {
	Position      mgl32.Vec3
	FacingYaw     float32
	HasPath       bool
	WaypointIndex int
	WaypointCount int
}

// New builds an Avatar at position, driving instance/animator and with no
// active path. legs should already be constructed against instance via
// ik.New so their cached bind lengths match.
func New(instance *skeleton.Instance, animator *skeleton.Animator, position mgl32.Vec3, speed float32, legs []*Leg) *Avatar {
	return &Avatar{
		position: position,
		speed:    speed,
		instance: instance,
		animator: animator,
		legs:     legs,
		footIK:   true,
	}
}

// SetPath installs a newly planned path, superseding whatever was being
// followed (spec.md 5: "a new path request supersedes the previous").
func (a *Avatar) SetPath(path *pathfinding.Path) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.path = path
	a.waypointIndex = 0
}

// SetFootIKEnabled toggles the diagnostic foot-IK overlay (spec.md 6.7).
func (a *Avatar) SetFootIKEnabled(enabled bool) {
	a.mu.Lock()
	a.footIK = enabled
	a.mu.Unlock()
}

// Snapshot copies the avatar's current pose for a reader that must not
// observe a tick in progress.
func (a *Avatar) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Snapshot{Position: a.position, FacingYaw: a.facingYaw, WaypointIndex: a.waypointIndex}
	if a.path != nil {
		s.HasPath = true
		s.WaypointCount = len(a.path.Waypoints)
	}
	return s
}

// Animator exposes the driving Animator for external Play/PlayByName calls.
func (a *Avatar) Animator() *skeleton.Animator { return a.animator }

// Tick runs one gameplay frame's avatar update: follow the path, advance
// the animator, then overlay foot IK sampled from w (spec.md 5's per-tick
// ordering: "advance animator -> sample -> compose globals -> apply IK
// deltas -> recompose globals").
func (a *Avatar) Tick(dt float32, w *world.ChunkedWorld) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.followPath(dt)

	if a.animator != nil {
		a.animator.Advance(dt) // samples + composes globals internally
	}

	if a.footIK && w != nil {
		a.applyFootIK(w)
	}
}

func (a *Avatar) followPath(dt float32) {
	if a.path == nil || a.waypointIndex >= len(a.path.Waypoints) {
		return
	}
	remaining := a.speed * dt
	for remaining > 0 && a.waypointIndex < len(a.path.Waypoints) {
		target := a.path.Waypoints[a.waypointIndex]
		toTarget := target.Sub(a.position)
		toTarget[1] = 0 // follow the XZ plane; height comes from the terrain sample
		dist := toTarget.Len()
		if dist <= arriveEpsilon {
			a.waypointIndex++
			continue
		}
		if dist > 0 {
			a.facingYaw = float32(math.Atan2(float64(toTarget.X()), float64(toTarget.Z())))
		}
		if remaining >= dist {
			a.position[0] = target.X()
			a.position[2] = target.Z()
			remaining -= dist
			a.waypointIndex++
			continue
		}
		step := toTarget.Normalize().Mul(remaining)
		a.position = a.position.Add(step)
		remaining = 0
	}
}

// applyFootIK plants each leg's target on the terrain beneath its resting
// offset, converting from world space to the avatar's model space before
// calling TwoBoneIK.Apply (spec.md 4.7.2 expects a model-space target).
func (a *Avatar) applyFootIK(w *world.ChunkedWorld) {
	worldToModel := a.worldTransform().Inv()
	for _, leg := range a.legs {
		footWorldXZ := a.facingRelativeWorldXZ(leg.RestOffsetXZ)
		groundY := w.HeightAt(footWorldXZ.X(), footWorldXZ.Y())
		targetWorld4 := mgl32.Vec4{footWorldXZ.X(), groundY, footWorldXZ.Y(), 1}
		targetModel4 := worldToModel.Mul4x1(targetWorld4)
		leg.Solver.SetTarget(mgl32.Vec3{targetModel4[0], targetModel4[1], targetModel4[2]})
		leg.Solver.Apply(a.instance)
	}
	a.instance.ComposeGlobals()
}

// worldTransform is the avatar's position/yaw as a model-to-world matrix.
func (a *Avatar) worldTransform() mgl32.Mat4 {
	return mgl32.Translate3D(a.position.X(), a.position.Y(), a.position.Z()).
		Mul4(mgl32.HomogRotate3DY(a.facingYaw))
}

// facingRelativeWorldXZ rotates a facing-relative (x,z) offset by the
// avatar's yaw and translates it to world space.
func (a *Avatar) facingRelativeWorldXZ(offset mgl32.Vec2) mgl32.Vec2 {
	sinYaw, cosYaw := float32(math.Sin(float64(a.facingYaw))), float32(math.Cos(float64(a.facingYaw)))
	worldX := a.position.X() + offset.X()*cosYaw + offset.Y()*sinYaw
	worldZ := a.position.Z() - offset.X()*sinYaw + offset.Y()*cosYaw
	return mgl32.Vec2{worldX, worldZ}
}
