// Package ik implements the analytic two-bone inverse-kinematics solver used
// to plant an avatar's feet on sampled terrain after animation (spec.md 4.7).
package ik

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/skeleton"
)

const reachEpsilon = 1e-4

// TwoBoneIK solves one hip-knee-foot chain. A leg's solver is stateless
// between ticks except for the cached bind-pose lengths and default pole.
type TwoBoneIK struct {
	hip, knee, foot int

	lenUpper, lenLower float32
	defaultPole        mgl32.Vec3

	target mgl32.Vec3
	pole   mgl32.Vec3
	weight float32
}

// New initializes a TwoBoneIK over three bone indices (hip, knee, foot),
// caching the bind-pose segment lengths and a default forward pole direction
// (spec.md 4.7.1).
func New(inst *skeleton.Instance, hip, knee, foot int, defaultPole mgl32.Vec3) *TwoBoneIK {
	globals := inst.Globals()
	hipPos := globalPos(globals[hip])
	kneePos := globalPos(globals[knee])
	footPos := globalPos(globals[foot])

	return &TwoBoneIK{
		hip:         hip,
		knee:        knee,
		foot:        foot,
		lenUpper:    kneePos.Sub(hipPos).Len(),
		lenLower:    footPos.Sub(kneePos).Len(),
		defaultPole: defaultPole,
		pole:        defaultPole,
		weight:      1,
	}
}

// SetTarget sets the model-space point the foot should reach.
func (k *TwoBoneIK) SetTarget(target mgl32.Vec3) { k.target = target }

// SetPole overrides the default pole direction for the next Apply, e.g. with
// the previous frame's knee direction for continuity (spec.md 4.7.3).
func (k *TwoBoneIK) SetPole(pole mgl32.Vec3) { k.pole = pole }

// SetWeight sets the blend weight in [0,1] applied in Apply.
func (k *TwoBoneIK) SetWeight(weight float32) { k.weight = weight }

// Apply solves the chain against inst's current globals (post-animation-
// sample) and writes the hip/knee local rotations, per spec.md 4.7.2 steps
// A-D. Callers must recompose the instance's globals after calling Apply
// (the caller owns the final matrix-palette recompose, spec.md 5's ordering).
func (k *TwoBoneIK) Apply(inst *skeleton.Instance) {
	if k.weight <= 0 {
		return
	}
	bones := inst.Skeleton().Bones
	locals := inst.Locals()
	globals := inst.Globals()

	hipBone := bones[k.hip]
	hipPos := globalPos(globals[k.hip])
	kneePosCur := globalPos(globals[k.knee])
	footPosCur := globalPos(globals[k.foot])

	// Step A: knee placement.
	toTarget := k.target.Sub(hipPos)
	d := toTarget.Len()
	minReach := absF(k.lenUpper-k.lenLower) + reachEpsilon
	maxReach := k.lenUpper + k.lenLower - reachEpsilon
	if d < minReach {
		d = minReach
	}
	if d > maxReach {
		d = maxReach
	}
	if d <= 0 {
		d = reachEpsilon
	}
	targetDir := toTarget.Normalize()

	cosAlpha := (k.lenUpper*k.lenUpper + d*d - k.lenLower*k.lenLower) / (2 * k.lenUpper * d)
	cosAlpha = clampF(cosAlpha, -1, 1)
	p := k.lenUpper * cosAlpha
	h2 := k.lenUpper*k.lenUpper - p*p
	if h2 < 0 {
		h2 = 0
	}
	h := float32(math.Sqrt(float64(h2)))

	pole := k.pole
	if pole.Len() < 1e-6 {
		pole = k.defaultPole
	}
	ortho := targetDir.Cross(pole)
	if ortho.Len() < 1e-6 {
		ortho = targetDir.Cross(mgl32.Vec3{0, 1, 0})
		if ortho.Len() < 1e-6 {
			ortho = targetDir.Cross(mgl32.Vec3{1, 0, 0})
		}
	}
	ortho = ortho.Normalize()
	kneeDir := ortho.Cross(targetDir).Normalize()

	kneeNew := hipPos.Add(targetDir.Mul(p)).Add(kneeDir.Mul(h))

	// Step B: hip rotation.
	u := kneePosCur.Sub(hipPos).Normalize()
	uPrime := kneeNew.Sub(hipPos).Normalize()
	qDeltaWorld := quatFromVectors(u, uPrime)

	qHipWorld := quatFromMat(globals[k.hip])
	qHipWorldNew := qDeltaWorld.Mul(qHipWorld)

	qParentWorld := mgl32.QuatIdent()
	if hipBone.ParentIndex >= 0 {
		qParentWorld = quatFromMat(globals[hipBone.ParentIndex])
	}
	qHipLocalNew := qParentWorld.Inverse().Mul(qHipWorldNew)
	locals[k.hip].Rot = mgl32.QuatSlerp(locals[k.hip].Rot, qHipLocalNew, k.weight)

	// Step C: propagate the knee global through the edited hip local.
	var hipGlobal mgl32.Mat4
	hipLocal := locals[k.hip].Mat4()
	if hipBone.ParentIndex >= 0 {
		hipGlobal = globals[hipBone.ParentIndex].Mul4(hipLocal)
	} else {
		hipGlobal = hipLocal
	}
	kneeGlobal := hipGlobal.Mul4(locals[k.knee].Mat4())
	kneePosUpdated := globalPos(kneeGlobal)

	// Step D: knee rotation.
	v := footPosCur.Sub(kneePosCur).Normalize()
	vPrime := k.target.Sub(kneePosUpdated).Normalize()
	qKneeDeltaWorld := quatFromVectors(v, vPrime)

	qKneeWorld := quatFromMat(globals[k.knee])
	qKneeWorldNew := qKneeDeltaWorld.Mul(qKneeWorld)
	qKneeLocalNew := quatFromMat(hipGlobal).Inverse().Mul(qKneeWorldNew)
	locals[k.knee].Rot = mgl32.QuatSlerp(locals[k.knee].Rot, qKneeLocalNew, k.weight)

	// Step E (recompose the full palette) is the caller's responsibility,
	// matching spec.md 5's per-tick ordering: apply IK deltas -> recompose.
}

// KneeDirection reports the current hip-to-knee direction in model space,
// useful as next frame's pole for continuity (spec.md 4.7.3).
func (k *TwoBoneIK) KneeDirection(inst *skeleton.Instance) mgl32.Vec3 {
	globals := inst.Globals()
	hipPos := globalPos(globals[k.hip])
	kneePos := globalPos(globals[k.knee])
	dir := kneePos.Sub(hipPos)
	if dir.Len() < 1e-6 {
		return k.defaultPole
	}
	return dir.Normalize()
}

func globalPos(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
