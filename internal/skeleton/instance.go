package skeleton

import "github.com/go-gl/mathgl/mgl32"

// Instance is one avatar's runtime skeleton state. The bind-pose data in
// Skeleton is immutable and shared; Instance holds the per-avatar working
// set the Animator samples into and TwoBoneIK edits in place before final
// composition (spec.md 5: "the Skeleton's globalTransforms and
// finalMatrices are owned by the Skeleton and written by the Animator and
// TwoBoneIK during composition"). Reading Globals/FinalMatrices from
// outside a composition pass is only safe between ticks.
type Instance struct {
	skel    *Skeleton
	locals  []BoneTransform
	globals []mgl32.Mat4
	final   []mgl32.Mat4
}

// NewInstance seeds a runtime instance at its skeleton's bind pose.
func NewInstance(skel *Skeleton) *Instance {
	locals := make([]BoneTransform, len(skel.Bones))
	for i, b := range skel.Bones {
		locals[i] = BoneTransform{Pos: b.LocalBindPos, Rot: b.LocalBindRot, Scale: b.LocalBindScale}
	}
	inst := &Instance{
		skel:    skel,
		locals:  locals,
		globals: make([]mgl32.Mat4, len(skel.Bones)),
		final:   make([]mgl32.Mat4, len(skel.Bones)),
	}
	inst.ComposeGlobals()
	return inst
}

// Skeleton returns the bind-pose asset this instance was built from.
func (inst *Instance) Skeleton() *Skeleton { return inst.skel }

// Locals exposes the current local TRS per bone for editing — the Animator
// writes sampled poses here; TwoBoneIK edits specific bones' rotations here
// between a ComposeGlobals call and the final recompose (spec.md 4.7.2).
func (inst *Instance) Locals() []BoneTransform { return inst.locals }

// Globals returns the last-composed global (model-space) transform per bone.
func (inst *Instance) Globals() []mgl32.Mat4 { return inst.globals }

// FinalMatrices returns the last-composed skinning matrix per bone:
// Final[b] = Global[b] * InverseBind[b].
func (inst *Instance) FinalMatrices() []mgl32.Mat4 { return inst.final }

// ComposeGlobals rebuilds globals and final matrices from the current
// locals, in bone order (spec.md 4.6.4: bone i's parent index is always <
// i, so a single forward pass is already topological).
func (inst *Instance) ComposeGlobals() {
	for i, bone := range inst.skel.Bones {
		local := inst.locals[i].Mat4()
		if bone.ParentIndex < 0 {
			inst.globals[i] = local
		} else {
			inst.globals[i] = inst.globals[bone.ParentIndex].Mul4(local)
		}
		inst.final[i] = inst.globals[i].Mul4(bone.InverseBind)
	}
}

// GlobalPosition returns the model-space translation column of a bone's
// current global transform.
func (inst *Instance) GlobalPosition(bone int) mgl32.Vec3 {
	m := inst.globals[bone]
	return mgl32.Vec3{m[12], m[13], m[14]}
}
