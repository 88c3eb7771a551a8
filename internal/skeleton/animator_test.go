package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func walkCycleSkeleton() *Skeleton {
	skel := &Skeleton{
		Bones: []Bone{
			{Name: "root", ParentIndex: -1, InverseBind: mgl32.Ident4(), LocalBindRot: mgl32.QuatIdent(), LocalBindScale: mgl32.Vec3{1, 1, 1}},
		},
		Animations: []Animation{
			{
				Name: "walk", Duration: 2, Loop: true,
				Keyframes: []Keyframe{
					{Time: 0, Poses: []BoneTransform{{Pos: mgl32.Vec3{0, 0, 0}, Rot: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}}},
					{Time: 2, Poses: []BoneTransform{{Pos: mgl32.Vec3{2, 0, 0}, Rot: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}}},
				},
			},
			{
				Name: "idle", Duration: 2, Loop: false,
				Keyframes: []Keyframe{
					{Time: 0, Poses: []BoneTransform{{Pos: mgl32.Vec3{0, 0, 0}, Rot: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}}},
					{Time: 2, Poses: []BoneTransform{{Pos: mgl32.Vec3{0, 2, 0}, Rot: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}}},
				},
			},
		},
	}
	skel.indexAnimations()
	return skel
}

func TestAnimatorAdvanceSamplesLinearMotion(t *testing.T) {
	skel := walkCycleSkeleton()
	anim := NewAnimator(NewInstance(skel))
	anim.Play(skel.AnimationByName("walk"), 0)

	anim.Advance(1)
	pos := anim.Instance().GlobalPosition(0)
	if math.Abs(float64(pos.X()-1)) > 1e-5 {
		t.Fatalf("mid-animation X = %v, want 1", pos.X())
	}
}

func TestAnimatorLoopsViaModulo(t *testing.T) {
	skel := walkCycleSkeleton()
	anim := NewAnimator(NewInstance(skel))
	anim.Play(skel.AnimationByName("walk"), 0)

	anim.Advance(3) // 1 full loop (duration 2) plus 1 second into the next
	pos := anim.Instance().GlobalPosition(0)
	if math.Abs(float64(pos.X()-1)) > 1e-5 {
		t.Fatalf("looped X = %v, want 1", pos.X())
	}
	if anim.Finished() {
		t.Fatalf("a looping animation should never report Finished")
	}
}

func TestAnimatorClampsAndFinishesNonLooping(t *testing.T) {
	skel := walkCycleSkeleton()
	anim := NewAnimator(NewInstance(skel))
	anim.Play(skel.AnimationByName("idle"), 0)

	anim.Advance(5)
	if !anim.Finished() {
		t.Fatalf("expected a non-looping animation past its duration to be Finished")
	}
	pos := anim.Instance().GlobalPosition(0)
	if math.Abs(float64(pos.Y()-2)) > 1e-5 {
		t.Fatalf("clamped Y = %v, want 2 (the last keyframe)", pos.Y())
	}
}

func TestAnimatorCrossFadeBlendsTowardNewAnimation(t *testing.T) {
	skel := walkCycleSkeleton()
	anim := NewAnimator(NewInstance(skel))
	anim.Play(skel.AnimationByName("walk"), 0)
	anim.Advance(1) // walk is now at X=1

	anim.Play(skel.AnimationByName("idle"), 1) // 1-second cross-fade
	anim.Advance(0.5)                          // halfway through the blend

	// walk keeps advancing as the blend source: t=1.5 of 2 -> X=1.5.
	// idle advances as the blend target: t=0.5 of 2 -> Y=0.5.
	// blendElapsed/blendDuration = 0.5/1 = 0.5, so the result is their midpoint.
	pos := anim.Instance().GlobalPosition(0)
	wantX, wantY := float32(0.75), float32(0.25)
	if math.Abs(float64(pos.X()-wantX)) > 1e-5 {
		t.Fatalf("blended X = %v, want %v", pos.X(), wantX)
	}
	if math.Abs(float64(pos.Y()-wantY)) > 1e-5 {
		t.Fatalf("blended Y = %v, want %v", pos.Y(), wantY)
	}
}

func TestAnimatorPlayByNameRejectsUnknownAnimation(t *testing.T) {
	skel := walkCycleSkeleton()
	anim := NewAnimator(NewInstance(skel))
	if err := anim.PlayByName("nonexistent", 0); err == nil {
		t.Fatalf("expected an error for an unknown animation name")
	}
}
