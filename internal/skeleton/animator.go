package skeleton

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Animator drives one Instance's playback: sampling the current animation,
// cross-fading out of a previous one, and recomposing the matrix palette
// every tick (spec.md 4.6.3, 4.6.5). The animator itself never chains
// animations on finish — callers observe Finished() and decide a successor.
type Animator struct {
	inst *Instance

	currentIndex int
	currentTime  float32
	speed        float32
	finished     bool

	previousIndex int
	previousTime  float32
	blendElapsed  float32
	blendDuration float32

	curPoses  []BoneTransform
	prevPoses []BoneTransform
}

// NewAnimator builds an Animator over an existing Instance. No animation is
// playing until Play or PlayByName is called.
func NewAnimator(inst *Instance) *Animator {
	n := len(inst.skel.Bones)
	return &Animator{
		inst:          inst,
		currentIndex:  -1,
		previousIndex: -1,
		speed:         1,
		curPoses:      make([]BoneTransform, n),
		prevPoses:     make([]BoneTransform, n),
	}
}

// Play starts animIndex from time 0. If a different animation is currently
// playing and blend > 0, the outgoing animation becomes the cross-fade
// source over the next blend seconds. Playing the animation already
// current is a no-op (spec.md 4.6.5).
func (a *Animator) Play(animIndex int, blend float32) {
	if animIndex == a.currentIndex {
		return
	}
	if a.currentIndex >= 0 && blend > 0 {
		a.previousIndex = a.currentIndex
		a.previousTime = a.currentTime
		a.blendElapsed = 0
		a.blendDuration = blend
	} else {
		a.previousIndex = -1
	}
	a.currentIndex = animIndex
	a.currentTime = 0
	a.finished = false
}

// PlayByName resolves name against the instance's skeleton before playing.
func (a *Animator) PlayByName(name string, blend float32) error {
	idx := a.inst.skel.AnimationByName(name)
	if idx < 0 {
		return fmt.Errorf("unknown animation %q", name)
	}
	a.Play(idx, blend)
	return nil
}

// SetSpeed scales how fast Advance consumes dt.
func (a *Animator) SetSpeed(speed float32) { a.speed = speed }

// Finished reports whether the current non-looping animation has reached
// its duration and paused.
func (a *Animator) Finished() bool { return a.finished }

// Instance returns the Instance this animator drives, for IK or inspection.
func (a *Animator) Instance() *Instance { return a.inst }

// Advance steps playback by dt, samples the blended pose into the
// instance's locals, and recomposes the matrix palette — the "advance ->
// sample -> compose globals" prefix of the per-tick ordering in spec.md 5.
func (a *Animator) Advance(dt float32) {
	if a.currentIndex < 0 {
		return
	}
	anim := &a.inst.skel.Animations[a.currentIndex]
	a.currentTime = advanceTime(a.currentTime, dt*a.speed, anim.Duration, anim.Loop, &a.finished)
	sampleInto(anim, a.currentTime, a.curPoses)

	if a.previousIndex >= 0 && a.blendElapsed < a.blendDuration {
		prevAnim := &a.inst.skel.Animations[a.previousIndex]
		var prevFinished bool
		a.previousTime = advanceTime(a.previousTime, dt*a.speed, prevAnim.Duration, prevAnim.Loop, &prevFinished)
		sampleInto(prevAnim, a.previousTime, a.prevPoses)

		a.blendElapsed += dt
		alpha := float32(1)
		if a.blendDuration > 0 {
			alpha = a.blendElapsed / a.blendDuration
		}
		if alpha >= 1 {
			alpha = 1
			a.previousIndex = -1
		}
		for b := range a.curPoses {
			a.curPoses[b] = blendTransform(a.prevPoses[b], a.curPoses[b], alpha)
		}
	}

	copy(a.inst.locals, a.curPoses)
	a.inst.ComposeGlobals()
}

// advanceTime implements spec.md 4.6.3's frame-update rule: loop wraps via
// modulo, otherwise clamp to duration and mark finished.
func advanceTime(time, delta, duration float32, loop bool, finished *bool) float32 {
	time += delta
	if time < duration {
		return time
	}
	if loop {
		if duration <= 0 {
			return 0
		}
		return float32(math.Mod(float64(time), float64(duration)))
	}
	*finished = true
	return duration
}

// FinalMatrixPalette returns the instance's composed skinning matrices.
func (a *Animator) FinalMatrixPalette() []mgl32.Mat4 {
	return a.inst.FinalMatrices()
}
