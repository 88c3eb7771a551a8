package skeleton

import "github.com/go-gl/mathgl/mgl32"

// sampleInto fills out (one BoneTransform per bone) with the animation's
// pose at time t (spec.md 4.6.2). Locates the keyframe pair (k0, k1) with
// t0 <= t < t1; past the last keyframe both are the last. alpha is 0 for a
// degenerate (zero-length) interval.
func sampleInto(anim *Animation, t float32, out []BoneTransform) {
	frames := anim.Keyframes
	k0, k1 := frames[0], frames[len(frames)-1]
	alpha := float32(0)

	if t <= frames[0].Time {
		k0, k1 = frames[0], frames[0]
	} else if t >= frames[len(frames)-1].Time {
		k0, k1 = frames[len(frames)-1], frames[len(frames)-1]
	} else {
		for i := 0; i < len(frames)-1; i++ {
			if frames[i].Time <= t && t < frames[i+1].Time {
				k0, k1 = frames[i], frames[i+1]
				span := k1.Time - k0.Time
				if span > 0 {
					alpha = (t - k0.Time) / span
				}
				break
			}
		}
	}

	for b := range out {
		out[b] = blendTransform(k0.Poses[b], k1.Poses[b], alpha)
	}
}

// blendTransform lerps position and scale, slerps rotation (spec.md 4.6.2,
// 4.6.3: both the keyframe interpolation and the cross-fade blend use the
// same componentwise rule).
func blendTransform(a, b BoneTransform, alpha float32) BoneTransform {
	return BoneTransform{
		Pos:   lerpVec3(a.Pos, b.Pos, alpha),
		Rot:   mgl32.QuatSlerp(a.Rot, b.Rot, alpha),
		Scale: lerpVec3(a.Scale, b.Scale, alpha),
	}
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
