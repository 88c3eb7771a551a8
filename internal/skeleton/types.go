// Package skeleton implements the binary skeletal-animation asset format,
// keyframe sampling, cross-fade blending, and matrix-palette composition.
package skeleton

import "github.com/go-gl/mathgl/mgl32"

// Bone is one joint in a Skeleton's hierarchy.
type Bone struct {
	Name           string
	ParentIndex    int32 // -1 for the root
	InverseBind    mgl32.Mat4
	LocalBindPos   mgl32.Vec3
	LocalBindRot   mgl32.Quat
	LocalBindScale mgl32.Vec3
}

// BoneTransform is a TRS triple sampled at a point in time, either straight
// from a keyframe or the result of lerp/slerp blending two keyframes
// (spec.md 4.6.2).
type BoneTransform struct {
	Pos   mgl32.Vec3
	Rot   mgl32.Quat
	Scale mgl32.Vec3
}

// Mat4 composes the transform into a column-major 4x4 matrix: rotation as a
// 3x3 basis, columns scaled, translation in the fourth column.
func (t BoneTransform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Pos[0], t.Pos[1], t.Pos[2]).
		Mul4(t.Rot.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Keyframe holds one sampled instant of every bone's transform.
type Keyframe struct {
	Time  float32
	Poses []BoneTransform // indexed by bone
}

// Animation is a named, time-ordered sequence of keyframes.
type Animation struct {
	Name      string
	Duration  float32
	Loop      bool
	Keyframes []Keyframe
}

// Skeleton is an immutable-after-load bind pose plus its library of
// animations.
type Skeleton struct {
	Bones      []Bone
	Animations []Animation
	byName     map[string]int
}

// AnimationByName resolves an animation index by name, or -1 if absent.
func (s *Skeleton) AnimationByName(name string) int {
	if s.byName == nil {
		return -1
	}
	idx, ok := s.byName[name]
	if !ok {
		return -1
	}
	return idx
}

func (s *Skeleton) indexAnimations() {
	s.byName = make(map[string]int, len(s.Animations))
	for i, a := range s.Animations {
		s.byName[a.Name] = i
	}
}

// Mesh is a skinned triangle mesh bound to a Skeleton's bones.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Vertex carries skinning data for up to four influencing bones.
type Vertex struct {
	Pos        mgl32.Vec3
	Normal     mgl32.Vec3
	UV         mgl32.Vec2
	BoneIDs    [4]int32
	BoneWeight [4]float32
}
