package skeleton

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/brackenfall/heightworld/internal/ioerr"
)

var skelMagic = [4]byte{'S', 'K', 'E', 'L'}
var meshMagic = [4]byte{'S', 'M', 'S', 'H'}

const nameFieldLen = 32

// rawBoneHeader is the fixed-size portion of one bone record (spec.md 6.4).
type rawBoneHeader struct {
	Name           [nameFieldLen]byte
	ParentIndex    int32
	InverseBind    [16]float32
	LocalBindPos   [3]float32
	LocalBindRot   [4]float32
	LocalBindScale [3]float32
}

// Load reads a SKEL asset. maxBones bounds the bone count against the
// caller's compile-time cap (internal/config SkeletonConfig.MaxBones);
// quatTolerance bounds how far a stored quaternion may sit from unit length
// before the asset is rejected outright rather than silently renormalized
// (spec.md 6.4, 4.6.1).
func Load(r io.Reader, maxBones int, quatTolerance float64) (*Skeleton, error) {
	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: read skeleton magic: %v", ioerr.Malformed, err)
	}
	if magic != skelMagic {
		return nil, fmt.Errorf("%w: bad skeleton magic %q", ioerr.Malformed, magic)
	}

	var boneCount int32
	if err := binary.Read(r, binary.LittleEndian, &boneCount); err != nil {
		return nil, fmt.Errorf("%w: read bone count: %v", ioerr.Malformed, err)
	}
	if boneCount <= 0 || int(boneCount) > maxBones {
		return nil, fmt.Errorf("%w: bone count %d outside (0, %d]", ioerr.Malformed, boneCount, maxBones)
	}

	bones := make([]Bone, boneCount)
	for i := range bones {
		var raw rawBoneHeader
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("%w: read bone %d: %v", ioerr.Malformed, i, err)
		}
		if raw.ParentIndex != -1 && (raw.ParentIndex < 0 || int(raw.ParentIndex) >= i) {
			return nil, fmt.Errorf("%w: bone %d parent index %d must be -1 or < %d", ioerr.Malformed, i, raw.ParentIndex, i)
		}
		rot, err := normalizeQuat(rawQuat(raw.LocalBindRot), quatTolerance)
		if err != nil {
			return nil, fmt.Errorf("%w: bone %d local bind rotation: %v", ioerr.Malformed, i, err)
		}

		var inverseBind mgl32.Mat4
		copy(inverseBind[:], raw.InverseBind[:])

		bones[i] = Bone{
			Name:           cString(raw.Name[:]),
			ParentIndex:    raw.ParentIndex,
			InverseBind:    inverseBind,
			LocalBindPos:   mgl32.Vec3{raw.LocalBindPos[0], raw.LocalBindPos[1], raw.LocalBindPos[2]},
			LocalBindRot:   rot,
			LocalBindScale: mgl32.Vec3{raw.LocalBindScale[0], raw.LocalBindScale[1], raw.LocalBindScale[2]},
		}
	}

	var animCount int32
	if err := binary.Read(r, binary.LittleEndian, &animCount); err != nil {
		return nil, fmt.Errorf("%w: read animation count: %v", ioerr.Malformed, err)
	}
	if animCount < 0 {
		return nil, fmt.Errorf("%w: negative animation count %d", ioerr.Malformed, animCount)
	}

	animations := make([]Animation, animCount)
	for i := range animations {
		anim, err := loadAnimation(r, int(boneCount), quatTolerance)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		animations[i] = anim
	}

	skel := &Skeleton{Bones: bones, Animations: animations}
	skel.indexAnimations()
	return skel, nil
}

func loadAnimation(r io.Reader, boneCount int, quatTolerance float64) (Animation, error) {
	var name [nameFieldLen]byte
	if err := binary.Read(r, binary.LittleEndian, &name); err != nil {
		return Animation{}, fmt.Errorf("%w: read name: %v", ioerr.Malformed, err)
	}
	var duration float32
	if err := binary.Read(r, binary.LittleEndian, &duration); err != nil {
		return Animation{}, fmt.Errorf("%w: read duration: %v", ioerr.Malformed, err)
	}
	var loopByte byte
	if err := binary.Read(r, binary.LittleEndian, &loopByte); err != nil {
		return Animation{}, fmt.Errorf("%w: read loop flag: %v", ioerr.Malformed, err)
	}
	var keyframeCount int32
	if err := binary.Read(r, binary.LittleEndian, &keyframeCount); err != nil {
		return Animation{}, fmt.Errorf("%w: read keyframe count: %v", ioerr.Malformed, err)
	}
	if keyframeCount <= 0 {
		return Animation{}, fmt.Errorf("%w: keyframe count %d must be positive", ioerr.Malformed, keyframeCount)
	}

	keyframes := make([]Keyframe, keyframeCount)
	lastTime := float32(math.Inf(-1))
	for k := range keyframes {
		var t float32
		if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
			return Animation{}, fmt.Errorf("%w: read keyframe %d time: %v", ioerr.Malformed, k, err)
		}
		if t <= lastTime {
			return Animation{}, fmt.Errorf("%w: keyframe %d time %v is not strictly increasing after %v", ioerr.Malformed, k, t, lastTime)
		}
		lastTime = t

		poses := make([]BoneTransform, boneCount)
		for b := range poses {
			var pos, rot, scale [4]float32 // rot uses all 4, pos/scale use the first 3
			if err := binary.Read(r, binary.LittleEndian, pos[:3]); err != nil {
				return Animation{}, fmt.Errorf("%w: keyframe %d bone %d position: %v", ioerr.Malformed, k, b, err)
			}
			if err := binary.Read(r, binary.LittleEndian, rot[:]); err != nil {
				return Animation{}, fmt.Errorf("%w: keyframe %d bone %d rotation: %v", ioerr.Malformed, k, b, err)
			}
			if err := binary.Read(r, binary.LittleEndian, scale[:3]); err != nil {
				return Animation{}, fmt.Errorf("%w: keyframe %d bone %d scale: %v", ioerr.Malformed, k, b, err)
			}
			q, err := normalizeQuat(rawQuat(rot), quatTolerance)
			if err != nil {
				return Animation{}, fmt.Errorf("%w: keyframe %d bone %d rotation: %v", ioerr.Malformed, k, b, err)
			}
			poses[b] = BoneTransform{
				Pos:   mgl32.Vec3{pos[0], pos[1], pos[2]},
				Rot:   q,
				Scale: mgl32.Vec3{scale[0], scale[1], scale[2]},
			}
		}
		keyframes[k] = Keyframe{Time: t, Poses: poses}
	}

	return Animation{
		Name:      cString(name[:]),
		Duration:  duration,
		Loop:      loopByte != 0,
		Keyframes: keyframes,
	}, nil
}

// LoadMesh reads a SMSH skinned-mesh asset (spec.md 6.5).
func LoadMesh(r io.Reader) (*Mesh, error) {
	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: read mesh magic: %v", ioerr.Malformed, err)
	}
	if magic != meshMagic {
		return nil, fmt.Errorf("%w: bad mesh magic %q", ioerr.Malformed, magic)
	}

	var vertexCount, indexCount int32
	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return nil, fmt.Errorf("%w: read vertex count: %v", ioerr.Malformed, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
		return nil, fmt.Errorf("%w: read index count: %v", ioerr.Malformed, err)
	}
	if vertexCount <= 0 || indexCount <= 0 {
		return nil, fmt.Errorf("%w: vertex/index counts must be positive (%d, %d)", ioerr.Malformed, vertexCount, indexCount)
	}

	vertices := make([]Vertex, vertexCount)
	for i := range vertices {
		var pos, normal [3]float32
		var uv [2]float32
		var boneIDs [4]int32
		var weights [4]float32
		if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
			return nil, fmt.Errorf("%w: vertex %d position: %v", ioerr.Malformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &normal); err != nil {
			return nil, fmt.Errorf("%w: vertex %d normal: %v", ioerr.Malformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &uv); err != nil {
			return nil, fmt.Errorf("%w: vertex %d uv: %v", ioerr.Malformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &boneIDs); err != nil {
			return nil, fmt.Errorf("%w: vertex %d bone ids: %v", ioerr.Malformed, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &weights); err != nil {
			return nil, fmt.Errorf("%w: vertex %d bone weights: %v", ioerr.Malformed, i, err)
		}
		vertices[i] = Vertex{
			Pos:        mgl32.Vec3{pos[0], pos[1], pos[2]},
			Normal:     mgl32.Vec3{normal[0], normal[1], normal[2]},
			UV:         mgl32.Vec2{uv[0], uv[1]},
			BoneIDs:    boneIDs,
			BoneWeight: weights,
		}
	}

	indices := make([]uint16, indexCount)
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, fmt.Errorf("%w: read indices: %v", ioerr.Malformed, err)
	}

	return &Mesh{Vertices: vertices, Indices: indices}, nil
}

func rawQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// normalizeQuat renormalizes q (spec.md 4.6.1: "each quaternion is
// renormalized"), rejecting the asset outright if it is far enough from
// unit length that renormalizing would be masking corrupt data rather than
// floating-point noise (spec.md 6.4).
func normalizeQuat(q mgl32.Quat, tolerance float64) (mgl32.Quat, error) {
	norm := math.Sqrt(float64(q.W*q.W + q.V[0]*q.V[0] + q.V[1]*q.V[1] + q.V[2]*q.V[2]))
	if norm == 0 {
		return mgl32.Quat{}, fmt.Errorf("zero-length quaternion")
	}
	if math.Abs(norm-1) > tolerance {
		return mgl32.Quat{}, fmt.Errorf("quaternion norm %v exceeds tolerance %v", norm, tolerance)
	}
	inv := float32(1 / norm)
	return mgl32.Quat{W: q.W * inv, V: q.V.Mul(inv)}, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
