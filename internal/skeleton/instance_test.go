package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func simpleTwoBoneSkeleton() *Skeleton {
	skel := &Skeleton{
		Bones: []Bone{
			{Name: "hip", ParentIndex: -1, InverseBind: mgl32.Ident4(), LocalBindPos: mgl32.Vec3{0, 0, 0}, LocalBindRot: mgl32.QuatIdent(), LocalBindScale: mgl32.Vec3{1, 1, 1}},
			{Name: "knee", ParentIndex: 0, InverseBind: mgl32.Translate3D(0, 1, 0).Inv(), LocalBindPos: mgl32.Vec3{0, -1, 0}, LocalBindRot: mgl32.QuatIdent(), LocalBindScale: mgl32.Vec3{1, 1, 1}},
		},
	}
	skel.indexAnimations()
	return skel
}

func TestNewInstanceComposesBindPose(t *testing.T) {
	inst := NewInstance(simpleTwoBoneSkeleton())
	kneePos := inst.GlobalPosition(1)
	if math.Abs(float64(kneePos.Y()+1)) > 1e-5 {
		t.Fatalf("knee global position = %v, want Y=-1", kneePos)
	}
}

func TestComposeGlobalsPropagatesParentTransform(t *testing.T) {
	inst := NewInstance(simpleTwoBoneSkeleton())
	locals := inst.Locals()
	locals[0].Pos = mgl32.Vec3{5, 0, 0}
	inst.ComposeGlobals()

	kneePos := inst.GlobalPosition(1)
	if math.Abs(float64(kneePos.X()-5)) > 1e-5 || math.Abs(float64(kneePos.Y()+1)) > 1e-5 {
		t.Fatalf("knee global position = %v, want (5, -1, 0)", kneePos)
	}
}
