package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestComposeTRSDefaultsIsIdentity(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Ident4(), m)
}

func TestComposeTRSOrder(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	m := ComposeTRS(mgl32.Vec3{10, 0, 0}, rot, mgl32.Vec3{2, 2, 2})

	// scale, then rotate +x onto +y, then translate
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 10, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 0, p.Z(), 1e-5)
}

func TestQuatFromXYZW(t *testing.T) {
	q := QuatFromXYZW([4]float32{0, 0, 0, 1})
	assert.Equal(t, mgl32.QuatIdent(), q)
}

func TestIsMirrored(t *testing.T) {
	assert.False(t, IsMirrored(mgl32.Ident4()))
	assert.True(t, IsMirrored(mgl32.Scale3D(-1, 1, 1)))
	assert.False(t, IsMirrored(mgl32.Scale3D(-1, -1, 1)))
}

func TestReversedZPerspectiveDepth(t *testing.T) {
	proj := ReversedZPerspective(mgl32.DegToRad(74), 1, 0.3, 100)

	depth := func(dist float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, -dist, 1})
		ndc := clip.Z() / clip.W()
		return ndc*0.5 + 0.5
	}
	assert.InDelta(t, 1, depth(0.3), 1e-4)
	assert.InDelta(t, 0, depth(100), 1e-4)
	assert.Greater(t, depth(1), depth(10))
}

func TestMipLevelCount(t *testing.T) {
	assert.Equal(t, 1, MipLevelCount(1, 1))
	assert.Equal(t, 1, MipLevelCount(64, 1))
	assert.Equal(t, 3, MipLevelCount(4, 4))
	assert.Equal(t, 3, MipLevelCount(4, 7))
	assert.Equal(t, 11, MipLevelCount(1024, 2048))
	assert.Equal(t, 2, MipLevelCount(8, 2))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 256))
	assert.Equal(t, 256, AlignUp(1, 256))
	assert.Equal(t, 256, AlignUp(256, 256))
	assert.Equal(t, 7, AlignUp(7, 1))
	assert.Equal(t, uint32(8), AlignUp(uint32(5), 4))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
