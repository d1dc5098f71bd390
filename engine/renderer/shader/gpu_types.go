package shader

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialUniformSource is the canonical GLSL definition of the Material uniform block.
// Matches GPUMaterialUniform layout exactly (48 bytes, std140 aligned).
//
//go:embed assets/material_block.glsl
var GPUMaterialUniformSource string

//go:embed assets/mesh.vert
var meshVertexSource string

//go:embed assets/mesh.frag
var meshFragmentSource string

// GPUMaterialUniform is the per-material uniform block consumed by the fragment shader.
// Matches the GLSL Material block layout exactly (see GPUMaterialUniformSource).
// Size: 48 bytes (std140).
type GPUMaterialUniform struct {
	BaseColorFactor   [4]float32 // offset 0: linear RGBA multiplier of the base color texture (16 bytes)
	MetallicFactor    float32    // offset 16
	RoughnessFactor   float32    // offset 20
	NormalScale       float32    // offset 24: scale of the tangent-space normal xy
	OcclusionStrength float32    // offset 28
	EmissiveFactor    [4]float32 // offset 32: rgb emissive multiplier, w unused (16 bytes)
}

// DefaultMaterialUniform returns the factors glTF prescribes when a material omits them.
//
// Returns:
//   - GPUMaterialUniform: white base color, metallic and roughness 1, unit normal scale and occlusion strength, no emission
func DefaultMaterialUniform() GPUMaterialUniform {
	return GPUMaterialUniform{
		BaseColorFactor:   [4]float32{1, 1, 1, 1},
		MetallicFactor:    1,
		RoughnessFactor:   1,
		NormalScale:       1,
		OcclusionStrength: 1,
		EmissiveFactor:    [4]float32{0, 0, 0, 1},
	}
}

// Size returns the size of the GPUMaterialUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, 48)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	for i, v := range g.BaseColorFactor {
		put(4*i, v)
	}
	put(16, g.MetallicFactor)
	put(20, g.RoughnessFactor)
	put(24, g.NormalScale)
	put(28, g.OcclusionStrength)
	for i, v := range g.EmissiveFactor {
		put(32+4*i, v)
	}
	return buf
}
