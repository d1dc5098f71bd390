package shader

// Vertex attribute locations shared by the loader, the batcher and the GLSL sources.
const (
	AttribPosition  uint32 = 0
	AttribNormal    uint32 = 1
	AttribTangent   uint32 = 2
	AttribTexCoord0 uint32 = 3
	AttribTexCoord1 uint32 = 4
	AttribColor0    uint32 = 5

	// AttribModelTransform is the first of four consecutive locations holding the columns of the
	// per-instance model matrix.
	AttribModelTransform uint32 = 6
)

// Texture units of the five material slots.
const (
	UnitBaseColor         uint32 = 0
	UnitMetallicRoughness uint32 = 1
	UnitNormal            uint32 = 2
	UnitOcclusion         uint32 = 3
	UnitEmissive          uint32 = 4
)

// MaterialBlockBinding is the uniform buffer binding point of the Material block.
const MaterialBlockBinding uint32 = 0

// MaterialBlockName is the name of the material uniform block in the fragment source.
const MaterialBlockName = "Material"

// InstanceSlots returns the four attribute locations of the model transform columns.
//
// Returns:
//   - [4]uint32: consecutive locations starting at AttribModelTransform
func InstanceSlots() [4]uint32 {
	return [4]uint32{AttribModelTransform, AttribModelTransform + 1, AttribModelTransform + 2, AttribModelTransform + 3}
}

// samplerUniforms are the sampler uniform names in texture unit order.
var samplerUniforms = [...]string{
	UnitBaseColor:         "baseColorTexture",
	UnitMetallicRoughness: "metallicRoughnessTexture",
	UnitNormal:            "normalTexture",
	UnitOcclusion:         "occlusionTexture",
	UnitEmissive:          "emissiveTexture",
}
