// gltf_types.go contains the glTF 2.0 JSON schema subset the loader reads.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import "github.com/Carmen-Shannon/oxy-gl/engine/gpu"

// gltfDocument is the root object of a glTF document.
type gltfDocument struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       *int             `json:"scene,omitempty"`
	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Textures    []gltfTexture    `json:"textures,omitempty"`
	Images      []gltfImage      `json:"images,omitempty"`
	Samplers    []gltfSampler    `json:"samplers,omitempty"`
	Animations  []gltfAnimation  `json:"animations,omitempty"`

	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

type gltfAsset struct {
	// Version must start with "2.".
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode is a node of the hierarchy. Matrix, when present, wins over translation, rotation and scale.
type gltfNode struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	// Rotation is an xyzw quaternion.
	Rotation *[4]float32 `json:"rotation,omitempty"`
	Scale    *[3]float32 `json:"scale,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive is one draw of a mesh. Attributes map a semantic to an accessor index.
type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	// Mode is the topology, 4 (TRIANGLES) when absent.
	Mode *int `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView,omitempty"`
	ByteOffset    int    `json:"byteOffset,omitempty"`
	ComponentType int    `json:"componentType"`
	Normalized    bool   `json:"normalized,omitempty"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	// Sparse is only detected so it can be rejected.
	Sparse *struct {
		Count int `json:"count"`
	} `json:"sparse,omitempty"`
}

// ComponentType constants
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
)

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	// URI names a resource or is a base64 data URI. Buffer 0 of a GLB leaves it empty.
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	// Data is filled in by the parser.
	Data []byte `json:"-"`
}

// gltfMaterial is the metallic-roughness material model with its auxiliary maps.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *gltfNormalTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *gltfOcclusionTextureInfo `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *gltfTextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32               `json:"emissiveFactor,omitempty"`
}

type gltfPbrMetallicRoughness struct {
	BaseColorFactor          *[4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float32         `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float32         `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *gltfTextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// gltfTextureInfo references a texture and the texture coordinate set it samples with.
type gltfTextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

type gltfNormalTextureInfo struct {
	gltfTextureInfo
	Scale *float32 `json:"scale,omitempty"`
}

type gltfOcclusionTextureInfo struct {
	gltfTextureInfo
	Strength *float32 `json:"strength,omitempty"`
}

type gltfTexture struct {
	Sampler *int `json:"sampler,omitempty"`
	Source  *int `json:"source,omitempty"`
}

// gltfImage is either a URI (resource name or data URI) or a buffer view with a MIME type.
type gltfImage struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

type gltfSampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}

// Sampler filter constants
const (
	gltfFilterNearest              = 9728
	gltfFilterLinear               = 9729
	gltfFilterNearestMipmapNearest = 9984
	gltfFilterLinearMipmapNearest  = 9985
	gltfFilterNearestMipmapLinear  = 9986
	gltfFilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants
const (
	gltfWrapClampToEdge    = 33071
	gltfWrapMirroredRepeat = 33648
	gltfWrapRepeat         = 10497
)

type gltfAnimation struct {
	Name     string            `json:"name,omitempty"`
	Channels []gltfAnimChannel `json:"channels"`
	Samplers []gltfAnimSampler `json:"samplers"`
}

type gltfAnimChannel struct {
	Sampler int            `json:"sampler"`
	Target  gltfAnimTarget `json:"target"`
}

type gltfAnimTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

type gltfAnimSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"`
}

// Animation interpolation constants
const (
	gltfAnimInterpolationLinear      = "LINEAR"
	gltfAnimInterpolationStep        = "STEP"
	gltfAnimInterpolationCubicSpline = "CUBICSPLINE"
)

// Animation path constants
const (
	gltfAnimPathTranslation = "translation"
	gltfAnimPathRotation    = "rotation"
	gltfAnimPathScale       = "scale"
	gltfAnimPathWeights     = "weights"
)

// gltfGLBHeader is the 12-byte header of a GLB container.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// GLB magic number and chunk type constants
const (
	gltfGLBMagic     = 0x46546C67 // "glTF"
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0"
)

// gltfComponentType maps an accessor component type to the driver data type.
func gltfComponentType(componentType int) (gpu.DataType, bool) {
	switch componentType {
	case gltfComponentTypeByte:
		return gpu.TypeByte, true
	case gltfComponentTypeUnsignedByte:
		return gpu.TypeUnsignedByte, true
	case gltfComponentTypeShort:
		return gpu.TypeShort, true
	case gltfComponentTypeUnsignedShort:
		return gpu.TypeUnsignedShort, true
	case gltfComponentTypeUnsignedInt:
		return gpu.TypeUnsignedInt, true
	case gltfComponentTypeFloat:
		return gpu.TypeFloat, true
	default:
		return 0, false
	}
}

// gltfAccessorTypeComponentCount returns the number of components of the accessor types the loader
// accepts, 0 for every other type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	default:
		return 0
	}
}

func gltfFilter(v *int, fallback gpu.Filter) gpu.Filter {
	if v == nil {
		return fallback
	}
	switch *v {
	case gltfFilterNearest:
		return gpu.FilterNearest
	case gltfFilterLinear:
		return gpu.FilterLinear
	case gltfFilterNearestMipmapNearest:
		return gpu.FilterNearestMipmapNearest
	case gltfFilterLinearMipmapNearest:
		return gpu.FilterLinearMipmapNearest
	case gltfFilterNearestMipmapLinear:
		return gpu.FilterNearestMipmapLinear
	case gltfFilterLinearMipmapLinear:
		return gpu.FilterLinearMipmapLinear
	default:
		return fallback
	}
}

func gltfWrap(v *int) gpu.Wrap {
	if v == nil {
		return gpu.WrapRepeat
	}
	switch *v {
	case gltfWrapClampToEdge:
		return gpu.WrapClampToEdge
	case gltfWrapMirroredRepeat:
		return gpu.WrapMirroredRepeat
	default:
		return gpu.WrapRepeat
	}
}
