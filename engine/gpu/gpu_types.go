package gpu

// BufferTarget selects a buffer binding point.
type BufferTarget int

const (
	// BufferTargetArray is ARRAY_BUFFER (vertex and instance data).
	BufferTargetArray BufferTarget = iota
	// BufferTargetElementArray is ELEMENT_ARRAY_BUFFER (index data, vertex array state).
	BufferTargetElementArray
	// BufferTargetUniform is UNIFORM_BUFFER.
	BufferTargetUniform
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetArray:
		return "ARRAY_BUFFER"
	case BufferTargetElementArray:
		return "ELEMENT_ARRAY_BUFFER"
	case BufferTargetUniform:
		return "UNIFORM_BUFFER"
	default:
		return "UNKNOWN_TARGET"
	}
}

// BufferUsage is the usage hint passed with BufferData.
type BufferUsage int

const (
	UsageStaticDraw BufferUsage = iota
	UsageDynamicDraw
	UsageStreamDraw
	UsageStaticRead
)

func (u BufferUsage) String() string {
	switch u {
	case UsageStaticDraw:
		return "STATIC_DRAW"
	case UsageDynamicDraw:
		return "DYNAMIC_DRAW"
	case UsageStreamDraw:
		return "STREAM_DRAW"
	case UsageStaticRead:
		return "STATIC_READ"
	default:
		return "UNKNOWN_USAGE"
	}
}

// DataType is a vertex attribute component type or an index type.
type DataType int

const (
	TypeByte DataType = iota
	TypeUnsignedByte
	TypeShort
	TypeUnsignedShort
	TypeUnsignedInt
	TypeFloat
)

// Size returns the byte size of one component.
func (d DataType) Size() int {
	switch d {
	case TypeByte, TypeUnsignedByte:
		return 1
	case TypeShort, TypeUnsignedShort:
		return 2
	case TypeUnsignedInt, TypeFloat:
		return 4
	default:
		return 0
	}
}

func (d DataType) String() string {
	switch d {
	case TypeByte:
		return "BYTE"
	case TypeUnsignedByte:
		return "UNSIGNED_BYTE"
	case TypeShort:
		return "SHORT"
	case TypeUnsignedShort:
		return "UNSIGNED_SHORT"
	case TypeUnsignedInt:
		return "UNSIGNED_INT"
	case TypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN_TYPE"
	}
}

// DrawMode is a primitive topology.
type DrawMode int

const (
	ModePoints DrawMode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// FrontFace is the winding considered front facing.
type FrontFace int

const (
	// FrontFaceCCW is counter-clockwise winding, the GL default.
	FrontFaceCCW FrontFace = iota
	// FrontFaceCW is clockwise winding, used for mirrored transforms.
	FrontFaceCW
)

func (f FrontFace) String() string {
	if f == FrontFaceCW {
		return "CW"
	}
	return "CCW"
}

// TextureFormat is the internal format of a texture.
type TextureFormat int

const (
	// FormatRGBA8 stores linear data (normal, metallic-roughness, occlusion).
	FormatRGBA8 TextureFormat = iota
	// FormatSRGB8Alpha8 stores sRGB encoded color (base color, emissive).
	FormatSRGB8Alpha8
)

// Filter is a sampler filter mode.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

// Wrap is a sampler wrap mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// ShaderStage is a shader object type.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// ClearMask selects framebuffer attachments for Clear.
type ClearMask int

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// Capability is a toggleable pipeline capability.
type Capability int

const (
	CapDepthTest Capability = iota
	CapCullFace
)

// CompareFunc is a depth comparison.
type CompareFunc int

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareAlways
)
