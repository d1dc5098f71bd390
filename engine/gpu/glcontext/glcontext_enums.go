package glcontext

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"

	"github.com/go-gl/gl/v3.3-core/gl"
)

func bufferTarget(t gpu.BufferTarget) uint32 {
	switch t {
	case gpu.BufferTargetElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case gpu.BufferTargetUniform:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func bufferUsage(u gpu.BufferUsage) uint32 {
	switch u {
	case gpu.UsageDynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.UsageStreamDraw:
		return gl.STREAM_DRAW
	case gpu.UsageStaticRead:
		return gl.STATIC_READ
	default:
		return gl.STATIC_DRAW
	}
}

func dataType(d gpu.DataType) uint32 {
	switch d {
	case gpu.TypeByte:
		return gl.BYTE
	case gpu.TypeUnsignedByte:
		return gl.UNSIGNED_BYTE
	case gpu.TypeShort:
		return gl.SHORT
	case gpu.TypeUnsignedShort:
		return gl.UNSIGNED_SHORT
	case gpu.TypeUnsignedInt:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func drawMode(m gpu.DrawMode) uint32 {
	switch m {
	case gpu.ModePoints:
		return gl.POINTS
	case gpu.ModeLines:
		return gl.LINES
	case gpu.ModeLineLoop:
		return gl.LINE_LOOP
	case gpu.ModeLineStrip:
		return gl.LINE_STRIP
	case gpu.ModeTriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.ModeTriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}

func filter(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case gpu.FilterLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case gpu.FilterNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func wrap(w gpu.Wrap) int32 {
	switch w {
	case gpu.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case gpu.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func capability(c gpu.Capability) uint32 {
	if c == gpu.CapCullFace {
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func compareFunc(f gpu.CompareFunc) uint32 {
	switch f {
	case gpu.CompareLessEqual:
		return gl.LEQUAL
	case gpu.CompareGreater:
		return gl.GREATER
	case gpu.CompareGreaterEqual:
		return gl.GEQUAL
	case gpu.CompareAlways:
		return gl.ALWAYS
	default:
		return gl.LESS
	}
}

func errorName(e uint32) string {
	switch e {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("GL error 0x%04X", e)
	}
}
