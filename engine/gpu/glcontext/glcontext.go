// package glcontext implements gpu.Context on an OpenGL 3.3 core context through go-gl. The context must be
// current on the calling OS thread before New is called.
package glcontext

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// glContext is the go-gl implementation of gpu.Context.
type glContext struct {
	limits gpu.Limits
}

var _ gpu.Context = &glContext{}

// New loads the GL entry points for the current context and queries its limits.
//
// Returns:
//   - gpu.Context: the driver backed context
//   - error: error if the GL function pointers cannot be loaded
func New() (gpu.Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	c := &glContext{}
	c.limits = gpu.Limits{
		MaxTextureUnits:              c.getInteger(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		MaxUniformBlocks:             c.getInteger(gl.MAX_FRAGMENT_UNIFORM_BLOCKS),
		MaxUniformBlockSize:          c.getInteger(gl.MAX_UNIFORM_BLOCK_SIZE),
		UniformBufferOffsetAlignment: c.getInteger(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT),
		MaxVertexAttribs:             c.getInteger(gl.MAX_VERTEX_ATTRIBS),
	}
	return c, nil
}

// Version returns the driver version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (c *glContext) getInteger(pname uint32) int {
	var v int32
	gl.GetIntegerv(pname, &v)
	c.check("GetIntegerv")
	return int(v)
}

// check panics with the driver error name when debug checks are compiled in.
func (c *glContext) check(op string) {
	if !gpu.DebugChecks {
		return
	}
	if e := gl.GetError(); e != gl.NO_ERROR {
		panic(fmt.Sprintf("gl%s: %s", op, errorName(e)))
	}
}

func (c *glContext) Limits() gpu.Limits {
	return c.limits
}

func (c *glContext) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	c.check("GenBuffers")
	return gpu.Buffer(b)
}

func (c *glContext) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) {
	gl.BindBuffer(bufferTarget(target), uint32(b))
	c.check("BindBuffer")
}

func (c *glContext) BufferData(target gpu.BufferTarget, size int, data []byte, usage gpu.BufferUsage) {
	if len(data) > 0 {
		gl.BufferData(bufferTarget(target), size, gl.Ptr(data), bufferUsage(usage))
	} else {
		gl.BufferData(bufferTarget(target), size, nil, bufferUsage(usage))
	}
	c.check("BufferData")
}

func (c *glContext) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
	c.check("BufferSubData")
}

func (c *glContext) BindBufferRange(target gpu.BufferTarget, index uint32, b gpu.Buffer, offset, size int) {
	gl.BindBufferRange(bufferTarget(target), index, uint32(b), offset, size)
	c.check("BindBufferRange")
}

func (c *glContext) DeleteBuffer(b gpu.Buffer) {
	name := uint32(b)
	gl.DeleteBuffers(1, &name)
	c.check("DeleteBuffers")
}

func (c *glContext) CreateVertexArray() gpu.VertexArray {
	var v uint32
	gl.GenVertexArrays(1, &v)
	c.check("GenVertexArrays")
	return gpu.VertexArray(v)
}

func (c *glContext) BindVertexArray(v gpu.VertexArray) {
	gl.BindVertexArray(uint32(v))
	c.check("BindVertexArray")
}

func (c *glContext) DeleteVertexArray(v gpu.VertexArray) {
	name := uint32(v)
	gl.DeleteVertexArrays(1, &name)
	c.check("DeleteVertexArrays")
}

func (c *glContext) EnableVertexAttribArray(loc uint32) {
	gl.EnableVertexAttribArray(loc)
	c.check("EnableVertexAttribArray")
}

func (c *glContext) VertexAttribPointer(loc uint32, components int, typ gpu.DataType, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(loc, int32(components), dataType(typ), normalized, int32(stride), uintptr(offset))
	c.check("VertexAttribPointer")
}

func (c *glContext) VertexAttribDivisor(loc uint32, divisor uint32) {
	gl.VertexAttribDivisor(loc, divisor)
	c.check("VertexAttribDivisor")
}

func (c *glContext) VertexAttrib4f(loc uint32, x, y, z, w float32) {
	gl.VertexAttrib4f(loc, x, y, z, w)
	c.check("VertexAttrib4f")
}

func (c *glContext) CreateTexture() gpu.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	c.check("GenTextures")
	return gpu.Texture(t)
}

func (c *glContext) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	c.check("ActiveTexture")
}

func (c *glContext) BindTexture(t gpu.Texture) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	c.check("BindTexture")
}

func (c *glContext) TexImage2D(level int, format gpu.TextureFormat, width, height int, pixels []byte) {
	internal := int32(gl.RGBA8)
	if format == gpu.FormatSRGB8Alpha8 {
		internal = gl.SRGB8_ALPHA8
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, int32(level), internal, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	c.check("TexImage2D")
}

func (c *glContext) TexMaxLevel(level int) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(level))
	c.check("TexParameteri")
}

func (c *glContext) DeleteTexture(t gpu.Texture) {
	name := uint32(t)
	gl.DeleteTextures(1, &name)
	c.check("DeleteTextures")
}

func (c *glContext) CreateSampler() gpu.Sampler {
	var s uint32
	gl.GenSamplers(1, &s)
	c.check("GenSamplers")
	return gpu.Sampler(s)
}

func (c *glContext) SamplerParameters(s gpu.Sampler, mag, min gpu.Filter, wrapS, wrapT gpu.Wrap) {
	name := uint32(s)
	gl.SamplerParameteri(name, gl.TEXTURE_MAG_FILTER, filter(mag))
	gl.SamplerParameteri(name, gl.TEXTURE_MIN_FILTER, filter(min))
	gl.SamplerParameteri(name, gl.TEXTURE_WRAP_S, wrap(wrapS))
	gl.SamplerParameteri(name, gl.TEXTURE_WRAP_T, wrap(wrapT))
	c.check("SamplerParameteri")
}

func (c *glContext) BindSampler(unit uint32, s gpu.Sampler) {
	gl.BindSampler(unit, uint32(s))
	c.check("BindSampler")
}

func (c *glContext) DeleteSampler(s gpu.Sampler) {
	name := uint32(s)
	gl.DeleteSamplers(1, &name)
	c.check("DeleteSamplers")
}

func (c *glContext) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.StageFragment {
		kind = gl.FRAGMENT_SHADER
	}
	s := gl.CreateShader(kind)
	c.check("CreateShader")
	return gpu.Shader(s)
}

func (c *glContext) CompileShader(s gpu.Shader, source string) error {
	name := uint32(s)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(name, 1, csources, nil)
	free()
	gl.CompileShader(name)
	c.check("CompileShader")

	var status int32
	gl.GetShaderiv(name, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(name, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(name, logLength, nil, gl.Str(log))
		return fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return nil
}

func (c *glContext) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
	c.check("DeleteShader")
}

func (c *glContext) CreateProgram() gpu.Program {
	p := gl.CreateProgram()
	c.check("CreateProgram")
	return gpu.Program(p)
}

func (c *glContext) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
	c.check("AttachShader")
}

func (c *glContext) LinkProgram(p gpu.Program) error {
	name := uint32(p)
	gl.LinkProgram(name)
	c.check("LinkProgram")

	var status int32
	gl.GetProgramiv(name, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(name, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(name, logLength, nil, gl.Str(log))
		return fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return nil
}

func (c *glContext) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
	c.check("UseProgram")
}

func (c *glContext) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
	c.check("DeleteProgram")
}

func (c *glContext) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	c.check("GetUniformLocation")
	return gpu.UniformLocation(loc)
}

func (c *glContext) Uniform1i(loc gpu.UniformLocation, v int32) {
	gl.Uniform1i(int32(loc), v)
	c.check("Uniform1i")
}

func (c *glContext) UniformMatrix4fv(loc gpu.UniformLocation, m [16]float32) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
	c.check("UniformMatrix4fv")
}

func (c *glContext) GetUniformBlockIndex(p gpu.Program, name string) (uint32, bool) {
	idx := gl.GetUniformBlockIndex(uint32(p), gl.Str(name+"\x00"))
	c.check("GetUniformBlockIndex")
	return idx, idx != gl.INVALID_INDEX
}

func (c *glContext) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	gl.UniformBlockBinding(uint32(p), block, binding)
	c.check("UniformBlockBinding")
}

// samplerTypes are the GLSL 3.30 sampler uniform types a texture unit is bound to.
var samplerTypes = map[uint32]bool{
	gl.SAMPLER_2D:                    true,
	gl.SAMPLER_3D:                    true,
	gl.SAMPLER_CUBE:                  true,
	gl.SAMPLER_2D_SHADOW:             true,
	gl.SAMPLER_2D_ARRAY:              true,
	gl.SAMPLER_2D_ARRAY_SHADOW:       true,
	gl.SAMPLER_CUBE_SHADOW:           true,
	gl.INT_SAMPLER_2D:                true,
	gl.INT_SAMPLER_3D:                true,
	gl.INT_SAMPLER_CUBE:              true,
	gl.INT_SAMPLER_2D_ARRAY:          true,
	gl.UNSIGNED_INT_SAMPLER_2D:       true,
	gl.UNSIGNED_INT_SAMPLER_3D:       true,
	gl.UNSIGNED_INT_SAMPLER_CUBE:     true,
	gl.UNSIGNED_INT_SAMPLER_2D_ARRAY: true,
}

func (c *glContext) ActiveSamplers(p gpu.Program) int {
	var n int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORMS, &n)
	c.check("GetProgramiv")

	units := 0
	var name [1]uint8
	for i := uint32(0); i < uint32(n); i++ {
		var length, size int32
		var typ uint32
		gl.GetActiveUniform(uint32(p), i, int32(len(name)), &length, &size, &typ, &name[0])
		c.check("GetActiveUniform")
		if samplerTypes[typ] {
			units += int(size)
		}
	}
	return units
}

func (c *glContext) ActiveUniformBlocks(p gpu.Program) int {
	var n int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_BLOCKS, &n)
	c.check("GetProgramiv")
	return int(n)
}

func (c *glContext) UniformBlockDataSize(p gpu.Program, block uint32) int {
	var size int32
	gl.GetActiveUniformBlockiv(uint32(p), block, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	c.check("GetActiveUniformBlockiv")
	return int(size)
}

func (c *glContext) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
	c.check("Viewport")
}

func (c *glContext) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	c.check("ClearColor")
}

func (c *glContext) ClearDepth(d float64) {
	gl.ClearDepth(d)
	c.check("ClearDepth")
}

func (c *glContext) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
	c.check("Clear")
}

func (c *glContext) Enable(cp gpu.Capability) {
	gl.Enable(capability(cp))
	c.check("Enable")
}

func (c *glContext) Disable(cp gpu.Capability) {
	gl.Disable(capability(cp))
	c.check("Disable")
}

func (c *glContext) DepthFunc(f gpu.CompareFunc) {
	gl.DepthFunc(compareFunc(f))
	c.check("DepthFunc")
}

func (c *glContext) FrontFace(f gpu.FrontFace) {
	if f == gpu.FrontFaceCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
	c.check("FrontFace")
}

func (c *glContext) DrawElementsInstanced(mode gpu.DrawMode, count int, typ gpu.DataType, offset int, instances int) {
	gl.DrawElementsInstanced(drawMode(mode), int32(count), dataType(typ), gl.PtrOffset(offset), int32(instances))
	c.check("DrawElementsInstanced")
}
