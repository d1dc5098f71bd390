// package recorder provides an in-memory gpu.Context. It assigns object names, mirrors buffer and texture
// contents, tracks the bindings the GL state machine would hold, records every call in order, and panics the
// way a debug build panics on a GL error when a call would be invalid on a real driver.
package recorder

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// Call is one recorded context call.
type Call struct {
	// Op is the method name, e.g. "DrawElementsInstanced".
	Op string
	// Args are the call arguments in declaration order.
	Args []any
}

// AttribState is the recorded state of one vertex attribute location of a vertex array.
type AttribState struct {
	Enabled    bool
	Buffer     gpu.Buffer
	Components int
	Type       gpu.DataType
	Normalized bool
	Stride     int
	Offset     int
	Divisor    uint32
}

// TextureLevel is one uploaded mip level.
type TextureLevel struct {
	Format gpu.TextureFormat
	Width  int
	Height int
	Pixels []byte
}

// SamplerState is the recorded configuration of a sampler object.
type SamplerState struct {
	Mag, Min     gpu.Filter
	WrapS, WrapT gpu.Wrap
}

// Recorder is a gpu.Context that can be inspected after the fact.
type Recorder interface {
	gpu.Context

	// Calls returns every recorded call in order.
	Calls() []Call

	// CallsTo returns the recorded calls with the given op name.
	//
	// Parameters:
	//   - op: the method name to filter on
	//
	// Returns:
	//   - []Call: matching calls in order
	CallsTo(op string) []Call

	// Reset drops the call log. Object state is kept.
	Reset()

	// BufferContents returns a copy of the driver-side bytes of b.
	BufferContents(b gpu.Buffer) []byte

	// BufferUsage returns the usage hint b was last allocated with.
	BufferUsage(b gpu.Buffer) gpu.BufferUsage

	// ElementBuffer returns the element array buffer recorded into v.
	ElementBuffer(v gpu.VertexArray) gpu.Buffer

	// Attrib returns the state of loc in v.
	Attrib(v gpu.VertexArray, loc uint32) AttribState

	// TextureLevels returns the uploaded mip levels of t in level order.
	TextureLevels(t gpu.Texture) []TextureLevel

	// TextureMaxLevel returns the max mip level set on t, if any.
	TextureMaxLevel(t gpu.Texture) (int, bool)

	// Sampler returns the parameters of s.
	Sampler(s gpu.Sampler) SamplerState

	// UniformValue returns the last value set for a named uniform of p.
	UniformValue(p gpu.Program, name string) (any, bool)

	// BlockBinding returns the binding point assigned to a named uniform block of p.
	BlockBinding(p gpu.Program, name string) (uint32, bool)

	// Live returns the number of objects created and not yet deleted.
	Live() int
}

type bufferState struct {
	data  []byte
	usage gpu.BufferUsage
}

type vertexArrayState struct {
	element gpu.Buffer
	attribs map[uint32]*AttribState
}

type shaderState struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
}

type programState struct {
	shaders  []gpu.Shader
	linked   bool
	uniforms map[string]gpu.UniformLocation
	samplers map[string]bool
	values   map[gpu.UniformLocation]any
	blocks   []string
	bindings map[uint32]uint32
}

// recorder is the implementation of the Recorder interface.
type recorder struct {
	mu sync.Mutex

	limits       gpu.Limits
	compileError map[gpu.ShaderStage]string
	linkError    string
	blockSize    int

	calls []Call
	next  uint32
	live  map[uint32]string

	buffers      map[gpu.Buffer]*bufferState
	bound        map[gpu.BufferTarget]gpu.Buffer
	vertexArrays map[gpu.VertexArray]*vertexArrayState
	currentVAO   gpu.VertexArray

	textures     map[gpu.Texture]map[int]TextureLevel
	maxLevels    map[gpu.Texture]int
	activeUnit   uint32
	unitTextures map[uint32]gpu.Texture
	samplers     map[gpu.Sampler]*SamplerState

	shaders        map[gpu.Shader]*shaderState
	programs       map[gpu.Program]*programState
	currentProgram gpu.Program
}

var _ Recorder = &recorder{}

var (
	uniformPattern = regexp.MustCompile(`uniform\s+(\w+)\s+(\w+)\s*;`)
	blockPattern   = regexp.MustCompile(`uniform\s+(\w+)\s*\{`)
	samplerPattern = regexp.MustCompile(`^[iu]?sampler\w+$`)
)

// NewRecorder creates a Recorder with desktop-class limits unless overridden.
//
// Parameters:
//   - options: functional options to configure limits and injected driver failures
//
// Returns:
//   - Recorder: the recording context
func NewRecorder(options ...RecorderBuilderOption) Recorder {
	r := &recorder{
		limits: gpu.Limits{
			MaxTextureUnits:              32,
			MaxUniformBlocks:             14,
			MaxUniformBlockSize:          65536,
			UniformBufferOffsetAlignment: 256,
			MaxVertexAttribs:             16,
		},
		compileError: make(map[gpu.ShaderStage]string),
		blockSize:    48,
		live:         make(map[uint32]string),
		buffers:      make(map[gpu.Buffer]*bufferState),
		bound:        make(map[gpu.BufferTarget]gpu.Buffer),
		vertexArrays: map[gpu.VertexArray]*vertexArrayState{
			0: {attribs: make(map[uint32]*AttribState)},
		},
		textures:     make(map[gpu.Texture]map[int]TextureLevel),
		maxLevels:    make(map[gpu.Texture]int),
		unitTextures: make(map[uint32]gpu.Texture),
		samplers:     make(map[gpu.Sampler]*SamplerState),
		shaders:      make(map[gpu.Shader]*shaderState),
		programs:     make(map[gpu.Program]*programState),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *recorder) record(op string, args ...any) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
}

func (r *recorder) fail(op, code, format string, args ...any) {
	panic(fmt.Sprintf("gl%s: %s: %s", op, code, fmt.Sprintf(format, args...)))
}

func (r *recorder) create(kind string) uint32 {
	r.next++
	r.live[r.next] = kind
	return r.next
}

func (r *recorder) release(op string, name uint32, kind string) {
	if name == 0 {
		return
	}
	if got, ok := r.live[name]; !ok || got != kind {
		r.fail(op, "GL_INVALID_VALUE", "%s %d is not a live object", kind, name)
	}
	delete(r.live, name)
}

func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *recorder) CallsTo(op string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

func (r *recorder) BufferContents(b gpu.Buffer) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.buffers[b]; ok {
		return append([]byte(nil), s.data...)
	}
	return nil
}

func (r *recorder) BufferUsage(b gpu.Buffer) gpu.BufferUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.buffers[b]; ok {
		return s.usage
	}
	return 0
}

func (r *recorder) ElementBuffer(v gpu.VertexArray) gpu.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.vertexArrays[v]; ok {
		return s.element
	}
	return 0
}

func (r *recorder) Attrib(v gpu.VertexArray, loc uint32) AttribState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.vertexArrays[v]; ok {
		if a, ok := s.attribs[loc]; ok {
			return *a
		}
	}
	return AttribState{}
}

func (r *recorder) TextureLevels(t gpu.Texture) []TextureLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	levels := r.textures[t]
	out := make([]TextureLevel, 0, len(levels))
	for i := 0; i < len(levels); i++ {
		lvl, ok := levels[i]
		if !ok {
			break
		}
		out = append(out, lvl)
	}
	return out
}

func (r *recorder) TextureMaxLevel(t gpu.Texture) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	level, ok := r.maxLevels[t]
	return level, ok
}

func (r *recorder) Sampler(s gpu.Sampler) SamplerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.samplers[s]; ok {
		return *st
	}
	return SamplerState{}
}

func (r *recorder) UniformValue(p gpu.Program, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok {
		return nil, false
	}
	loc, ok := ps.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := ps.values[loc]
	return v, ok
}

func (r *recorder) BlockBinding(p gpu.Program, name string) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok {
		return 0, false
	}
	for i, b := range ps.blocks {
		if b == name {
			binding, ok := ps.bindings[uint32(i)]
			return binding, ok
		}
	}
	return 0, false
}

func (r *recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *recorder) Limits() gpu.Limits {
	return r.limits
}

// --- Buffers ---

func (r *recorder) CreateBuffer() gpu.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := gpu.Buffer(r.create("buffer"))
	r.buffers[b] = &bufferState{}
	r.record("CreateBuffer", b)
	return b
}

func (r *recorder) boundBuffer(target gpu.BufferTarget) gpu.Buffer {
	if target == gpu.BufferTargetElementArray {
		return r.vertexArrays[r.currentVAO].element
	}
	return r.bound[target]
}

func (r *recorder) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b != 0 {
		if _, ok := r.buffers[b]; !ok {
			r.fail("BindBuffer", "GL_INVALID_OPERATION", "buffer %d does not exist", b)
		}
	}
	if target == gpu.BufferTargetElementArray {
		r.vertexArrays[r.currentVAO].element = b
	} else {
		r.bound[target] = b
	}
	r.record("BindBuffer", target, b)
}

func (r *recorder) BufferData(target gpu.BufferTarget, size int, data []byte, usage gpu.BufferUsage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.boundBuffer(target)
	if b == 0 {
		r.fail("BufferData", "GL_INVALID_OPERATION", "no buffer bound to %s", target)
	}
	if size < 0 {
		r.fail("BufferData", "GL_INVALID_VALUE", "negative size %d", size)
	}
	s := r.buffers[b]
	s.data = make([]byte, size)
	copy(s.data, data)
	s.usage = usage
	r.record("BufferData", target, size, usage)
}

func (r *recorder) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.boundBuffer(target)
	if b == 0 {
		r.fail("BufferSubData", "GL_INVALID_OPERATION", "no buffer bound to %s", target)
	}
	s := r.buffers[b]
	if offset < 0 || offset+len(data) > len(s.data) {
		r.fail("BufferSubData", "GL_INVALID_VALUE", "range [%d, %d) outside buffer %d of size %d", offset, offset+len(data), b, len(s.data))
	}
	copy(s.data[offset:], data)
	r.record("BufferSubData", target, offset, len(data))
}

func (r *recorder) BindBufferRange(target gpu.BufferTarget, index uint32, b gpu.Buffer, offset, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.buffers[b]
	if !ok {
		r.fail("BindBufferRange", "GL_INVALID_OPERATION", "buffer %d does not exist", b)
	}
	if target == gpu.BufferTargetUniform && r.limits.UniformBufferOffsetAlignment > 0 && offset%r.limits.UniformBufferOffsetAlignment != 0 {
		r.fail("BindBufferRange", "GL_INVALID_VALUE", "offset %d not aligned to %d", offset, r.limits.UniformBufferOffsetAlignment)
	}
	if size <= 0 || offset+size > len(s.data) {
		r.fail("BindBufferRange", "GL_INVALID_VALUE", "range [%d, %d) outside buffer %d of size %d", offset, offset+size, b, len(s.data))
	}
	r.bound[target] = b
	r.record("BindBufferRange", target, index, b, offset, size)
}

func (r *recorder) DeleteBuffer(b gpu.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteBuffers", uint32(b), "buffer")
	delete(r.buffers, b)
	for t, bb := range r.bound {
		if bb == b {
			r.bound[t] = 0
		}
	}
	for _, v := range r.vertexArrays {
		if v.element == b {
			v.element = 0
		}
	}
	r.record("DeleteBuffer", b)
}

// --- Vertex arrays ---

func (r *recorder) CreateVertexArray() gpu.VertexArray {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := gpu.VertexArray(r.create("vertex array"))
	r.vertexArrays[v] = &vertexArrayState{attribs: make(map[uint32]*AttribState)}
	r.record("CreateVertexArray", v)
	return v
}

func (r *recorder) BindVertexArray(v gpu.VertexArray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vertexArrays[v]; !ok {
		r.fail("BindVertexArray", "GL_INVALID_OPERATION", "vertex array %d does not exist", v)
	}
	r.currentVAO = v
	r.record("BindVertexArray", v)
}

func (r *recorder) DeleteVertexArray(v gpu.VertexArray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteVertexArrays", uint32(v), "vertex array")
	delete(r.vertexArrays, v)
	if r.currentVAO == v {
		r.currentVAO = 0
	}
	r.record("DeleteVertexArray", v)
}

func (r *recorder) attrib(op string, loc uint32) *AttribState {
	if r.currentVAO == 0 {
		r.fail(op, "GL_INVALID_OPERATION", "no vertex array bound")
	}
	if int(loc) >= r.limits.MaxVertexAttribs {
		r.fail(op, "GL_INVALID_VALUE", "location %d exceeds %d attributes", loc, r.limits.MaxVertexAttribs)
	}
	vs := r.vertexArrays[r.currentVAO]
	a, ok := vs.attribs[loc]
	if !ok {
		a = &AttribState{}
		vs.attribs[loc] = a
	}
	return a
}

func (r *recorder) EnableVertexAttribArray(loc uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrib("EnableVertexAttribArray", loc).Enabled = true
	r.record("EnableVertexAttribArray", loc)
}

func (r *recorder) VertexAttribPointer(loc uint32, components int, typ gpu.DataType, normalized bool, stride, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.attrib("VertexAttribPointer", loc)
	b := r.bound[gpu.BufferTargetArray]
	if b == 0 {
		r.fail("VertexAttribPointer", "GL_INVALID_OPERATION", "no buffer bound to ARRAY_BUFFER")
	}
	if components < 1 || components > 4 {
		r.fail("VertexAttribPointer", "GL_INVALID_VALUE", "component count %d", components)
	}
	a.Buffer = b
	a.Components = components
	a.Type = typ
	a.Normalized = normalized
	a.Stride = stride
	a.Offset = offset
	r.record("VertexAttribPointer", loc, components, typ, normalized, stride, offset)
}

func (r *recorder) VertexAttribDivisor(loc uint32, divisor uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrib("VertexAttribDivisor", loc).Divisor = divisor
	r.record("VertexAttribDivisor", loc, divisor)
}

func (r *recorder) VertexAttrib4f(loc uint32, x, y, z, w float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(loc) >= r.limits.MaxVertexAttribs {
		r.fail("VertexAttrib4f", "GL_INVALID_VALUE", "location %d", loc)
	}
	r.record("VertexAttrib4f", loc, x, y, z, w)
}

// --- Textures and samplers ---

func (r *recorder) CreateTexture() gpu.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := gpu.Texture(r.create("texture"))
	r.textures[t] = make(map[int]TextureLevel)
	r.record("CreateTexture", t)
	return t
}

func (r *recorder) ActiveTexture(unit uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(unit) >= r.limits.MaxTextureUnits {
		r.fail("ActiveTexture", "GL_INVALID_ENUM", "unit %d exceeds %d units", unit, r.limits.MaxTextureUnits)
	}
	r.activeUnit = unit
	r.record("ActiveTexture", unit)
}

func (r *recorder) BindTexture(t gpu.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t != 0 {
		if _, ok := r.textures[t]; !ok {
			r.fail("BindTexture", "GL_INVALID_OPERATION", "texture %d does not exist", t)
		}
	}
	r.unitTextures[r.activeUnit] = t
	r.record("BindTexture", r.activeUnit, t)
}

func (r *recorder) TexImage2D(level int, format gpu.TextureFormat, width, height int, pixels []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.unitTextures[r.activeUnit]
	if t == 0 {
		r.fail("TexImage2D", "GL_INVALID_OPERATION", "no texture bound to unit %d", r.activeUnit)
	}
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		r.fail("TexImage2D", "GL_INVALID_VALUE", "%dx%d level with %d bytes", width, height, len(pixels))
	}
	r.textures[t][level] = TextureLevel{Format: format, Width: width, Height: height, Pixels: append([]byte(nil), pixels...)}
	r.record("TexImage2D", level, format, width, height)
}

func (r *recorder) TexMaxLevel(level int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.unitTextures[r.activeUnit]
	if t == 0 {
		r.fail("TexMaxLevel", "GL_INVALID_OPERATION", "no texture bound to unit %d", r.activeUnit)
	}
	if level < 0 {
		r.fail("TexMaxLevel", "GL_INVALID_VALUE", "max level %d", level)
	}
	r.maxLevels[t] = level
	r.record("TexMaxLevel", level)
}

func (r *recorder) DeleteTexture(t gpu.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteTextures", uint32(t), "texture")
	delete(r.textures, t)
	delete(r.maxLevels, t)
	r.record("DeleteTexture", t)
}

func (r *recorder) CreateSampler() gpu.Sampler {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := gpu.Sampler(r.create("sampler"))
	r.samplers[s] = &SamplerState{}
	r.record("CreateSampler", s)
	return s
}

func (r *recorder) SamplerParameters(s gpu.Sampler, mag, min gpu.Filter, wrapS, wrapT gpu.Wrap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.samplers[s]
	if !ok {
		r.fail("SamplerParameteri", "GL_INVALID_OPERATION", "sampler %d does not exist", s)
	}
	if mag != gpu.FilterNearest && mag != gpu.FilterLinear {
		r.fail("SamplerParameteri", "GL_INVALID_ENUM", "magnification filter %d", mag)
	}
	*st = SamplerState{Mag: mag, Min: min, WrapS: wrapS, WrapT: wrapT}
	r.record("SamplerParameters", s, mag, min, wrapS, wrapT)
}

func (r *recorder) BindSampler(unit uint32, s gpu.Sampler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s != 0 {
		if _, ok := r.samplers[s]; !ok {
			r.fail("BindSampler", "GL_INVALID_OPERATION", "sampler %d does not exist", s)
		}
	}
	r.record("BindSampler", unit, s)
}

func (r *recorder) DeleteSampler(s gpu.Sampler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteSamplers", uint32(s), "sampler")
	delete(r.samplers, s)
	r.record("DeleteSampler", s)
}

// --- Shaders and programs ---

func (r *recorder) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := gpu.Shader(r.create("shader"))
	r.shaders[s] = &shaderState{stage: stage}
	r.record("CreateShader", s, stage)
	return s
}

func (r *recorder) CompileShader(s gpu.Shader, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.shaders[s]
	if !ok {
		r.fail("CompileShader", "GL_INVALID_VALUE", "shader %d does not exist", s)
	}
	st.source = source
	r.record("CompileShader", s)
	if log, ok := r.compileError[st.stage]; ok {
		return fmt.Errorf("%s", log)
	}
	st.compiled = true
	return nil
}

func (r *recorder) DeleteShader(s gpu.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteShader", uint32(s), "shader")
	delete(r.shaders, s)
	r.record("DeleteShader", s)
}

func (r *recorder) CreateProgram() gpu.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := gpu.Program(r.create("program"))
	r.programs[p] = &programState{
		uniforms: make(map[string]gpu.UniformLocation),
		samplers: make(map[string]bool),
		values:   make(map[gpu.UniformLocation]any),
		bindings: make(map[uint32]uint32),
	}
	r.record("CreateProgram", p)
	return p
}

func (r *recorder) AttachShader(p gpu.Program, s gpu.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok {
		r.fail("AttachShader", "GL_INVALID_VALUE", "program %d does not exist", p)
	}
	if _, ok := r.shaders[s]; !ok {
		r.fail("AttachShader", "GL_INVALID_VALUE", "shader %d does not exist", s)
	}
	ps.shaders = append(ps.shaders, s)
	r.record("AttachShader", p, s)
}

func (r *recorder) LinkProgram(p gpu.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok {
		r.fail("LinkProgram", "GL_INVALID_VALUE", "program %d does not exist", p)
	}
	r.record("LinkProgram", p)
	if r.linkError != "" {
		return fmt.Errorf("%s", r.linkError)
	}
	for _, s := range ps.shaders {
		st, ok := r.shaders[s]
		if !ok || !st.compiled {
			return fmt.Errorf("shader %d is not compiled", s)
		}
		for _, m := range uniformPattern.FindAllStringSubmatch(st.source, -1) {
			if _, seen := ps.uniforms[m[2]]; !seen {
				ps.uniforms[m[2]] = gpu.UniformLocation(len(ps.uniforms))
			}
			if samplerPattern.MatchString(m[1]) {
				ps.samplers[m[2]] = true
			}
		}
		for _, m := range blockPattern.FindAllStringSubmatch(st.source, -1) {
			ps.blocks = append(ps.blocks, m[1])
		}
	}
	ps.linked = true
	return nil
}

func (r *recorder) UseProgram(p gpu.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p != 0 {
		ps, ok := r.programs[p]
		if !ok || !ps.linked {
			r.fail("UseProgram", "GL_INVALID_OPERATION", "program %d is not linked", p)
		}
	}
	r.currentProgram = p
	r.record("UseProgram", p)
}

func (r *recorder) DeleteProgram(p gpu.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release("DeleteProgram", uint32(p), "program")
	delete(r.programs, p)
	if r.currentProgram == p {
		r.currentProgram = 0
	}
	r.record("DeleteProgram", p)
}

func (r *recorder) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetUniformLocation", p, name)
	ps, ok := r.programs[p]
	if !ok || !ps.linked {
		r.fail("GetUniformLocation", "GL_INVALID_OPERATION", "program %d is not linked", p)
	}
	if loc, ok := ps.uniforms[name]; ok {
		return loc
	}
	return gpu.NoUniform
}

func (r *recorder) setUniform(op string, loc gpu.UniformLocation, v any) {
	if loc == gpu.NoUniform {
		return
	}
	ps, ok := r.programs[r.currentProgram]
	if !ok {
		r.fail(op, "GL_INVALID_OPERATION", "no program in use")
	}
	ps.values[loc] = v
}

func (r *recorder) Uniform1i(loc gpu.UniformLocation, v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform("Uniform1i", loc, v)
	r.record("Uniform1i", loc, v)
}

func (r *recorder) UniformMatrix4fv(loc gpu.UniformLocation, m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform("UniformMatrix4fv", loc, m)
	r.record("UniformMatrix4fv", loc, m)
}

func (r *recorder) GetUniformBlockIndex(p gpu.Program, name string) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetUniformBlockIndex", p, name)
	ps, ok := r.programs[p]
	if !ok {
		return 0, false
	}
	for i, b := range ps.blocks {
		if b == name {
			return uint32(i), true
		}
	}
	return 0, false
}

func (r *recorder) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok || int(block) >= len(ps.blocks) {
		r.fail("UniformBlockBinding", "GL_INVALID_VALUE", "block %d of program %d", block, p)
	}
	ps.bindings[block] = binding
	r.record("UniformBlockBinding", p, block, binding)
}

func (r *recorder) ActiveSamplers(p gpu.Program) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ps, ok := r.programs[p]; ok {
		return len(ps.samplers)
	}
	return 0
}

func (r *recorder) ActiveUniformBlocks(p gpu.Program) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ps, ok := r.programs[p]; ok {
		return len(ps.blocks)
	}
	return 0
}

func (r *recorder) UniformBlockDataSize(p gpu.Program, block uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.programs[p]
	if !ok || int(block) >= len(ps.blocks) {
		r.fail("GetActiveUniformBlockiv", "GL_INVALID_VALUE", "block %d of program %d", block, p)
	}
	return r.blockSize
}

// --- Fixed function state and draws ---

func (r *recorder) Viewport(x, y, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Viewport", x, y, width, height)
}

func (r *recorder) ClearColor(red, green, blue, alpha float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *recorder) ClearDepth(d float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearDepth", d)
}

func (r *recorder) Clear(mask gpu.ClearMask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Clear", mask)
}

func (r *recorder) Enable(c gpu.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Enable", c)
}

func (r *recorder) Disable(c gpu.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Disable", c)
}

func (r *recorder) DepthFunc(f gpu.CompareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DepthFunc", f)
}

func (r *recorder) FrontFace(f gpu.FrontFace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FrontFace", f)
}

func (r *recorder) DrawElementsInstanced(mode gpu.DrawMode, count int, typ gpu.DataType, offset int, instances int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentVAO == 0 {
		r.fail("DrawElementsInstanced", "GL_INVALID_OPERATION", "no vertex array bound")
	}
	if r.currentProgram == 0 {
		r.fail("DrawElementsInstanced", "GL_INVALID_OPERATION", "no program in use")
	}
	element := r.vertexArrays[r.currentVAO].element
	if element == 0 {
		r.fail("DrawElementsInstanced", "GL_INVALID_OPERATION", "no element buffer bound to vertex array %d", r.currentVAO)
	}
	if end := offset + count*typ.Size(); end > len(r.buffers[element].data) {
		r.fail("DrawElementsInstanced", "GL_INVALID_OPERATION", "index range ends at %d beyond buffer size %d", end, len(r.buffers[element].data))
	}
	if count < 0 || instances < 0 {
		r.fail("DrawElementsInstanced", "GL_INVALID_VALUE", "count %d instances %d", count, instances)
	}
	r.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}
