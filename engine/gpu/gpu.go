// package gpu describes the slice of the GL ES 3.0 programming model the renderer core drives. Every
// pipeline-state mutation goes through a Context so that backends can be swapped (a real driver via
// glcontext, an in-memory recorder for tests) without the core changing.
package gpu

// Buffer is a driver buffer object name. Zero is the null buffer.
type Buffer uint32

// VertexArray is a driver vertex array object name. Zero unbinds.
type VertexArray uint32

// Texture is a driver texture object name.
type Texture uint32

// Sampler is a driver sampler object name.
type Sampler uint32

// Shader is a driver shader object name.
type Shader uint32

// Program is a driver program object name.
type Program uint32

// UniformLocation is a resolved uniform location. NoUniform marks a uniform the driver did not report.
type UniformLocation int32

// NoUniform is returned for uniforms that are absent or optimized out of a linked program.
const NoUniform UniformLocation = -1

// Limits carries the driver capabilities the core validates against.
type Limits struct {
	// MaxTextureUnits is the number of combined texture image units.
	MaxTextureUnits int
	// MaxUniformBlocks is the number of uniform blocks a program may declare.
	MaxUniformBlocks int
	// MaxUniformBlockSize is the largest uniform block data size in bytes.
	MaxUniformBlockSize int
	// UniformBufferOffsetAlignment is the required alignment of BindBufferRange offsets on the uniform target.
	UniformBufferOffsetAlignment int
	// MaxVertexAttribs is the number of generic vertex attribute locations.
	MaxVertexAttribs int
}

// PortableLimits are the GL ES 3.0 minimum guarantees. Debug builds refuse programs that exceed them so
// content stays portable to the weakest conforming driver.
var PortableLimits = Limits{
	MaxTextureUnits:              16,
	MaxUniformBlocks:             12,
	MaxUniformBlockSize:          16384,
	UniformBufferOffsetAlignment: 256,
	MaxVertexAttribs:             16,
}

// Context is an explicit handle on a current GL context. All methods must be called from the goroutine
// that owns the context.
type Context interface {
	// Limits reports the driver capabilities.
	//
	// Returns:
	//   - Limits: the capabilities queried when the context was created
	Limits() Limits

	// CreateBuffer allocates a new buffer object name.
	CreateBuffer() Buffer
	// BindBuffer binds b to target. Binding ElementArray records the buffer into the bound vertex array.
	BindBuffer(target BufferTarget, b Buffer)
	// BufferData (re)allocates the storage of the buffer bound to target. A nil data leaves the storage undefined.
	BufferData(target BufferTarget, size int, data []byte, usage BufferUsage)
	// BufferSubData writes data into the buffer bound to target starting at offset.
	BufferSubData(target BufferTarget, offset int, data []byte)
	// BindBufferRange binds a byte range of b to an indexed binding point of target.
	BindBufferRange(target BufferTarget, index uint32, b Buffer, offset, size int)
	// DeleteBuffer releases b.
	DeleteBuffer(b Buffer)

	// CreateVertexArray allocates a new vertex array object name.
	CreateVertexArray() VertexArray
	// BindVertexArray makes v current. Zero unbinds.
	BindVertexArray(v VertexArray)
	// DeleteVertexArray releases v.
	DeleteVertexArray(v VertexArray)
	// EnableVertexAttribArray enables loc on the bound vertex array.
	EnableVertexAttribArray(loc uint32)
	// VertexAttribPointer sources loc from the buffer bound to the array target.
	VertexAttribPointer(loc uint32, components int, typ DataType, normalized bool, stride, offset int)
	// VertexAttribDivisor sets the instance divisor of loc.
	VertexAttribDivisor(loc uint32, divisor uint32)
	// VertexAttrib4f sets the constant value used when loc is not enabled as an array.
	VertexAttrib4f(loc uint32, x, y, z, w float32)

	// CreateTexture allocates a new texture object name.
	CreateTexture() Texture
	// ActiveTexture selects the texture unit affected by BindTexture.
	ActiveTexture(unit uint32)
	// BindTexture binds t as the 2D texture of the active unit.
	BindTexture(t Texture)
	// TexImage2D uploads one mip level of RGBA8 pixels into the bound 2D texture.
	TexImage2D(level int, format TextureFormat, width, height int, pixels []byte)
	// TexMaxLevel sets the last mip level of the bound 2D texture, so a chain that stops before 1x1 is still
	// complete.
	TexMaxLevel(level int)
	// DeleteTexture releases t.
	DeleteTexture(t Texture)

	// CreateSampler allocates a new sampler object name.
	CreateSampler() Sampler
	// SamplerParameters configures filtering and wrapping of s.
	SamplerParameters(s Sampler, mag, min Filter, wrapS, wrapT Wrap)
	// BindSampler binds s to a texture unit.
	BindSampler(unit uint32, s Sampler)
	// DeleteSampler releases s.
	DeleteSampler(s Sampler)

	// CreateShader allocates a shader object of the given stage.
	CreateShader(stage ShaderStage) Shader
	// CompileShader sets the source of s and compiles it.
	//
	// Returns:
	//   - error: the driver info log when compilation fails
	CompileShader(s Shader, source string) error
	// DeleteShader releases s.
	DeleteShader(s Shader)
	// CreateProgram allocates a program object.
	CreateProgram() Program
	// AttachShader attaches s to p.
	AttachShader(p Program, s Shader)
	// LinkProgram links p.
	//
	// Returns:
	//   - error: the driver info log when linking fails
	LinkProgram(p Program) error
	// UseProgram makes p current.
	UseProgram(p Program)
	// DeleteProgram releases p.
	DeleteProgram(p Program)
	// GetUniformLocation resolves a uniform by name, or NoUniform.
	GetUniformLocation(p Program, name string) UniformLocation
	// Uniform1i sets an int (or sampler) uniform of the current program.
	Uniform1i(loc UniformLocation, v int32)
	// UniformMatrix4fv sets a column-major mat4 uniform of the current program.
	UniformMatrix4fv(loc UniformLocation, m [16]float32)
	// GetUniformBlockIndex resolves a uniform block by name.
	//
	// Returns:
	//   - uint32: the block index
	//   - bool: false when the block is not active in p
	GetUniformBlockIndex(p Program, name string) (uint32, bool)
	// UniformBlockBinding assigns a block of p to a uniform buffer binding point.
	UniformBlockBinding(p Program, block, binding uint32)
	// ActiveSamplers returns the number of texture units the active sampler uniforms of p need.
	ActiveSamplers(p Program) int
	// ActiveUniformBlocks returns the number of active uniform blocks of p.
	ActiveUniformBlocks(p Program) int
	// UniformBlockDataSize returns the data size in bytes of a block of p.
	UniformBlockDataSize(p Program, block uint32) int

	// Viewport sets the viewport rectangle.
	Viewport(x, y, width, height int)
	// ClearColor sets the color clear value.
	ClearColor(r, g, b, a float32)
	// ClearDepth sets the depth clear value.
	ClearDepth(d float64)
	// Clear clears the selected buffers of the framebuffer.
	Clear(mask ClearMask)
	// Enable turns on a capability.
	Enable(c Capability)
	// Disable turns off a capability.
	Disable(c Capability)
	// DepthFunc sets the depth comparison.
	DepthFunc(f CompareFunc)
	// FrontFace sets which winding is front facing.
	FrontFace(f FrontFace)
	// DrawElementsInstanced draws instances of indexed geometry from the bound vertex array and element buffer.
	DrawElementsInstanced(mode DrawMode, count int, typ DataType, offset int, instances int)
}
