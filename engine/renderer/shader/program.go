// package shader compiles and links the mesh program, resolves its uniforms and uniform block, and keeps
// the attribute locations and texture units the rest of the renderer agrees on.
package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrCompile is returned when a shader stage fails to compile. The driver log is appended.
	ErrCompile = errors.New("shader: compile failed")
	// ErrLink is returned when the program fails to link. The driver log is appended.
	ErrLink = errors.New("shader: link failed")
	// ErrLimitExceeded is returned when the program needs more than the driver provides.
	ErrLimitExceeded = errors.New("shader: driver limit exceeded")
)

// program is the implementation of the Program interface.
type program struct {
	ctx    gpu.Context
	handle gpu.Program

	projection gpu.UniformLocation
	view       gpu.UniformLocation
	usage      Usage

	destroyed bool
}

// Usage is the resource footprint of a linked program.
type Usage struct {
	TextureUnits  int
	UniformBlocks int
	// LargestBlock is the data size in bytes of the biggest active uniform block.
	LargestBlock int
}

// Program is a linked mesh program with its uniforms resolved. Uniforms the driver optimized away are
// skipped silently.
type Program interface {
	// Handle returns the driver program object.
	//
	// Returns:
	//   - gpu.Program: the linked program
	Handle() gpu.Program

	// Use makes the program current.
	Use()

	// SetProjection uploads the projection matrix. The program must be current.
	//
	// Parameters:
	//   - m: the column-major projection matrix
	SetProjection(m mgl32.Mat4)

	// SetView uploads the view matrix. The program must be current.
	//
	// Parameters:
	//   - m: the column-major view matrix
	SetView(m mgl32.Mat4)

	// InstanceSlots returns the attribute locations the batcher sources instance transforms from.
	//
	// Returns:
	//   - [4]uint32: the four model transform column locations
	InstanceSlots() [4]uint32

	// Usage returns the resource footprint that was validated at creation.
	//
	// Returns:
	//   - Usage: texture units, active uniform blocks and the largest block size
	Usage() Usage

	// Destroy deletes the program. Calling it more than once is a no-op.
	Destroy()
}

var _ Program = &program{}

// NewProgram compiles the configured vertex and fragment sources, links them and deletes the shader
// objects. The five sampler uniforms are bound to units 0-4 and the Material block to
// MaterialBlockBinding. Every object created is released before an error is returned.
//
// Parameters:
//   - ctx: the context the program is created on
//   - options: functional options to replace the sources or the portable ceiling
//
// Returns:
//   - Program: the linked program
//   - error: ErrCompile, ErrLink or ErrLimitExceeded wrapped with detail, or a pre-processor error
func NewProgram(ctx gpu.Context, options ...ProgramBuilderOption) (Program, error) {
	cfg := &programConfig{
		vertex:   meshVertexSource,
		fragment: meshFragmentSource,
		ceiling:  gpu.PortableLimits,
		strict:   gpu.DebugChecks,
	}
	for _, opt := range options {
		opt(cfg)
	}

	pp := NewPreProcessor()
	stages := []struct {
		stage  gpu.ShaderStage
		source string
	}{
		{gpu.StageVertex, cfg.vertex},
		{gpu.StageFragment, cfg.fragment},
	}

	var shaders []gpu.Shader
	release := func() {
		for _, s := range shaders {
			ctx.DeleteShader(s)
		}
	}

	for _, st := range stages {
		src, err := pp.Process(st.source)
		if err != nil {
			release()
			return nil, fmt.Errorf("shader: pre-process %s source: %w", st.stage, err)
		}
		s := ctx.CreateShader(st.stage)
		shaders = append(shaders, s)
		if err := ctx.CompileShader(s, src); err != nil {
			release()
			return nil, fmt.Errorf("%w: %s stage: %v", ErrCompile, st.stage, err)
		}
	}

	handle := ctx.CreateProgram()
	for _, s := range shaders {
		ctx.AttachShader(handle, s)
	}
	err := ctx.LinkProgram(handle)
	release()
	if err != nil {
		ctx.DeleteProgram(handle)
		return nil, fmt.Errorf("%w: %v", ErrLink, err)
	}

	p := &program{ctx: ctx, handle: handle}
	p.usage = measure(ctx, handle)
	if err := validate(p.usage, ctx.Limits(), cfg.ceiling, cfg.strict); err != nil {
		ctx.DeleteProgram(handle)
		return nil, err
	}

	p.projection = ctx.GetUniformLocation(handle, "projection")
	p.view = ctx.GetUniformLocation(handle, "view")

	ctx.UseProgram(handle)
	for unit, name := range samplerUniforms {
		ctx.Uniform1i(ctx.GetUniformLocation(handle, name), int32(unit))
	}
	if block, ok := ctx.GetUniformBlockIndex(handle, MaterialBlockName); ok {
		ctx.UniformBlockBinding(handle, block, MaterialBlockBinding)
	}
	return p, nil
}

func (p *program) Handle() gpu.Program {
	return p.handle
}

func (p *program) Use() {
	p.ctx.UseProgram(p.handle)
}

func (p *program) SetProjection(m mgl32.Mat4) {
	p.ctx.UniformMatrix4fv(p.projection, m)
}

func (p *program) SetView(m mgl32.Mat4) {
	p.ctx.UniformMatrix4fv(p.view, m)
}

func (p *program) InstanceSlots() [4]uint32 {
	return InstanceSlots()
}

func (p *program) Usage() Usage {
	return p.usage
}

func (p *program) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.ctx.DeleteProgram(p.handle)
}

// measure collects the resource footprint of a linked program.
func measure(ctx gpu.Context, handle gpu.Program) Usage {
	u := Usage{
		TextureUnits:  ctx.ActiveSamplers(handle),
		UniformBlocks: ctx.ActiveUniformBlocks(handle),
	}
	for i := 0; i < u.UniformBlocks; i++ {
		u.LargestBlock = max(u.LargestBlock, ctx.UniformBlockDataSize(handle, uint32(i)))
	}
	return u
}

// validate checks a program footprint against the driver limits and, when strict, against the portable
// ceiling. Exceeding the driver returns ErrLimitExceeded. Exceeding the ceiling panics.
func validate(u Usage, driver, ceiling gpu.Limits, strict bool) error {
	if err := exceeds(u, driver); err != "" {
		return fmt.Errorf("%w: %s", ErrLimitExceeded, err)
	}
	if strict {
		if err := exceeds(u, ceiling); err != "" {
			panic("shader: portable ceiling exceeded: " + err)
		}
	}
	return nil
}

func exceeds(u Usage, l gpu.Limits) string {
	switch {
	case u.TextureUnits > l.MaxTextureUnits:
		return fmt.Sprintf("%d texture units, limit %d", u.TextureUnits, l.MaxTextureUnits)
	case u.UniformBlocks > l.MaxUniformBlocks:
		return fmt.Sprintf("%d uniform blocks, limit %d", u.UniformBlocks, l.MaxUniformBlocks)
	case u.LargestBlock > l.MaxUniformBlockSize:
		return fmt.Sprintf("uniform block of %d bytes, limit %d", u.LargestBlock, l.MaxUniformBlockSize)
	}
	return ""
}
