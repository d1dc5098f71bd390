package recorder

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderElementBindingIsVertexArrayState(t *testing.T) {
	r := NewRecorder()
	vao := r.CreateVertexArray()
	ebo := r.CreateBuffer()

	r.BindVertexArray(vao)
	r.BindBuffer(gpu.BufferTargetElementArray, ebo)
	r.BindVertexArray(0)

	assert.Equal(t, ebo, r.ElementBuffer(vao))
	assert.Equal(t, gpu.Buffer(0), r.ElementBuffer(0))
}

func TestRecorderBufferContents(t *testing.T) {
	r := NewRecorder()
	b := r.CreateBuffer()
	r.BindBuffer(gpu.BufferTargetArray, b)
	r.BufferData(gpu.BufferTargetArray, 8, nil, gpu.UsageDynamicDraw)
	r.BufferSubData(gpu.BufferTargetArray, 2, []byte{1, 2, 3})

	assert.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, r.BufferContents(b))
	assert.Equal(t, gpu.UsageDynamicDraw, r.BufferUsage(b))
	assert.Len(t, r.CallsTo("BufferSubData"), 1)
}

func TestRecorderPanicsOnInvalidCalls(t *testing.T) {
	r := NewRecorder()
	b := r.CreateBuffer()
	r.BindBuffer(gpu.BufferTargetArray, b)
	r.BufferData(gpu.BufferTargetArray, 4, nil, gpu.UsageStaticDraw)

	assert.Panics(t, func() { r.BufferSubData(gpu.BufferTargetArray, 2, []byte{1, 2, 3}) })
	assert.Panics(t, func() { r.VertexAttribPointer(0, 3, gpu.TypeFloat, false, 0, 0) })
	assert.Panics(t, func() { r.DrawElementsInstanced(gpu.ModeTriangles, 3, gpu.TypeUnsignedShort, 0, 1) })

	r.DeleteBuffer(b)
	assert.Panics(t, func() { r.DeleteBuffer(b) })
}

func TestRecorderUniformDiscovery(t *testing.T) {
	r := NewRecorder()
	vs := r.CreateShader(gpu.StageVertex)
	require.NoError(t, r.CompileShader(vs, "uniform mat4 projection;\nuniform mat4 view;\n"))
	fs := r.CreateShader(gpu.StageFragment)
	require.NoError(t, r.CompileShader(fs, "layout(std140) uniform Material {\n vec4 c;\n};\nuniform sampler2D tex;\n"))

	p := r.CreateProgram()
	r.AttachShader(p, vs)
	r.AttachShader(p, fs)
	require.NoError(t, r.LinkProgram(p))

	assert.NotEqual(t, gpu.NoUniform, r.GetUniformLocation(p, "projection"))
	assert.NotEqual(t, gpu.NoUniform, r.GetUniformLocation(p, "tex"))
	assert.Equal(t, gpu.NoUniform, r.GetUniformLocation(p, "missing"))

	idx, ok := r.GetUniformBlockIndex(p, "Material")
	require.True(t, ok)
	r.UniformBlockBinding(p, idx, 3)
	binding, ok := r.BlockBinding(p, "Material")
	require.True(t, ok)
	assert.Equal(t, uint32(3), binding)
	assert.Equal(t, 1, r.ActiveUniformBlocks(p))
}

func TestRecorderInjectedFailures(t *testing.T) {
	r := NewRecorder(WithCompileError(gpu.StageFragment, "0:1: syntax error"))
	fs := r.CreateShader(gpu.StageFragment)
	err := r.CompileShader(fs, "void main() {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")

	vs := r.CreateShader(gpu.StageVertex)
	assert.NoError(t, r.CompileShader(vs, "void main() {}"))
}

func TestRecorderLive(t *testing.T) {
	r := NewRecorder()
	b := r.CreateBuffer()
	tex := r.CreateTexture()
	s := r.CreateSampler()
	assert.Equal(t, 3, r.Live())

	r.DeleteBuffer(b)
	r.DeleteTexture(tex)
	r.DeleteSampler(s)
	assert.Equal(t, 0, r.Live())
}

func TestRecorderTextureMaxLevel(t *testing.T) {
	r := NewRecorder()
	assert.Panics(t, func() { r.TexMaxLevel(0) }, "no texture bound")

	tex := r.CreateTexture()
	r.ActiveTexture(0)
	r.BindTexture(tex)
	_, ok := r.TextureMaxLevel(tex)
	assert.False(t, ok)

	r.TexImage2D(0, gpu.FormatRGBA8, 2, 1, make([]byte, 8))
	r.TexImage2D(1, gpu.FormatRGBA8, 1, 1, make([]byte, 4))
	r.TexMaxLevel(1)
	level, ok := r.TextureMaxLevel(tex)
	require.True(t, ok)
	assert.Equal(t, 1, level)

	r.DeleteTexture(tex)
	_, ok = r.TextureMaxLevel(tex)
	assert.False(t, ok)
}
