package shader

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/recorder"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgramResolvesUniforms(t *testing.T) {
	ctx := recorder.NewRecorder()
	p, err := NewProgram(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, ctx.Live(), "shader objects are deleted after link")
	assert.Len(t, ctx.CallsTo("DeleteShader"), 2)

	for unit, name := range samplerUniforms {
		v, ok := ctx.UniformValue(p.Handle(), name)
		require.True(t, ok, name)
		assert.Equal(t, int32(unit), v, name)
	}

	binding, ok := ctx.BlockBinding(p.Handle(), MaterialBlockName)
	require.True(t, ok)
	assert.Equal(t, MaterialBlockBinding, binding)

	proj := mgl32.Perspective(1, 1, 0.1, 10)
	p.SetProjection(proj)
	v, ok := ctx.UniformValue(p.Handle(), "projection")
	require.True(t, ok)
	assert.Equal(t, [16]float32(proj), v)

	assert.Equal(t, Usage{TextureUnits: 5, UniformBlocks: 1, LargestBlock: 48}, p.Usage())
	assert.Equal(t, [4]uint32{6, 7, 8, 9}, p.InstanceSlots())

	p.Destroy()
	p.Destroy()
	assert.Equal(t, 0, ctx.Live())
}

func TestNewProgramSkipsAbsentUniforms(t *testing.T) {
	ctx := recorder.NewRecorder()
	p, err := NewProgram(ctx,
		WithVertexSource("#version 330 core\nvoid main() { gl_Position = vec4(0.0); }"),
		WithFragmentSource("#version 330 core\nout vec4 c;\nvoid main() { c = vec4(1.0); }"),
	)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.SetProjection(mgl32.Ident4())
		p.SetView(mgl32.Ident4())
	})
	assert.Empty(t, ctx.CallsTo("UniformBlockBinding"))
	assert.Equal(t, 0, p.Usage().UniformBlocks)
	assert.Equal(t, 0, p.Usage().TextureUnits)
}

func TestNewProgramCountsLinkedSamplers(t *testing.T) {
	var frag strings.Builder
	frag.WriteString("#version 330 core\nout vec4 c;\n")
	for i := range 6 {
		frag.WriteString("uniform sampler2D extra" + string(rune('A'+i)) + ";\n")
	}
	frag.WriteString("uniform usampler2D ids;\nvoid main() { c = vec4(1.0); }\n")
	vert := "#version 330 core\nvoid main() { gl_Position = vec4(0.0); }"

	ctx := recorder.NewRecorder()
	p, err := NewProgram(ctx, WithVertexSource(vert), WithFragmentSource(frag.String()))
	require.NoError(t, err)
	assert.Equal(t, 7, p.Usage().TextureUnits)

	limited := recorder.NewRecorder(recorder.WithLimits(gpu.Limits{
		MaxTextureUnits: 6, MaxUniformBlocks: 12, MaxUniformBlockSize: 16384,
		UniformBufferOffsetAlignment: 256, MaxVertexAttribs: 16,
	}))
	_, err = NewProgram(limited, WithVertexSource(vert), WithFragmentSource(frag.String()))
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.Contains(t, err.Error(), "7 texture units")
	assert.Equal(t, 0, limited.Live())
}

func TestNewProgramCompileError(t *testing.T) {
	ctx := recorder.NewRecorder(recorder.WithCompileError(gpu.StageFragment, "0:12: 'vec5' : undeclared identifier"))
	_, err := NewProgram(ctx)

	require.ErrorIs(t, err, ErrCompile)
	assert.Contains(t, err.Error(), "fragment")
	assert.Contains(t, err.Error(), "vec5")
	assert.Equal(t, 0, ctx.Live())
}

func TestNewProgramLinkError(t *testing.T) {
	ctx := recorder.NewRecorder(recorder.WithLinkError("varying vColor not written"))
	_, err := NewProgram(ctx)

	require.ErrorIs(t, err, ErrLink)
	assert.Contains(t, err.Error(), "vColor")
	assert.Equal(t, 0, ctx.Live())
}

func TestNewProgramDriverLimits(t *testing.T) {
	tests := []struct {
		name    string
		options []recorder.RecorderBuilderOption
	}{
		{
			name: "texture units",
			options: []recorder.RecorderBuilderOption{recorder.WithLimits(gpu.Limits{
				MaxTextureUnits: 4, MaxUniformBlocks: 12, MaxUniformBlockSize: 16384,
				UniformBufferOffsetAlignment: 256, MaxVertexAttribs: 16,
			})},
		},
		{
			name: "uniform blocks",
			options: []recorder.RecorderBuilderOption{recorder.WithLimits(gpu.Limits{
				MaxTextureUnits: 16, MaxUniformBlocks: 0, MaxUniformBlockSize: 16384,
				UniformBufferOffsetAlignment: 256, MaxVertexAttribs: 16,
			})},
		},
		{
			name:    "block size",
			options: []recorder.RecorderBuilderOption{recorder.WithUniformBlockSize(1 << 20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := recorder.NewRecorder(tt.options...)
			_, err := NewProgram(ctx)
			require.ErrorIs(t, err, ErrLimitExceeded)
			assert.Equal(t, 0, ctx.Live())
		})
	}
}

func TestNewProgramPortableCeiling(t *testing.T) {
	ctx := recorder.NewRecorder(recorder.WithUniformBlockSize(32768))

	assert.Panics(t, func() {
		_, _ = NewProgram(ctx, WithPortableCeiling(gpu.PortableLimits, true))
	})

	p, err := NewProgram(ctx, WithPortableCeiling(gpu.PortableLimits, false))
	require.NoError(t, err)
	assert.Equal(t, 32768, p.Usage().LargestBlock)
}

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("#version 330 core\n//@oxy:define layout\n//@oxy:include material\nvoid main() {}")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#version 330 core", lines[0])
	assert.Contains(t, out, "#define ATTRIB_MODEL_TRANSFORM 6")
	assert.Contains(t, out, "#define UNIT_EMISSIVE 4")
	assert.Contains(t, out, "uniform Material {")
	assert.True(t, strings.HasSuffix(out, "void main() {}"))
	assert.NotContains(t, out, "@oxy:")

	require.Len(t, pp.Annotations(), 2)
	assert.Equal(t, Annotation{Type: annotationTypeDefine, Arg: AnnotationArgLayout, Line: 2}, pp.Annotations()[0])
}

func TestPreProcessorRejectsUnknownArguments(t *testing.T) {
	pp := NewPreProcessor()
	for _, src := range []string{
		"//@oxy:include camera",
		"//@oxy:define colors",
		"//@oxy:provider 0 0 material",
		"//@oxy:include",
	} {
		_, err := pp.Process(src)
		assert.Error(t, err, src)
	}
}

func TestMaterialUniformLayout(t *testing.T) {
	u := DefaultMaterialUniform()
	u.BaseColorFactor = [4]float32{0.5, 0.25, 1, 1}
	u.RoughnessFactor = 0.5
	u.EmissiveFactor = [4]float32{1, 0, 0, 1}

	assert.Equal(t, 48, u.Size())
	buf := u.Marshal()
	require.Len(t, buf, 48)

	floats := make([]float32, 12)
	for i := range floats {
		floats[i] = mathFloat(buf[4*i : 4*i+4])
	}
	assert.Equal(t, []float32{0.5, 0.25, 1, 1, 1, 0.5, 1, 1, 1, 0, 0, 1}, floats)
}

func mathFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func TestMeshShadersToleratePositionOnlyGeometry(t *testing.T) {
	assert.Contains(t, meshVertexSource, "dot(normal, normal) > 0.0 ?")
	assert.Contains(t, meshVertexSource, "dot(tangent.xyz, tangent.xyz) > 0.0")
	assert.Contains(t, meshFragmentSource, "hasNormal ? normalize(vNormal) : normalize(lightDirection)")
	assert.NotContains(t, meshVertexSource, "vNormal = normalize(", "an unguarded normalize of a zero normal is NaN")
}
