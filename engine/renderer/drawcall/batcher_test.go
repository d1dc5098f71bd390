package drawcall

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/recorder"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSlots = [4]uint32{6, 7, 8, 9}

type fixture struct {
	ctx      recorder.Recorder
	material MaterialBinding
	indices  gpu.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := recorder.NewRecorder()

	vs := ctx.CreateShader(gpu.StageVertex)
	require.NoError(t, ctx.CompileShader(vs, "void main() {}"))
	p := ctx.CreateProgram()
	ctx.AttachShader(p, vs)
	require.NoError(t, ctx.LinkProgram(p))
	ctx.UseProgram(p)

	indices := ctx.CreateBuffer()
	ctx.BindBuffer(gpu.BufferTargetArray, indices)
	ctx.BufferData(gpu.BufferTargetArray, 12, make([]byte, 12), gpu.UsageStaticDraw)

	ubo := ctx.CreateBuffer()
	ctx.BindBuffer(gpu.BufferTargetUniform, ubo)
	ctx.BufferData(gpu.BufferTargetUniform, 48, nil, gpu.UsageStaticDraw)

	var m MaterialBinding
	for i := range m.Textures {
		m.Textures[i] = TextureBinding{Unit: uint32(i), Texture: ctx.CreateTexture(), Sampler: ctx.CreateSampler()}
	}
	m.UniformBuffer = ubo
	m.UniformSize = 48

	return &fixture{ctx: ctx, material: m, indices: indices}
}

func (f *fixture) call(count int) DrawCall {
	return DrawCall{
		VertexArray: f.ctx.CreateVertexArray(),
		Mode:        gpu.ModeTriangles,
		IndexBuffer: f.indices,
		IndexType:   gpu.TypeUnsignedShort,
		IndexCount:  count,
	}
}

func TestBatcherOneDrawPerDistinctDescriptor(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	calls := []DrawCall{f.call(3), f.call(6), f.call(3)}
	perCall := []int{4, 1, 7}
	total := 0
	for i, c := range calls {
		for n := 0; n < perCall[i]; n++ {
			b.Add(f.material, c, mgl32.Translate3D(float32(n), 0, 0))
			total++
		}
	}

	f.ctx.Reset()
	b.Draw(testSlots)

	draws := f.ctx.CallsTo("DrawElementsInstanced")
	require.Len(t, draws, len(calls))
	sum := 0
	for i, d := range draws {
		assert.Equal(t, perCall[i], d.Args[4], "draw %d instance count", i)
		sum += d.Args[4].(int)
	}
	assert.Equal(t, total, sum)
	assert.Equal(t, Stats{Materials: 1, Draws: 3, Instances: 12}, b.Stats())
}

func TestBatcherBindsEachMaterialOnce(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	other := f.material
	other.Textures[0].Texture = f.ctx.CreateTexture()

	c := f.call(3)
	b.Add(f.material, c, mgl32.Ident4())
	b.Add(other, c, mgl32.Ident4())
	b.Add(f.material, c, mgl32.Ident4())

	f.ctx.Reset()
	b.Draw(testSlots)

	assert.Len(t, f.ctx.CallsTo("BindBufferRange"), 2)
	assert.Len(t, f.ctx.CallsTo("BindSampler"), 2*MaterialTextureCount)
	draws := f.ctx.CallsTo("DrawElementsInstanced")
	require.Len(t, draws, 2)
	assert.Equal(t, 2, draws[0].Args[4])
	assert.Equal(t, 1, draws[1].Args[4])
}

func TestBatcherUploadsColumnMajorTransforms(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	c := f.call(3)
	m := mgl32.Translate3D(1, 2, 3)
	b.Add(f.material, c, m)
	b.Draw(testSlots)

	ptrs := f.ctx.CallsTo("VertexAttribPointer")
	require.Len(t, ptrs, 4)
	for i, p := range ptrs {
		assert.Equal(t, testSlots[i], p.Args[0])
		assert.Equal(t, 4, p.Args[1])
		assert.Equal(t, 64, p.Args[4])
		assert.Equal(t, 16*i, p.Args[5])
	}
	for _, loc := range testSlots {
		assert.Equal(t, uint32(1), f.ctx.Attrib(c.VertexArray, loc).Divisor)
	}

	attr := f.ctx.Attrib(c.VertexArray, testSlots[0])
	contents := f.ctx.BufferContents(attr.Buffer)
	assert.Equal(t, common.SliceToBytes([]mgl32.Mat4{m}), contents[:64])
	assert.Equal(t, f.indices, f.ctx.ElementBuffer(c.VertexArray))
}

func TestBatcherConstantAttributeOnlyWhenRequested(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	plain := f.call(3)
	colored := f.call(3)
	colored.HasConstantAttribute = true
	colored.ConstantAttribute = 5

	b.Add(f.material, plain, mgl32.Ident4())
	b.Draw(testSlots)
	assert.Empty(t, f.ctx.CallsTo("VertexAttrib4f"))

	b.Clear()
	b.Add(f.material, colored, mgl32.Ident4())
	b.Draw(testSlots)
	consts := f.ctx.CallsTo("VertexAttrib4f")
	require.Len(t, consts, 1)
	assert.Equal(t, []any{uint32(5), float32(1), float32(1), float32(1), float32(1)}, consts[0].Args)
}

func TestBatcherFrontFaceIsPartOfTheKey(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	ccw := f.call(3)
	cw := ccw
	cw.FrontFace = gpu.FrontFaceCW

	b.Add(f.material, ccw, mgl32.Ident4())
	b.Add(f.material, cw, mgl32.Scale3D(-1, 1, 1))
	f.ctx.Reset()
	b.Draw(testSlots)

	faces := f.ctx.CallsTo("FrontFace")
	require.Len(t, faces, 2)
	assert.Equal(t, gpu.FrontFaceCCW, faces[0].Args[0])
	assert.Equal(t, gpu.FrontFaceCW, faces[1].Args[0])
}

func TestBatcherClearKeepsNothingQueued(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	c := f.call(3)
	b.Add(f.material, c, mgl32.Ident4())
	b.Draw(testSlots)
	b.Clear()

	f.ctx.Reset()
	b.Draw(testSlots)
	assert.Empty(t, f.ctx.CallsTo("DrawElementsInstanced"))
	assert.Empty(t, f.ctx.CallsTo("BindBufferRange"))
	assert.Equal(t, Stats{}, b.Stats())

	b.Add(f.material, c, mgl32.Ident4())
	f.ctx.Reset()
	b.Draw(testSlots)
	ptrs := f.ctx.CallsTo("VertexAttribPointer")
	require.NotEmpty(t, ptrs)
	assert.Equal(t, 0, ptrs[0].Args[5], "instance arena restarts at offset 0")
}

func TestBatcherPrune(t *testing.T) {
	f := newFixture(t)
	b := NewBatcher(f.ctx)

	stale := f.call(3)
	live := f.call(6)
	b.Add(f.material, stale, mgl32.Ident4())
	b.Clear()
	b.Add(f.material, live, mgl32.Ident4())
	b.Prune()

	impl := b.(*batcher)
	require.Len(t, impl.groups, 1)
	require.Len(t, impl.groups[0].batches, 1)
	assert.Equal(t, live, impl.groups[0].batches[0].call)

	b.Add(f.material, live, mgl32.Ident4())
	b.Draw(testSlots)
	assert.Equal(t, 2, b.Stats().Instances)
}
