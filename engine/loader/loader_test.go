package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/recorder"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const binName = "asset.bin"

// asset builds a glTF document in memory. Every buffer view lands in one buffer named binName.
type asset struct {
	doc       map[string]any
	prim      map[string]any
	bin       []byte
	views     []any
	accessors []any
}

// newTriangle is one node with one indexed triangle and no material.
func newTriangle() *asset {
	a := &asset{}
	pos := a.accessor(a.view(common.SliceToBytes([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})), gltfComponentTypeFloat, 3, "VEC3")
	idx := a.accessor(a.view(common.SliceToBytes([]uint16{0, 1, 2})), gltfComponentTypeUnsignedShort, 3, "SCALAR")

	a.prim = map[string]any{"attributes": map[string]any{"POSITION": pos}, "indices": idx}
	a.doc = map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []any{0}}},
		"nodes":  []any{map[string]any{"mesh": 0}},
		"meshes": []any{map[string]any{"primitives": []any{a.prim}}},
	}
	return a
}

// view appends data 4-byte aligned and returns the new buffer view index.
func (a *asset) view(data []byte) int {
	for len(a.bin)%4 != 0 {
		a.bin = append(a.bin, 0)
	}
	a.views = append(a.views, map[string]any{"buffer": 0, "byteOffset": len(a.bin), "byteLength": len(data)})
	a.bin = append(a.bin, data...)
	return len(a.views) - 1
}

func (a *asset) accessor(view, componentType, count int, typ string) int {
	a.accessors = append(a.accessors, map[string]any{
		"bufferView": view, "componentType": componentType, "count": count, "type": typ,
	})
	return len(a.accessors) - 1
}

func (a *asset) finish() {
	a.doc["bufferViews"] = a.views
	a.doc["accessors"] = a.accessors
	if _, ok := a.doc["buffers"]; !ok {
		a.doc["buffers"] = []any{map[string]any{"uri": binName, "byteLength": len(a.bin)}}
	}
}

func (a *asset) json(t *testing.T) []byte {
	t.Helper()
	a.finish()
	data, err := json.Marshal(a.doc)
	require.NoError(t, err)
	return data
}

func (a *asset) resources() map[string][]byte {
	return map[string][]byte{binName: a.bin}
}

// glb packs the document and its buffer into a GLB container with buffer 0 as the BIN chunk.
func (a *asset) glb(t *testing.T) []byte {
	t.Helper()
	a.doc["buffers"] = []any{map[string]any{"byteLength": len(a.bin)}}
	js := a.json(t)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), a.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&out, le, gltfGLBHeader{Magic: gltfGLBMagic, Version: 2, Length: uint32(12 + 8 + len(js) + 8 + len(bin))})
	_ = binary.Write(&out, le, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON})
	out.Write(js)
	_ = binary.Write(&out, le, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(bin)
	return out.Bytes()
}

func pngImage(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestLoader(ctx gpu.Context) Loader {
	return NewLoader(ctx, BackendTypeGLTF, WithWorkers(2))
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	g, err := newTestLoader(ctx).Load("triangle", a.json(t), a.resources())
	require.NoError(t, err)

	require.Len(t, g.Meshes(), 1)
	require.Len(t, g.Materials(), 1, "only the implicit default material")
	call := g.Meshes()[0].Primitives[0].DrawCall
	assert.Equal(t, 3, call.IndexCount)
	assert.Equal(t, gpu.TypeUnsignedShort, call.IndexType)
	assert.Equal(t, gpu.ModeTriangles, call.Mode)
	assert.Equal(t, common.SliceToBytes([]uint16{0, 1, 2}), ctx.BufferContents(call.IndexBuffer)[call.IndexOffset:call.IndexOffset+6])

	pos := ctx.Attrib(call.VertexArray, shader.AttribPosition)
	assert.True(t, pos.Enabled)
	assert.Equal(t, 3, pos.Components)
	assert.Equal(t, gpu.TypeFloat, pos.Type)
	assert.Equal(t, 0, pos.Offset)

	prog, err := shader.NewProgram(ctx)
	require.NoError(t, err)
	prog.Use()
	b := drawcall.NewBatcher(ctx)
	g.Draw(b, mgl32.Ident4())
	b.Draw(prog.InstanceSlots())

	draws := ctx.CallsTo("DrawElementsInstanced")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gpu.ModeTriangles, 3, gpu.TypeUnsignedShort, call.IndexOffset, 1}, draws[0].Args)

	constant := ctx.CallsTo("VertexAttrib4f")
	require.Len(t, constant, 1)
	assert.Equal(t, []any{shader.AttribColor0, float32(1), float32(1), float32(1), float32(1)}, constant[0].Args)
}

func TestLoadColorAttributeDisablesConstant(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	colors := a.accessor(a.view(common.SliceToBytes([]float32{1, 0, 0, 0, 1, 0, 0, 0, 1})), gltfComponentTypeFloat, 3, "VEC3")
	a.prim["attributes"].(map[string]any)["COLOR_0"] = colors

	g, err := newTestLoader(ctx).Load("colored", a.json(t), a.resources())
	require.NoError(t, err)
	call := g.Meshes()[0].Primitives[0].DrawCall
	assert.False(t, call.HasConstantAttribute)
	assert.True(t, ctx.Attrib(call.VertexArray, shader.AttribColor0).Enabled)

	prog, err := shader.NewProgram(ctx)
	require.NoError(t, err)
	prog.Use()
	b := drawcall.NewBatcher(ctx)
	g.Draw(b, mgl32.Ident4())
	b.Draw(prog.InstanceSlots())
	assert.Empty(t, ctx.CallsTo("VertexAttrib4f"))
}

func TestLoadGLB(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	// 36 bytes of positions + 6 bytes of indices; the BIN chunk is padded to 44
	g, err := newTestLoader(ctx).Load("triangle.glb", a.glb(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Meshes()[0].Primitives[0].DrawCall.IndexCount)
}

func TestLoadDataURI(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	a.doc["buffers"] = []any{map[string]any{
		"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin),
		"byteLength": len(a.bin),
	}}
	_, err := newTestLoader(ctx).Load("inline", a.json(t), nil)
	require.NoError(t, err)
}

func TestLoadGeneratesIndicesForNonIndexedPrimitives(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	delete(a.prim, "indices")

	g, err := newTestLoader(ctx).Load("soup", a.json(t), a.resources())
	require.NoError(t, err)
	call := g.Meshes()[0].Primitives[0].DrawCall
	assert.Equal(t, 3, call.IndexCount)
	assert.Equal(t, gpu.TypeUnsignedByte, call.IndexType)
	assert.Equal(t, []byte{0, 1, 2}, ctx.BufferContents(call.IndexBuffer)[call.IndexOffset:call.IndexOffset+3])
}

func TestLoadNodeTransforms(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	m := mgl32.Translate3D(1, 2, 3)
	a.doc["nodes"] = []any{
		map[string]any{"mesh": 0, "children": []any{1}, "matrix": m[:]},
		map[string]any{"translation": []float32{0, 5, 0}, "rotation": []float32{0, 0, 0, 1}, "scale": []float32{2, 2, 2}},
	}

	g, err := newTestLoader(ctx).Load("nodes", a.json(t), a.resources())
	require.NoError(t, err)
	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, m, nodes[0].Local)
	assert.Equal(t, mgl32.Vec3{}, nodes[0].Translation)
	assert.True(t, mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(2, 2, 2)).ApproxEqual(nodes[1].Local))
	assert.Equal(t, scene.NoMesh, nodes[1].Mesh)
	assert.Equal(t, []int{1}, nodes[0].Children)
}

func TestLoadMaterials(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	base := a.view(pngImage(t, 4, 4, color.RGBA{200, 10, 10, 255}))
	a.doc["images"] = []any{
		map[string]any{"bufferView": base, "mimeType": "image/png"},
		map[string]any{"uri": "orm.png"},
	}
	a.doc["samplers"] = []any{map[string]any{"magFilter": gltfFilterNearest, "minFilter": gltfFilterNearest, "wrapS": gltfWrapClampToEdge}}
	a.doc["textures"] = []any{
		map[string]any{"source": 0, "sampler": 0},
		map[string]any{"source": 1},
	}
	a.doc["materials"] = []any{
		map[string]any{
			"pbrMetallicRoughness": map[string]any{
				"baseColorFactor":          []float32{0.5, 0.5, 0.5, 1},
				"baseColorTexture":         map[string]any{"index": 0},
				"metallicRoughnessTexture": map[string]any{"index": 1},
				"roughnessFactor":          0.25,
			},
			"emissiveFactor": []float32{1, 0, 0},
		},
		map[string]any{},
	}
	a.prim["material"] = 0
	resources := a.resources()
	resources["orm.png"] = pngImage(t, 8, 2, color.RGBA{0, 128, 255, 255})

	g, err := newTestLoader(ctx).Load("materials", a.json(t), resources)
	require.NoError(t, err)
	mats := g.Materials()
	require.Len(t, mats, 3, "two declared plus the default")

	first := mats[0]
	levels := ctx.TextureLevels(first.Textures[shader.UnitBaseColor].Texture)
	require.Len(t, levels, 3, "4x4 has three levels")
	assert.Equal(t, gpu.FormatSRGB8Alpha8, levels[0].Format)
	assert.Equal(t, 1, levels[2].Width)
	assert.Equal(t, recorder.SamplerState{Mag: gpu.FilterNearest, Min: gpu.FilterNearest, WrapS: gpu.WrapClampToEdge, WrapT: gpu.WrapRepeat},
		ctx.Sampler(first.Textures[shader.UnitBaseColor].Sampler))

	orm := ctx.TextureLevels(first.Textures[shader.UnitMetallicRoughness].Texture)
	require.Len(t, orm, 2, "the smaller side of 8x2 halves once")
	assert.Equal(t, gpu.FormatRGBA8, orm[0].Format)
	maxLevel, ok := ctx.TextureMaxLevel(first.Textures[shader.UnitMetallicRoughness].Texture)
	require.True(t, ok)
	assert.Equal(t, 1, maxLevel, "the chain ends at 4x1, so sampling must stop there")
	maxLevel, ok = ctx.TextureMaxLevel(first.Textures[shader.UnitNormal].Texture)
	require.True(t, ok)
	assert.Equal(t, 0, maxLevel)
	assert.Equal(t, recorder.SamplerState{Mag: gpu.FilterLinear, Min: gpu.FilterLinearMipmapLinear},
		ctx.Sampler(first.Textures[shader.UnitMetallicRoughness].Sampler))

	normal := ctx.TextureLevels(first.Textures[shader.UnitNormal].Texture)
	require.Len(t, normal, 1)
	assert.Equal(t, fallbackNormal[:], normal[0].Pixels)
	emissive := ctx.TextureLevels(first.Textures[shader.UnitEmissive].Texture)
	assert.Equal(t, fallbackBlack[:], emissive[0].Pixels)

	want := shader.DefaultMaterialUniform()
	want.BaseColorFactor = [4]float32{0.5, 0.5, 0.5, 1}
	want.RoughnessFactor = 0.25
	want.EmissiveFactor = [4]float32{1, 0, 0, 1}
	ubo := ctx.BufferContents(first.UniformBuffer)
	assert.Equal(t, 0, first.UniformOffset)
	assert.Equal(t, want.Marshal(), ubo[:48])

	def := shader.DefaultMaterialUniform()
	assert.Equal(t, 256, mats[1].UniformOffset)
	assert.Equal(t, 512, mats[2].UniformOffset)
	assert.Equal(t, def.Marshal(), ubo[512:560])
	for _, m := range mats {
		assert.Equal(t, 48, m.UniformSize)
		assert.Equal(t, shader.MaterialBlockBinding, m.UniformBinding)
	}
}

func TestLoadSkipsUnreferencedImages(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	a.doc["images"] = []any{map[string]any{"uri": "unused.png"}}

	g, err := newTestLoader(ctx).Load("unused", a.json(t), a.resources())
	require.NoError(t, err, "the missing image is never read")
	assert.Len(t, g.Resources().Textures, 4, "fallbacks only")
}

func TestLoadAnimations(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	times := a.accessor(a.view(common.SliceToBytes([]float32{0, 2})), gltfComponentTypeFloat, 2, "SCALAR")
	values := a.accessor(a.view(common.SliceToBytes([]float32{0, 0, 0, 4, 0, 0})), gltfComponentTypeFloat, 2, "VEC3")
	a.doc["animations"] = []any{map[string]any{
		"name":     "slide",
		"samplers": []any{map[string]any{"input": times, "output": values}},
		"channels": []any{
			map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}},
			map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "weights"}},
		},
	}}

	g, err := newTestLoader(ctx).Load("animated", a.json(t), a.resources())
	require.NoError(t, err)
	require.Len(t, g.Animations(), 1)
	anim := g.Animations()[0]
	assert.Equal(t, "slide", anim.Name)
	assert.Equal(t, float32(2), anim.Duration)
	require.Len(t, anim.Channels, 1, "weights channels are skipped")

	m, ok := g.Pose(0, 1).LocalTransform(0)
	require.True(t, ok)
	assert.True(t, mgl32.Translate3D(2, 0, 0).ApproxEqual(m))
}

func TestLoadRejectsImageInBothRoles(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := newTriangle()
	a.doc["images"] = []any{
		map[string]any{"uri": "0.png"}, map[string]any{"uri": "1.png"},
		map[string]any{"uri": "2.png"}, map[string]any{"uri": "3.png"},
	}
	a.doc["textures"] = []any{map[string]any{"source": 3}}
	a.doc["materials"] = []any{map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
		"normalTexture":        map[string]any{"index": 0},
	}}

	_, err := newTestLoader(ctx).Load("conflict", a.json(t), a.resources())
	require.ErrorIs(t, err, ErrImageRoleConflict)
	assert.Contains(t, err.Error(), "image 3")
	assert.Equal(t, 0, ctx.Live(), "fallback textures and buffers are released")
}

func TestLoadRejectsMalformedAssets(t *testing.T) {
	// edit changes the resource table, which is built after mutate has appended its views.
	tests := []struct {
		name   string
		mutate func(a *asset)
		edit   func(a *asset, res map[string][]byte)
		err    error
	}{
		{name: "byte stride", mutate: func(a *asset) {
			a.finish()
			a.views[0].(map[string]any)["byteStride"] = 12
		}, err: ErrByteStride},
		{name: "unknown semantic", mutate: func(a *asset) {
			a.prim["attributes"].(map[string]any)["JOINTS_0"] = 0
		}, err: ErrUnsupportedSemantic},
		{name: "float indices", mutate: func(a *asset) {
			a.prim["indices"] = a.accessor(a.view(common.SliceToBytes([]float32{0, 1, 2})), gltfComponentTypeFloat, 3, "SCALAR")
		}, err: ErrUnsupportedIndexType},
		{name: "index past vertex count", mutate: func(a *asset) {
			a.prim["indices"] = a.accessor(a.view([]byte{0, 1, 5}), gltfComponentTypeUnsignedByte, 3, "SCALAR")
		}, err: ErrIndexOutOfRange},
		{name: "matrix accessor", mutate: func(a *asset) {
			a.prim["attributes"].(map[string]any)["NORMAL"] = a.accessor(0, gltfComponentTypeFloat, 1, "MAT2")
		}, err: ErrUnsupportedAccessor},
		{name: "texCoord 1", mutate: func(a *asset) {
			a.doc["images"] = []any{map[string]any{"uri": "x.png"}}
			a.doc["textures"] = []any{map[string]any{"source": 0}}
			a.doc["materials"] = []any{map[string]any{"emissiveTexture": map[string]any{"index": 0, "texCoord": 1}}}
		}, err: ErrUnsupportedTexCoord},
		{name: "missing image", mutate: func(a *asset) {
			a.doc["images"] = []any{map[string]any{"uri": "x.png"}}
			a.doc["textures"] = []any{map[string]any{"source": 0}}
			a.doc["materials"] = []any{map[string]any{"emissiveTexture": map[string]any{"index": 0}}}
		}, err: ErrMissingResource},
		{name: "missing buffer", edit: func(_ *asset, res map[string][]byte) {
			delete(res, binName)
		}, err: ErrMissingResource},
		{name: "short buffer", edit: func(a *asset, res map[string][]byte) {
			res[binName] = a.bin[:len(a.bin)-1]
		}, err: ErrBufferLength},
		{name: "node cycle", mutate: func(a *asset) {
			a.doc["nodes"] = []any{map[string]any{"mesh": 0, "children": []any{1}}, map[string]any{"children": []any{0}}}
		}, err: ErrNodeCycle},
		{name: "mesh out of range", mutate: func(a *asset) {
			a.doc["nodes"] = []any{map[string]any{"mesh": 3}}
		}, err: ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := recorder.NewRecorder()
			a := newTriangle()
			if tt.mutate != nil {
				tt.mutate(a)
			}
			document := a.json(t)
			res := a.resources()
			if tt.edit != nil {
				tt.edit(a, res)
			}

			_, err := newTestLoader(ctx).Load(tt.name, document, res)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, ctx.Live())
		})
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	ctx := recorder.NewRecorder()
	l := newTestLoader(ctx)

	_, err := l.Load("text", []byte("not a document"), nil)
	assert.ErrorIs(t, err, errUnsupportedFormat)

	_, err = l.Load("version", []byte(`{"asset":{"version":"1.0"}}`), nil)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	glb := []byte{'g', 'l', 'T', 'F', 1, 0, 0, 0, 12, 0, 0, 0}
	_, err = l.Load("glb", glb, nil)
	assert.ErrorIs(t, err, errInvalidGLBVersion)
	assert.Equal(t, 0, ctx.Live())
}

func TestLoaderCache(t *testing.T) {
	ctx := recorder.NewRecorder()
	l := newTestLoader(ctx)
	a := newTriangle()
	doc, res := a.json(t), a.resources()

	first, err := l.Load("tri", doc, res)
	require.NoError(t, err)
	again, err := l.Load("tri", doc, res)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Same(t, first, l.Get("tri"))
	live := ctx.Live()

	reloaded, err := l.Reload("tri", doc, res)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), reloaded.ID())
	assert.Equal(t, live, ctx.Live(), "the replaced asset is destroyed")

	_, err = l.Reload("tri", []byte("{}"), nil)
	require.Error(t, err)
	assert.Same(t, reloaded, l.Get("tri"), "a failed reload keeps the cached asset")

	_, err = l.Load("other", doc, res)
	require.NoError(t, err)
	assert.Len(t, l.Assets(), 2)

	l.Unload("tri")
	assert.Nil(t, l.Get("tri"))
	l.Destroy()
	assert.Empty(t, l.Assets())
	assert.Equal(t, 0, ctx.Live())
}

func TestExternalURIs(t *testing.T) {
	a := newTriangle()
	a.doc["images"] = []any{
		map[string]any{"uri": "albedo.png"},
		map[string]any{"uri": "data:image/png;base64,AAAA"},
		map[string]any{"uri": binName},
	}

	uris, err := ExternalURIs(a.json(t))
	require.NoError(t, err)
	assert.Equal(t, []string{binName, "albedo.png"}, uris)

	uris, err = ExternalURIs(newTriangle().glb(t))
	require.NoError(t, err)
	assert.Empty(t, uris)
}
