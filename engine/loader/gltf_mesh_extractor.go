package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

var errUnsupportedMode = errors.New("unsupported primitive mode")

// attributeLocations maps the vertex attribute semantics the mesh shader consumes to their locations.
var attributeLocations = map[string]uint32{
	"POSITION":   shader.AttribPosition,
	"NORMAL":     shader.AttribNormal,
	"TANGENT":    shader.AttribTangent,
	"TEXCOORD_0": shader.AttribTexCoord0,
	"TEXCOORD_1": shader.AttribTexCoord1,
	"COLOR_0":    shader.AttribColor0,
}

// uploadBuffers copies every document buffer into its own driver buffer. Vertex attributes read straight
// from these.
func (im *gltfImport) uploadBuffers() {
	im.buffers = make([]gpu.Buffer, len(im.doc.Buffers))
	for i, b := range im.doc.Buffers {
		buf := im.ctx.CreateBuffer()
		im.res.Buffers = append(im.res.Buffers, buf)
		im.buffers[i] = buf

		im.ctx.BindBuffer(gpu.BufferTargetArray, buf)
		im.ctx.BufferData(gpu.BufferTargetArray, len(b.Data), b.Data, gpu.UsageStaticRead)
	}
	im.ctx.BindBuffer(gpu.BufferTargetArray, 0)
}

// extractMeshes builds one vertex array per primitive and copies the index data of every primitive into a
// shared index arena.
//
// Returns:
//   - []scene.Mesh: one mesh per document mesh, primitives in document order
//   - error: error if a primitive uses an unsupported layout
func (im *gltfImport) extractMeshes() ([]scene.Mesh, error) {
	im.indices = arena.NewArena(im.ctx,
		arena.WithTarget(gpu.BufferTargetElementArray),
		arena.WithUsage(gpu.UsageStaticDraw),
		arena.WithAlignment(4),
		arena.WithGrowthPolicy(im.growth),
	)
	im.res.Arenas = append(im.res.Arenas, im.indices)

	meshes := make([]scene.Mesh, len(im.doc.Meshes))
	for mi, m := range im.doc.Meshes {
		meshes[mi] = scene.Mesh{Name: m.Name, Primitives: make([]scene.Primitive, 0, len(m.Primitives))}
		for pi, prim := range m.Primitives {
			p, err := im.extractPrimitive(prim)
			if err != nil {
				im.ctx.BindVertexArray(0)
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			meshes[mi].Primitives = append(meshes[mi].Primitives, p)
		}
	}
	im.ctx.BindVertexArray(0)
	im.ctx.BindBuffer(gpu.BufferTargetArray, 0)
	return meshes, nil
}

func (im *gltfImport) extractPrimitive(prim gltfPrimitive) (scene.Primitive, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode < 0 || mode > 6 {
		return scene.Primitive{}, fmt.Errorf("%w: %d", errUnsupportedMode, mode)
	}

	// The implicit default material sits after the declared ones.
	material := len(im.doc.Materials)
	if prim.Material != nil {
		material = *prim.Material
		if material < 0 || material >= len(im.doc.Materials) {
			return scene.Primitive{}, fmt.Errorf("material %d: %w", material, ErrIndexOutOfRange)
		}
	}

	if _, ok := prim.Attributes["POSITION"]; !ok {
		return scene.Primitive{}, fmt.Errorf("%w: primitive has no POSITION", ErrUnsupportedAccessor)
	}

	vao := im.ctx.CreateVertexArray()
	im.res.VertexArrays = append(im.res.VertexArrays, vao)
	im.ctx.BindVertexArray(vao)

	vertexCount := 0
	hasColor := false
	for _, semantic := range slices.Sorted(maps.Keys(prim.Attributes)) {
		loc, ok := attributeLocations[semantic]
		if !ok {
			return scene.Primitive{}, fmt.Errorf("%w: %s", ErrUnsupportedSemantic, semantic)
		}
		v, err := im.p.accessor(prim.Attributes[semantic])
		if err != nil {
			return scene.Primitive{}, fmt.Errorf("attribute %s: %w", semantic, err)
		}
		dt, _ := gltfComponentType(v.typ)

		im.ctx.EnableVertexAttribArray(loc)
		im.ctx.BindBuffer(gpu.BufferTargetArray, im.buffers[v.buffer])
		im.ctx.VertexAttribPointer(loc, v.components, dt, v.normalized, 0, v.offset)

		switch loc {
		case shader.AttribPosition:
			vertexCount = v.count
		case shader.AttribColor0:
			hasColor = true
		}
	}

	var (
		data      []byte
		indexType gpu.DataType
		count     int
	)
	if prim.Indices != nil {
		var err error
		data, indexType, count, err = im.readIndices(*prim.Indices, vertexCount)
		if err != nil {
			return scene.Primitive{}, err
		}
	} else {
		data, indexType = sequentialIndices(vertexCount)
		count = vertexCount
	}

	// The arena binds the element target while vao is bound, which leaves vao pointing at the arena buffer.
	buf, offset := im.indices.Allocate(data)

	return scene.Primitive{
		Material: material,
		DrawCall: drawcall.DrawCall{
			VertexArray:          vao,
			Mode:                 gpu.DrawMode(mode),
			IndexBuffer:          buf,
			IndexType:            indexType,
			IndexOffset:          offset,
			IndexCount:           count,
			FrontFace:            gpu.FrontFaceCCW,
			ConstantAttribute:    shader.AttribColor0,
			HasConstantAttribute: !hasColor,
		},
	}, nil
}

// readIndices returns the exact bytes of an index accessor after checking every index against the vertex
// count.
func (im *gltfImport) readIndices(accessor, vertexCount int) ([]byte, gpu.DataType, int, error) {
	v, err := im.p.accessor(accessor)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("indices: %w", err)
	}
	if v.components != 1 {
		return nil, 0, 0, fmt.Errorf("indices: %w: %d components", ErrUnsupportedAccessor, v.components)
	}

	raw := im.p.bytes(v)
	var dt gpu.DataType
	var index func(i int) int
	switch v.typ {
	case gltfComponentTypeUnsignedByte:
		dt = gpu.TypeUnsignedByte
		index = func(i int) int { return int(raw[i]) }
	case gltfComponentTypeUnsignedShort:
		dt = gpu.TypeUnsignedShort
		index = func(i int) int { return int(binary.LittleEndian.Uint16(raw[i*2:])) }
	case gltfComponentTypeUnsignedInt:
		dt = gpu.TypeUnsignedInt
		index = func(i int) int { return int(binary.LittleEndian.Uint32(raw[i*4:])) }
	default:
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedIndexType, v.typ)
	}

	for i := range v.count {
		if idx := index(i); idx >= vertexCount {
			return nil, 0, 0, fmt.Errorf("index %d at %d: %w: %d vertices", idx, i, ErrIndexOutOfRange, vertexCount)
		}
	}
	return raw, dt, v.count, nil
}

// sequentialIndices generates 0..n-1 in the narrowest index type that holds n-1.
//
// Parameters:
//   - n: the vertex count
//
// Returns:
//   - []byte: the little-endian index data
//   - gpu.DataType: the index type
func sequentialIndices(n int) ([]byte, gpu.DataType) {
	switch {
	case n <= 1<<8:
		idx := make([]uint8, n)
		for i := range idx {
			idx[i] = uint8(i)
		}
		return idx, gpu.TypeUnsignedByte
	case n <= 1<<16:
		idx := make([]uint16, n)
		for i := range idx {
			idx[i] = uint16(i)
		}
		return common.SliceToBytes(idx), gpu.TypeUnsignedShort
	default:
		idx := make([]uint32, n)
		for i := range idx {
			idx[i] = uint32(i)
		}
		return common.SliceToBytes(idx), gpu.TypeUnsignedInt
	}
}
