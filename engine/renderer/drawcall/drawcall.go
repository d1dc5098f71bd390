// package drawcall defines the descriptors that identify an instanced draw and the Batcher that groups
// per-frame instances into as few draw submissions as possible.
package drawcall

import "github.com/Carmen-Shannon/oxy-gl/engine/gpu"

// DrawCall describes everything needed to issue one DrawElementsInstanced except the instance transforms.
// Two equal DrawCalls are drawn together in a single submission.
type DrawCall struct {
	// VertexArray holds the vertex attribute configuration of the primitive.
	VertexArray gpu.VertexArray
	// Mode is the primitive topology.
	Mode gpu.DrawMode
	// IndexBuffer is the element buffer holding the indices.
	IndexBuffer gpu.Buffer
	// IndexType is the index component type.
	IndexType gpu.DataType
	// IndexOffset is the byte offset of the first index within IndexBuffer.
	IndexOffset int
	// IndexCount is the number of indices drawn.
	IndexCount int
	// FrontFace is the winding treated as front facing for this draw.
	FrontFace gpu.FrontFace
	// ConstantAttribute is the attribute location set to (1, 1, 1, 1) before drawing when
	// HasConstantAttribute is true. Used for primitives without vertex colors.
	ConstantAttribute uint32
	// HasConstantAttribute enables ConstantAttribute.
	HasConstantAttribute bool
}

// TextureBinding pairs a texture and a sampler on one texture unit.
type TextureBinding struct {
	Unit    uint32
	Texture gpu.Texture
	Sampler gpu.Sampler
}

// MaterialTextureCount is the number of texture slots every material binds.
const MaterialTextureCount = 5

// MaterialBinding is the full set of pipeline bindings a material needs: one texture and sampler per slot
// and the byte range of its uniform block. Equal bindings are bound once per frame.
type MaterialBinding struct {
	// Textures are bound in slot order.
	Textures [MaterialTextureCount]TextureBinding
	// UniformBuffer holds the material uniform block.
	UniformBuffer gpu.Buffer
	// UniformOffset is the byte offset of the block within UniformBuffer.
	UniformOffset int
	// UniformSize is the size of the block in bytes.
	UniformSize int
	// UniformBinding is the uniform buffer binding point the block is bound to.
	UniformBinding uint32
}

// Bind applies every texture, sampler and the uniform block range of m.
//
// Parameters:
//   - ctx: the context to bind on
func (m MaterialBinding) Bind(ctx gpu.Context) {
	for _, t := range m.Textures {
		ctx.ActiveTexture(t.Unit)
		ctx.BindTexture(t.Texture)
		ctx.BindSampler(t.Unit, t.Sampler)
	}
	ctx.BindBufferRange(gpu.BufferTargetUniform, m.UniformBinding, m.UniformBuffer, m.UniformOffset, m.UniformSize)
}
