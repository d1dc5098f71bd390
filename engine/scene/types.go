package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"

	"github.com/go-gl/mathgl/mgl32"
)

// NoMesh marks a node that carries no mesh.
const NoMesh = -1

// Node is one entry of the flat node table. Children reference other entries by index.
type Node struct {
	Name string
	// Mesh is an index into the mesh table or NoMesh.
	Mesh     int
	Children []int
	// Local is the node transform relative to its parent.
	Local mgl32.Mat4

	// Translation, Rotation and Scale are the rest pose components animation channels start from.
	// They are identity for nodes whose Local came from an explicit matrix.
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Primitive is one drawable part of a mesh.
type Primitive struct {
	// Material is an index into the material table.
	Material int
	// DrawCall is the immutable draw descriptor. Its FrontFace is overwritten per instance.
	DrawCall drawcall.DrawCall
}

// Mesh groups the primitives drawn for a node.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Scene lists the root nodes of one glTF scene.
type Scene struct {
	Name  string
	Nodes []int
}

// Resources lists every driver object an asset owns.
type Resources struct {
	VertexArrays []gpu.VertexArray
	Buffers      []gpu.Buffer
	Textures     []gpu.Texture
	Samplers     []gpu.Sampler
	// Arenas are the index and material uniform arenas.
	Arenas []arena.Arena
}

// Release deletes every object in r exactly once and empties it.
//
// Parameters:
//   - ctx: the context the objects were created on
func (r *Resources) Release(ctx gpu.Context) {
	for _, v := range r.VertexArrays {
		ctx.DeleteVertexArray(v)
	}
	for _, b := range r.Buffers {
		ctx.DeleteBuffer(b)
	}
	for _, t := range r.Textures {
		ctx.DeleteTexture(t)
	}
	for _, s := range r.Samplers {
		ctx.DeleteSampler(s)
	}
	for _, a := range r.Arenas {
		a.Destroy()
	}
	*r = Resources{}
}
