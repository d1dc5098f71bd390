// package scene holds a loaded glTF asset as flat, index-linked tables and turns its node hierarchy into
// batcher instances every frame.
package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type stackEntry struct {
	node   int
	parent mgl32.Mat4
}

// gltf is the implementation of the Gltf interface.
type gltf struct {
	ctx  gpu.Context
	id   uuid.UUID
	name string

	scenes       []Scene
	defaultScene int
	nodes        []Node
	meshes       []Mesh
	materials    []drawcall.MaterialBinding
	animations   []Animation
	resources    Resources

	stack []stackEntry
	pose  Pose

	destroyed bool
}

// Gltf is a loaded asset. It owns every driver object created for it and releases them as a unit.
// It is used from the render thread only.
type Gltf interface {
	// ID returns the identifier assigned when the asset was built.
	ID() uuid.UUID

	// Name returns the name the asset was loaded under.
	Name() string

	// Scenes returns the scene table.
	Scenes() []Scene

	// DefaultScene returns the index of the scene Draw renders.
	DefaultScene() int

	// Nodes returns the node table.
	Nodes() []Node

	// Meshes returns the mesh table.
	Meshes() []Mesh

	// Materials returns the material table. The last entry is the implicit default material.
	Materials() []drawcall.MaterialBinding

	// Animations returns the node animations of the asset.
	Animations() []Animation

	// Resources returns the driver objects the asset owns.
	Resources() Resources

	// Draw adds one instance per primitive of every mesh node reachable from the default scene.
	//
	// Parameters:
	//   - b: the batcher to add instances to
	//   - root: the transform applied above the scene roots
	Draw(b drawcall.Batcher, root mgl32.Mat4)

	// DrawWithOverrides behaves like Draw but takes a node's local transform from overrides when one is
	// supplied.
	//
	// Parameters:
	//   - b: the batcher to add instances to
	//   - root: the transform applied above the scene roots
	//   - overrides: replacement local transforms, may be nil
	DrawWithOverrides(b drawcall.Batcher, root mgl32.Mat4, overrides TransformOverrides)

	// Pose samples an animation at time t. The returned overrides are reused by the next call.
	//
	// Parameters:
	//   - animation: the animation index
	//   - t: the playback time in seconds
	//
	// Returns:
	//   - TransformOverrides: local transforms of the animated nodes, nil when animation is out of range
	Pose(animation int, t float32) TransformOverrides

	// Destroy releases every driver object of the asset. Calling it more than once is a no-op.
	Destroy()
}

var _ Gltf = &gltf{}

// NewGltf assembles an asset from its tables. The tables are expected to have passed ValidateHierarchy.
//
// Parameters:
//   - ctx: the context the asset's objects were created on
//   - options: functional options providing the tables and resources
//
// Returns:
//   - Gltf: the assembled asset
func NewGltf(ctx gpu.Context, options ...GltfBuilderOption) Gltf {
	g := &gltf{
		ctx:  ctx,
		id:   uuid.New(),
		pose: make(Pose),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gltf) ID() uuid.UUID {
	return g.id
}

func (g *gltf) Name() string {
	return g.name
}

func (g *gltf) Scenes() []Scene {
	return g.scenes
}

func (g *gltf) DefaultScene() int {
	return g.defaultScene
}

func (g *gltf) Nodes() []Node {
	return g.nodes
}

func (g *gltf) Meshes() []Mesh {
	return g.meshes
}

func (g *gltf) Materials() []drawcall.MaterialBinding {
	return g.materials
}

func (g *gltf) Animations() []Animation {
	return g.animations
}

func (g *gltf) Resources() Resources {
	return g.resources
}

func (g *gltf) Draw(b drawcall.Batcher, root mgl32.Mat4) {
	g.DrawWithOverrides(b, root, nil)
}

func (g *gltf) DrawWithOverrides(b drawcall.Batcher, root mgl32.Mat4, overrides TransformOverrides) {
	if g.destroyed || g.defaultScene < 0 || g.defaultScene >= len(g.scenes) {
		return
	}

	g.stack = g.stack[:0]
	for _, n := range g.scenes[g.defaultScene].Nodes {
		g.stack = append(g.stack, stackEntry{node: n, parent: root})
	}

	for len(g.stack) > 0 {
		e := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		node := &g.nodes[e.node]

		local := node.Local
		if overrides != nil {
			if m, ok := overrides.LocalTransform(e.node); ok {
				local = m
			}
		}
		world := e.parent.Mul4(local)

		if node.Mesh != NoMesh {
			face := gpu.FrontFaceCCW
			if common.IsMirrored(world) {
				face = gpu.FrontFaceCW
			}
			for _, p := range g.meshes[node.Mesh].Primitives {
				call := p.DrawCall
				call.FrontFace = face
				b.Add(g.materials[p.Material], call, world)
			}
		}

		for _, c := range node.Children {
			g.stack = append(g.stack, stackEntry{node: c, parent: world})
		}
	}
}

func (g *gltf) Pose(animation int, t float32) TransformOverrides {
	if animation < 0 || animation >= len(g.animations) {
		return nil
	}
	g.animations[animation].Sample(t, g.nodes, g.pose)
	return g.pose
}

func (g *gltf) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.resources.Release(g.ctx)
}
