package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
)

// GltfBuilderOption is a functional option for configuring a Gltf.
// Use the With* functions to create options.
type GltfBuilderOption func(g *gltf)

// WithName sets the name the asset is known by.
//
// Parameters:
//   - name: the asset name
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithName(name string) GltfBuilderOption {
	return func(g *gltf) {
		g.name = name
	}
}

// WithScenes sets the scene table and the index of the scene drawn.
//
// Parameters:
//   - scenes: the scene table
//   - defaultScene: the index of the scene Draw renders
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithScenes(scenes []Scene, defaultScene int) GltfBuilderOption {
	return func(g *gltf) {
		g.scenes = scenes
		g.defaultScene = defaultScene
	}
}

// WithNodes sets the node table.
//
// Parameters:
//   - nodes: the node table
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithNodes(nodes []Node) GltfBuilderOption {
	return func(g *gltf) {
		g.nodes = nodes
	}
}

// WithMeshes sets the mesh table.
//
// Parameters:
//   - meshes: the mesh table
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithMeshes(meshes []Mesh) GltfBuilderOption {
	return func(g *gltf) {
		g.meshes = meshes
	}
}

// WithMaterials sets the material table primitives index into.
//
// Parameters:
//   - materials: the material bindings
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithMaterials(materials []drawcall.MaterialBinding) GltfBuilderOption {
	return func(g *gltf) {
		g.materials = materials
	}
}

// WithAnimations sets the node animations.
//
// Parameters:
//   - animations: the animations
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithAnimations(animations []Animation) GltfBuilderOption {
	return func(g *gltf) {
		g.animations = animations
	}
}

// WithResources hands ownership of driver objects to the asset. They are released by Destroy.
//
// Parameters:
//   - resources: the owned objects
//
// Returns:
//   - GltfBuilderOption: option function to apply
func WithResources(resources Resources) GltfBuilderOption {
	return func(g *gltf) {
		g.resources = resources
	}
}
