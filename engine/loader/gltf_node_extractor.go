package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// extractNodes converts the node table. A matrix is taken verbatim and leaves the rest pose at identity;
// otherwise the local transform is T * R * S of the optional translation, rotation and scale.
//
// Returns:
//   - []scene.Node: one node per document node
func (im *gltfImport) extractNodes() []scene.Node {
	nodes := make([]scene.Node, len(im.doc.Nodes))
	for i, n := range im.doc.Nodes {
		t := mgl32.Vec3{}
		r := mgl32.QuatIdent()
		s := mgl32.Vec3{1, 1, 1}
		if n.Translation != nil {
			t = mgl32.Vec3(*n.Translation)
		}
		if n.Rotation != nil {
			r = common.QuatFromXYZW(*n.Rotation)
		}
		if n.Scale != nil {
			s = mgl32.Vec3(*n.Scale)
		}

		node := scene.Node{
			Name:        n.Name,
			Mesh:        scene.NoMesh,
			Children:    n.Children,
			Translation: t,
			Rotation:    r,
			Scale:       s,
		}
		if n.Mesh != nil {
			node.Mesh = *n.Mesh
		}
		if n.Matrix != nil {
			node.Local = mgl32.Mat4(*n.Matrix)
			node.Translation, node.Rotation, node.Scale = mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}
		} else {
			node.Local = common.ComposeTRS(t, r, s)
		}
		nodes[i] = node
	}
	return nodes
}

// extractScenes converts the scene table and resolves the default scene, which is 0 when the document does
// not name one.
//
// Returns:
//   - []scene.Scene: the scenes
//   - int: the default scene index
//   - error: error if the named default scene does not exist
func (im *gltfImport) extractScenes() ([]scene.Scene, int, error) {
	scenes := make([]scene.Scene, len(im.doc.Scenes))
	for i, s := range im.doc.Scenes {
		scenes[i] = scene.Scene{Name: s.Name, Nodes: s.Nodes}
	}

	def := 0
	if im.doc.Scene != nil {
		def = *im.doc.Scene
		if def < 0 || def >= len(scenes) {
			return nil, 0, fmt.Errorf("default scene %d: %w", def, ErrIndexOutOfRange)
		}
	}
	return scenes, def, nil
}
