package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	ctx    gpu.Context
	pool   worker.DynamicWorkerPool
	growth arena.GrowthPolicy
}

// gltfImporter turns a glTF document and its resources into a scene.Gltf that owns every driver object
// created for it.
type gltfImporter interface {
	// Import parses document and creates its driver objects. On error every object created so far is
	// released before returning.
	//
	// Parameters:
	//   - name: the name the asset is known by
	//   - document: glTF JSON text or GLB bytes
	//   - resources: external resources by URI
	//
	// Returns:
	//   - scene.Gltf: the loaded asset
	//   - error: error if the document is malformed or unsupported
	Import(name string, document []byte, resources map[string][]byte) (scene.Gltf, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - ctx: the context driver objects are created on
//   - pool: the pool image decoding runs on, nil to decode on the calling goroutine
//   - growth: the growth policy of the index and uniform arenas
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(ctx gpu.Context, pool worker.DynamicWorkerPool, growth arena.GrowthPolicy) gltfImporter {
	return &gltfImporterImpl{ctx: ctx, pool: pool, growth: growth}
}

// gltfImport is the state of one Import call.
type gltfImport struct {
	ctx    gpu.Context
	pool   worker.DynamicWorkerPool
	growth arena.GrowthPolicy

	p   *gltfParser
	doc *gltfDocument
	res scene.Resources

	buffers []gpu.Buffer
	indices arena.Arena

	textures                 []gpu.Texture
	white, black, blue, gray gpu.Texture
	samplers                 []gpu.Sampler
	defaultSampler           gpu.Sampler
}

func (i *gltfImporterImpl) Import(name string, document []byte, resources map[string][]byte) (scene.Gltf, error) {
	p, err := newGLTFParser(document, resources)
	if err != nil {
		return nil, err
	}

	im := &gltfImport{
		ctx:    i.ctx,
		pool:   i.pool,
		growth: i.growth,
		p:      p,
		doc:    p.document,
	}

	g, err := im.run(name)
	if err != nil {
		im.res.Release(i.ctx)
		return nil, err
	}
	return g, nil
}

// run performs the import. The hierarchy is validated before any driver object is created.
func (im *gltfImport) run(name string) (scene.Gltf, error) {
	nodes := im.extractNodes()
	scenes, defaultScene, err := im.extractScenes()
	if err != nil {
		return nil, err
	}
	if err := scene.ValidateHierarchy(scenes, nodes, len(im.doc.Meshes)); err != nil {
		return nil, err
	}
	animations, err := im.extractAnimations()
	if err != nil {
		return nil, err
	}

	im.uploadBuffers()
	meshes, err := im.extractMeshes()
	if err != nil {
		return nil, err
	}
	if err := im.extractTextures(); err != nil {
		return nil, fmt.Errorf("textures: %w", err)
	}
	im.extractSamplers()
	materials, err := im.extractMaterials()
	if err != nil {
		return nil, err
	}

	return scene.NewGltf(im.ctx,
		scene.WithName(gltfAssetName(name, im.doc)),
		scene.WithScenes(scenes, defaultScene),
		scene.WithNodes(nodes),
		scene.WithMeshes(meshes),
		scene.WithMaterials(materials),
		scene.WithAnimations(animations),
		scene.WithResources(im.res),
	), nil
}

// gltfAssetName returns name, or the name of the default scene when name is empty.
func gltfAssetName(name string, doc *gltfDocument) string {
	if name != "" {
		return name
	}
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) && doc.Scenes[*doc.Scene].Name != "" {
		return doc.Scenes[*doc.Scene].Name
	}
	if len(doc.Meshes) > 0 && doc.Meshes[0].Name != "" {
		return doc.Meshes[0].Name
	}
	return "gltf"
}
