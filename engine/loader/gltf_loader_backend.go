package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB documents.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - ctx: the context driver objects are created on
//   - pool: the image decode pool, may be nil
//   - growth: the arena growth policy
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB documents
func newGLTFLoaderBackend(ctx gpu.Context, pool worker.DynamicWorkerPool, growth arena.GrowthPolicy) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(ctx, pool, growth),
	}
}

func (b *gltfLoaderBackendImpl) Load(name string, document []byte, resources map[string][]byte) (scene.Gltf, error) {
	return b.importer.Import(name, document, resources)
}
