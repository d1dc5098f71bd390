package loader

import "github.com/Carmen-Shannon/oxy-gl/engine/scene"

// loaderBackend defines the generic interface for loading assets from an in-memory document.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full import of document.
	//
	// Parameters:
	//   - name: the asset name
	//   - document: the encoded document
	//   - resources: external resources by URI
	//
	// Returns:
	//   - scene.Gltf: the imported asset
	//   - error: error if loading fails
	Load(name string, document []byte, resources map[string][]byte) (scene.Gltf, error)
}
