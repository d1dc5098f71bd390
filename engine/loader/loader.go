// package loader turns glTF 2.0 documents into scene.Gltf assets: it decodes the document, uploads its
// buffers, builds vertex arrays, index and uniform arenas, textures and samplers, and caches the result by
// name.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

var errUnsupportedFormat = errors.New("unsupported asset format")

// LoaderBackendType identifies the asset format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	ctx     gpu.Context
	workers int
	growth  arena.GrowthPolicy
	pool    worker.DynamicWorkerPool

	assetCache map[string]scene.Gltf

	backendType LoaderBackendType
	backend     loaderBackend
}

// Loader loads and caches assets by name. Load, Reload, Unload and Destroy create or release driver objects
// and must run on the goroutine that owns the context. Get and Assets may be called from any goroutine.
type Loader interface {
	// Load imports an asset and caches it under name. A cached asset with the same name is returned as is.
	//
	// Parameters:
	//   - name: the cache key, also the asset name
	//   - document: glTF JSON text or GLB bytes
	//   - resources: external resources by URI; the GLB BIN chunk needs no entry
	//
	// Returns:
	//   - scene.Gltf: the loaded or cached asset
	//   - error: error if loading fails, after every driver object it created has been released
	Load(name string, document []byte, resources map[string][]byte) (scene.Gltf, error)

	// Reload imports an asset and replaces the cached asset of the same name, destroying the old one. When
	// the import fails the cached asset is kept.
	//
	// Parameters:
	//   - name: the cache key
	//   - document: glTF JSON text or GLB bytes
	//   - resources: external resources by URI
	//
	// Returns:
	//   - scene.Gltf: the new asset
	//   - error: error if loading fails
	Reload(name string, document []byte, resources map[string][]byte) (scene.Gltf, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - scene.Gltf: the cached asset or nil
	Get(name string) scene.Gltf

	// Assets returns a copy of the asset cache.
	//
	// Returns:
	//   - map[string]scene.Gltf: all cached assets keyed by name
	Assets() map[string]scene.Gltf

	// Unload destroys a cached asset and removes it from the cache. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the cache key
	Unload(name string)

	// Destroy destroys every cached asset.
	Destroy()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified backend type and options applied.
//
// Parameters:
//   - ctx: the context driver objects are created on
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(ctx gpu.Context, backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		ctx:         ctx,
		workers:     4,
		growth:      arena.GrowExact,
		assetCache:  make(map[string]scene.Gltf),
		backendType: backendType,
	}
	for _, option := range options {
		option(l)
	}

	if l.workers > 0 {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	}
	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(ctx, l.pool, l.growth)
	}
	return l
}

func (l *loader) Load(name string, document []byte, resources map[string][]byte) (scene.Gltf, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	g, err := l.load(name, document, resources)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.assetCache[name] = g
	l.mu.Unlock()
	return g, nil
}

func (l *loader) Reload(name string, document []byte, resources map[string][]byte) (scene.Gltf, error) {
	g, err := l.load(name, document, resources)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	old := l.assetCache[name]
	l.assetCache[name] = g
	l.mu.Unlock()

	if old != nil {
		old.Destroy()
	}
	return g, nil
}

func (l *loader) load(name string, document []byte, resources map[string][]byte) (scene.Gltf, error) {
	backend, err := l.resolveBackend(document)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	start := time.Now()
	g, err := backend.Load(name, document, resources)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	res := g.Resources()
	logging.Debug("loaded %s in %s: %d meshes, %d materials, %d textures, %d vertex arrays",
		name, time.Since(start).Round(time.Microsecond), len(g.Meshes()), len(g.Materials()), len(res.Textures), len(res.VertexArrays))
	return g, nil
}

func (l *loader) Get(name string) scene.Gltf {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) Assets() map[string]scene.Gltf {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]scene.Gltf, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

func (l *loader) Unload(name string) {
	l.mu.Lock()
	g, ok := l.assetCache[name]
	delete(l.assetCache, name)
	l.mu.Unlock()

	if ok {
		g.Destroy()
	}
}

func (l *loader) Destroy() {
	l.mu.Lock()
	assets := l.assetCache
	l.assetCache = make(map[string]scene.Gltf)
	l.mu.Unlock()

	for _, g := range assets {
		g.Destroy()
	}
}

// resolveBackend selects the backend for a document from its content: GLB magic or a JSON object selects the
// glTF backend.
func (l *loader) resolveBackend(document []byte) (loaderBackend, error) {
	if l.backend == nil {
		return nil, fmt.Errorf("%w: backend %d", errUnsupportedFormat, l.backendType)
	}
	if isGLB(document) || bytes.HasPrefix(bytes.TrimSpace(document), []byte("{")) {
		return l.backend, nil
	}
	return nil, errUnsupportedFormat
}
