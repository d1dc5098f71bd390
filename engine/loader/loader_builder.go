package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets how many goroutines decode images. Zero or less decodes on the
// calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithGrowthPolicy is an option builder that sets the growth policy of the index and material uniform arenas.
//
// Parameters:
//   - policy: the arena growth policy
//
// Returns:
//   - LoaderBuilderOption: a function that applies the growth option to a loader
func WithGrowthPolicy(policy arena.GrowthPolicy) LoaderBuilderOption {
	return func(l *loader) {
		l.growth = policy
	}
}

// WithAsset is an option builder that pre-populates the asset cache.
//
// Parameters:
//   - name: the cache key for the asset
//   - g: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(name string, g scene.Gltf) LoaderBuilderOption {
	return func(l *loader) {
		l.assetCache[name] = g
	}
}
