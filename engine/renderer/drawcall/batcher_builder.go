package drawcall

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"

type batcherConfig struct {
	arena       arena.Arena
	policy      arena.GrowthPolicy
	initialSize int
}

// BatcherBuilderOption is a functional option for configuring a Batcher via NewBatcher.
type BatcherBuilderOption func(*batcherConfig)

// WithInstanceArena is an option builder that supplies the arena instance transforms are written to.
// The batcher takes ownership and destroys it with Destroy.
//
// Parameters:
//   - a: the arena, bound to the array target
//
// Returns:
//   - BatcherBuilderOption: a function that applies the arena option to a batcher
func WithInstanceArena(a arena.Arena) BatcherBuilderOption {
	return func(c *batcherConfig) {
		c.arena = a
	}
}

// WithGrowthPolicy is an option builder that sets the growth policy of the default instance arena.
//
// Parameters:
//   - policy: exact or geometric growth
//
// Returns:
//   - BatcherBuilderOption: a function that applies the growth policy to a batcher
func WithGrowthPolicy(policy arena.GrowthPolicy) BatcherBuilderOption {
	return func(c *batcherConfig) {
		c.policy = policy
	}
}

// WithInitialCapacity is an option builder that pre-sizes the default instance arena.
//
// Parameters:
//   - instances: the number of transforms the arena holds before growing
//
// Returns:
//   - BatcherBuilderOption: a function that applies the capacity to a batcher
func WithInitialCapacity(instances int) BatcherBuilderOption {
	return func(c *batcherConfig) {
		c.initialSize = instances * instanceStride
	}
}
