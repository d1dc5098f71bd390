package arena

import "github.com/Carmen-Shannon/oxy-gl/engine/gpu"

// ArenaBuilderOption is a functional option for configuring an Arena via NewArena.
type ArenaBuilderOption func(*arena)

// WithTarget is an option builder that sets the buffer target the arena binds for uploads.
//
// Parameters:
//   - target: the bind target
//
// Returns:
//   - ArenaBuilderOption: a function that applies the target option to an arena
func WithTarget(target gpu.BufferTarget) ArenaBuilderOption {
	return func(a *arena) {
		a.target = target
	}
}

// WithUsage is an option builder that sets the usage hint passed on every (re)allocation.
//
// Parameters:
//   - usage: the usage hint
//
// Returns:
//   - ArenaBuilderOption: a function that applies the usage option to an arena
func WithUsage(usage gpu.BufferUsage) ArenaBuilderOption {
	return func(a *arena) {
		a.usage = usage
	}
}

// WithGrowthPolicy is an option builder that selects exact or geometric growth.
//
// Parameters:
//   - policy: the growth policy
//
// Returns:
//   - ArenaBuilderOption: a function that applies the growth policy to an arena
func WithGrowthPolicy(policy GrowthPolicy) ArenaBuilderOption {
	return func(a *arena) {
		a.policy = policy
	}
}

// WithAlignment is an option builder that makes every allocation start on a multiple of alignment.
// Uniform block ranges need the driver's uniform buffer offset alignment.
//
// Parameters:
//   - alignment: the byte alignment, values below 2 disable alignment
//
// Returns:
//   - ArenaBuilderOption: a function that applies the alignment option to an arena
func WithAlignment(alignment int) ArenaBuilderOption {
	return func(a *arena) {
		a.alignment = max(alignment, 1)
	}
}

// WithInitialSize is an option builder that allocates driver storage up front.
//
// Parameters:
//   - size: initial storage in bytes
//
// Returns:
//   - ArenaBuilderOption: a function that applies the initial size to an arena
func WithInitialSize(size int) ArenaBuilderOption {
	return func(a *arena) {
		a.size = max(size, 0)
	}
}
