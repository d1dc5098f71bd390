package recorder

import "github.com/Carmen-Shannon/oxy-gl/engine/gpu"

// RecorderBuilderOption is a functional option for configuring a Recorder via NewRecorder.
type RecorderBuilderOption func(*recorder)

// WithLimits is an option builder that overrides the capabilities the Recorder reports.
//
// Parameters:
//   - limits: the limits returned by Limits
//
// Returns:
//   - RecorderBuilderOption: a function that applies the limits option to a recorder
func WithLimits(limits gpu.Limits) RecorderBuilderOption {
	return func(r *recorder) {
		r.limits = limits
	}
}

// WithCompileError is an option builder that makes every compile of the given stage fail with log.
//
// Parameters:
//   - stage: the shader stage to fail
//   - log: the info log returned as the error
//
// Returns:
//   - RecorderBuilderOption: a function that applies the compile failure to a recorder
func WithCompileError(stage gpu.ShaderStage, log string) RecorderBuilderOption {
	return func(r *recorder) {
		r.compileError[stage] = log
	}
}

// WithLinkError is an option builder that makes every program link fail with log.
//
// Parameters:
//   - log: the info log returned as the error
//
// Returns:
//   - RecorderBuilderOption: a function that applies the link failure to a recorder
func WithLinkError(log string) RecorderBuilderOption {
	return func(r *recorder) {
		r.linkError = log
	}
}

// WithUniformBlockSize is an option builder that sets the data size reported for every uniform block.
//
// Parameters:
//   - size: block data size in bytes
//
// Returns:
//   - RecorderBuilderOption: a function that applies the block size to a recorder
func WithUniformBlockSize(size int) RecorderBuilderOption {
	return func(r *recorder) {
		r.blockSize = size
	}
}
