package window

// WindowBuilderOption configures the window before its GL context is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text. The engine appends the frame rate to it when profiling.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the requested framebuffer width. The value is clamped to the resize limits, and the
// framebuffer the driver actually allocates is reported by Width.
//
// Parameters:
//   - width: framebuffer width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = min(max(width, minWidth), maxWidth)
	}
}

// WithHeight sets the requested framebuffer height, clamped like WithWidth.
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = min(max(height, minHeight), maxHeight)
	}
}

// WithVSync sets the swap interval of the GL context: one frame when enabled, immediate swaps otherwise.
// Enabled by default.
func WithVSync(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.vsync = enabled
	}
}
