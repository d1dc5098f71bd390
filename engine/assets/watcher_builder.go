package assets

import "time"

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long the watched files must be quiet before a change is signalled.
//
// Parameters:
//   - d: the quiet period; values below zero are treated as zero
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		w.debounce = max(d, 0)
	}
}
