package loader

import (
	"log"

	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFetcher sets where asset bytes come from.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetcher = f
	}
}

// WithLogger sets the logger for load failures, warnings and completions.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers sets the maximum number of concurrent loads.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithProgress sets the callback for fetch progress.
//
// Parameters:
//   - fn: the callback, for example LogProgress(logger)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the progress option to a loader
func WithProgress(fn ProgressFunc) LoaderBuilderOption {
	return func(l *loader) {
		l.progress = fn
	}
}

// WithMaxTextureSize bounds the longest edge of decoded textures.
//
// Parameters:
//   - size: the limit in pixels, unbounded when <= 0
//
// Returns:
//   - LoaderBuilderOption: a function that applies the size option to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxTextureSize = size
	}
}

// WithScene sets the scene that groups are attached to when their first object arrives.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(s scene.Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.scene = s
	}
}
