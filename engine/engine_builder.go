package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/tank-diorama/engine/loader"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/Carmen-Shannon/tank-diorama/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create one from the manifest.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer instead of creating a WebGPU renderer on the window.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions appends options to those derived from the manifest when the engine creates the renderer.
//
// Parameters:
//   - opts: renderer options, applied after the manifest settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(opts ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOpts = append(e.rendererOpts, opts...)
	}
}

// WithLoader sets a constructor for the asset loader. It receives the engine's scene so the loader can
// attach groups as their first objects arrive (see loader.WithScene).
//
// Parameters:
//   - newLoader: builds the loader for the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(newLoader func(s scene.Scene) loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.newLoader = newLoader
	}
}

// WithFetcher sets where the built-in loader reads assets from. Ignored when WithLoader is used.
//
// Parameters:
//   - f: the fetcher, for example loader.NewHTTPFetcher for a remote asset root
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFetcher(f loader.Fetcher) EngineBuilderOption {
	return func(e *engine) {
		e.fetcher = f
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second, overriding the manifest.
// Pass 0 to uncap the render loop.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimitSet = true
		e.SetRenderFrameLimit(fps)
	}
}

// WithLogger sets the logger shared by the engine, renderer, loader and profiler.
//
// Parameters:
//   - logger: the logger, nil keeps log.Default()
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
