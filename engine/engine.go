package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/loader"
	"github.com/Carmen-Shannon/tank-diorama/engine/profiler"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/Carmen-Shannon/tank-diorama/engine/window"
)

// engine implements the Engine interface.
// Owns every diorama resource and coordinates the engine, render, and window threads.
type engine struct {
	logger *log.Logger
	cfg    config.Scene

	window     window.Window
	renderer   renderer.Renderer
	scene      scene.Scene
	camera     camera.Camera
	controller camera.CameraController
	loader     loader.Loader
	tasks      []loader.Task

	// construction inputs, consumed by Bootstrap
	fetcher       loader.Fetcher
	newLoader     func(s scene.Scene) loader.Loader
	rendererOpts  []renderer.RendererBuilderOption
	frameLimitSet bool

	input *inputState

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the explicit owner of the diorama: window, renderer, scene, camera, controller, loader and
// manifest. It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing the scene.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the diorama scene.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Camera returns the perspective camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Controller returns the orbit controller driving the camera.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// Loader returns the asset loader.
	//
	// Returns:
	//   - loader.Loader: the loader
	Loader() loader.Loader

	// Config returns the manifest the engine was bootstrapped from.
	//
	// Returns:
	//   - config.Scene: the manifest
	Config() config.Scene

	// Tasks returns the load handles issued at startup, ground texture first, then assets in name order.
	//
	// Returns:
	//   - []loader.Task: a copy of the task list
	Tasks() []loader.Task

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for input and logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers an extra function called each engine tick, after keyboard panning.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frame runs one render-loop step: advance the controller, update the camera, render the scene and tick
	// the profiler. Groups with no loaded objects draw nothing.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - error: the render error, if any
	Frame(dt float32) error

	// Run starts the engine and render goroutines and blocks on the window message loop until the window
	// closes or Quit is called. On return outstanding loads are cancelled and every resource is released.
	Run()

	// Quit signals all engine goroutines to stop and asks the window to close.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// newEngine creates the engine state with defaults taken from the manifest, then applies options.
func newEngine(cfg config.Scene, options ...EngineBuilderOption) *engine {
	e := &engine{
		logger:          log.Default(),
		cfg:             cfg,
		input:           newInputState(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if !e.frameLimitSet {
		e.SetRenderFrameLimit(float64(cfg.Renderer.FrameLimit))
	}
	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) Loader() loader.Loader {
	return e.loader
}

func (e *engine) Config() config.Scene {
	return e.cfg
}

func (e *engine) Tasks() []loader.Task {
	return append([]loader.Task(nil), e.tasks...)
}

func (e *engine) Frame(dt float32) error {
	e.controller.Update(dt)
	e.camera.Update()
	err := e.renderer.Render(e.scene, e.camera)
	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()
	e.shutdown()
}

// shutdown stops the goroutines and releases resources in dependency order. Called on the window thread.
func (e *engine) shutdown() {
	e.signalQuit()
	e.loader.CancelAll()
	e.wg.Wait()
	e.running.Store(false)

	e.loader.Close()
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		e.logger.Printf("[Engine] failed to close window: %v", err)
	}
	e.logger.Printf("[Engine] stopped")
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit and ends the window message loop.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Applies held-key panning, fires the tick callback and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// tick is one engine tick: keyboard panning, then the user callback.
func (e *engine) tick(dt float32) {
	e.panHeldKeys(dt)
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// The loop has no exit condition other than the quit channel.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	var lastErr string

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			// a failed frame is retried next iteration; repeated identical errors are logged once
			if err := e.Frame(dt); err != nil {
				if msg := err.Error(); msg != lastErr {
					e.logger.Printf("[Engine] %v", err)
					lastErr = msg
				}
			} else {
				lastErr = ""
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
