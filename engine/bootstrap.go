package engine

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
	"github.com/Carmen-Shannon/tank-diorama/engine/loader"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/Carmen-Shannon/tank-diorama/engine/window"
)

// GroundTextureTask is the loader task name of the ground texture.
const GroundTextureTask = "ground texture"

// Bootstrap builds the whole diorama from a manifest: window, renderer, camera and controller, scene, input
// bindings and loader, then issues one load per manifest asset without waiting for any of them.
// Window and device creation panic when no window or GPU is available; WithWindow and WithRenderer replace them.
//
// Parameters:
//   - ctx: cancels every load issued at startup
//   - cfg: the manifest
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: an error if the manifest is invalid
func Bootstrap(ctx context.Context, cfg config.Scene, options ...EngineBuilderOption) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	e := newEngine(cfg, options...)

	if e.window == nil {
		e.window = window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
		)
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(e.window, append(rendererOptions(cfg.Renderer, e), e.rendererOpts...)...)
	}

	e.camera, e.controller = newCamera(cfg.Camera, e.window.Width(), e.window.Height())

	s, err := BuildScene(cfg)
	if err != nil {
		return nil, err
	}
	e.scene = s

	e.bindInput()

	if e.newLoader != nil {
		e.loader = e.newLoader(s)
	} else {
		opts := []loader.LoaderBuilderOption{
			loader.WithLogger(e.logger),
			loader.WithScene(s),
			loader.WithWorkers(cfg.Loader.Workers),
			loader.WithMaxTextureSize(cfg.Loader.MaxTextureSize),
			loader.WithProgress(loader.LogProgress(e.logger)),
		}
		if e.fetcher != nil {
			opts = append(opts, loader.WithFetcher(e.fetcher))
		}
		e.loader = loader.NewLoader(opts...)
	}
	e.tasks = SubmitAssets(ctx, e.loader, s, cfg)

	e.profiler.SetGauge("drawables", func() int { return e.renderer.Stats().Drawables })
	e.profiler.SetGauge("pending loads", e.loader.Pending)

	e.logger.Printf("[Engine] bootstrapped %q: %d groups, %d loads issued", cfg.Window.Title, len(cfg.Groups), len(e.tasks))
	return e, nil
}

// BuildScene creates the scene described by the manifest: ambient and point lights, the untextured ground and
// one empty, unattached group per manifest group. Groups attach when their first object arrives.
//
// Parameters:
//   - cfg: the manifest
//
// Returns:
//   - scene.Scene: the scene
//   - error: an error if the manifest is invalid
func BuildScene(cfg config.Scene) (scene.Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	amb := cfg.Lights.Ambient
	ambient := light.NewLight(light.LightTypeAmbient,
		light.WithColor(amb.Color.RGB()),
		light.WithIntensity(amb.Intensity),
	)

	pt := cfg.Lights.Point
	point := light.NewLight(light.LightTypePoint,
		light.WithColor(pt.Color.RGB()),
		light.WithIntensity(pt.Intensity),
		light.WithDistance(pt.Distance),
		light.WithDecay(pt.Decay),
		light.WithPosition(pt.Position[0], pt.Position[1], pt.Position[2]),
		light.WithCastsShadows(pt.CastShadow),
		light.WithShadow(light.ShadowConfig{
			MapSize: uint32(max(pt.Shadow.MapSize, 0)),
			Near:    pt.Shadow.Near,
			Far:     pt.Shadow.Far,
			Bias:    pt.Shadow.Bias,
		}),
	)

	gr := cfg.Ground
	tiling := material.DefaultTiling
	if gr.Repeat != [2]float32{} {
		tiling.Repeat = gr.Repeat
	}
	groundOpts := []scene.GroundBuilderOption{
		scene.WithGroundPosition([3]float32(gr.Position)),
		scene.WithGroundRotation([3]float32(gr.Rotation)),
		scene.WithGroundMaterial(scene.GroundMaterial(gr.Color.RGB(), tiling, gr.DoubleSided)),
		scene.WithGroundReceiveShadow(gr.ReceiveShadow),
	}
	if gr.Size[0] > 0 && gr.Size[1] > 0 {
		groundOpts = append(groundOpts, scene.WithGroundSize(gr.Size[0], gr.Size[1]))
	}
	if gr.Segments[0] > 0 && gr.Segments[1] > 0 {
		groundOpts = append(groundOpts, scene.WithGroundSegments(gr.Segments[0], gr.Segments[1]))
	}
	ground := scene.NewGround(groundOpts...)

	s := scene.NewScene(
		scene.WithName(cfg.Window.Title),
		scene.WithAmbient(ambient),
		scene.WithPointLight(point),
		scene.WithGround(ground),
	)
	for _, name := range cfg.GroupNames() {
		g := cfg.Groups[name]
		opts := []scene.GroupBuilderOption{
			scene.WithGroupPosition([3]float32(g.Position)),
			scene.WithGroupRotation([3]float32(g.Rotation)),
		}
		if g.Scale != nil {
			opts = append(opts, scene.WithGroupScale([3]float32(*g.Scale)))
		}
		s.AddGroup(name, opts...)
	}
	return s, nil
}

// SubmitAssets issues the ground texture load and one Load per manifest asset, iterating the asset names once
// in sorted order. Nothing is awaited.
//
// Parameters:
//   - ctx: cancels the loads
//   - l: the loader
//   - s: the scene owning the target groups
//   - cfg: the manifest
//
// Returns:
//   - []loader.Task: the ground texture task (when configured) followed by one task per asset
func SubmitAssets(ctx context.Context, l loader.Loader, s scene.Scene, cfg config.Scene) []loader.Task {
	names := cfg.AssetNames()
	tasks := make([]loader.Task, 0, len(names)+1)
	if cfg.Ground.Texture != "" {
		tasks = append(tasks, l.LoadTexture(ctx, GroundTextureTask, cfg.Ground.Texture, s.SetGroundTexture))
	}
	for _, name := range names {
		a := cfg.Assets[name]
		g, ok := s.Group(a.Group)
		if !ok {
			g = s.AddGroup(a.Group)
		}
		tasks = append(tasks, l.Load(ctx, loader.Request{
			Name:       name,
			Descriptor: a.AssetDescriptor,
			Placement:  a.Resolve(cfg.Defaults),
			Group:      g,
		}))
	}
	return tasks
}

// newCamera builds the orbit controller and the perspective camera from the manifest.
func newCamera(cfg config.Camera, width, height int) (camera.Camera, camera.CameraController) {
	ctrlOpts := []camera.CameraControllerOption{
		camera.WithTarget([3]float32(cfg.Target)),
		camera.WithPosition([3]float32(cfg.Position)),
		camera.WithDamping(cfg.Damping, cfg.DampingFactor),
	}
	if cfg.RotateSpeed > 0 {
		ctrlOpts = append(ctrlOpts, camera.WithRotateSpeed(cfg.RotateSpeed))
	}
	if cfg.ZoomSpeed > 0 {
		ctrlOpts = append(ctrlOpts, camera.WithZoomSpeed(cfg.ZoomSpeed))
	}
	if cfg.PanSpeed > 0 {
		ctrlOpts = append(ctrlOpts, camera.WithPanSpeed(cfg.PanSpeed))
	}
	if cfg.MaxDistance > cfg.MinDistance && cfg.MinDistance > 0 {
		ctrlOpts = append(ctrlOpts, camera.WithRadiusBounds(cfg.MinDistance, cfg.MaxDistance))
	}
	ctrl := camera.NewCameraController(ctrlOpts...)

	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	cam := camera.NewCamera(
		camera.WithFovDegrees(cfg.Fov),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(cfg.Near, cfg.Far),
		camera.WithController(ctrl),
	)
	ctrl.SetViewport(height, cam.Fov())
	return cam, ctrl
}

// rendererOptions maps the manifest renderer section onto renderer options.
func rendererOptions(cfg config.Renderer, e *engine) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if cfg.VSync {
		mode = renderer.PresentModeVSync
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithShadowsEnabled(cfg.Shadows),
		renderer.WithClearColor(cfg.ClearColor.RGB()),
		renderer.WithLogger(e.logger),
	}
	if cfg.MSAA > 0 {
		opts = append(opts, renderer.WithMSAA(renderer.MSAASampleCount(cfg.MSAA)))
	}
	return opts
}
