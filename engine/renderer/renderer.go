package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/shader"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceSource is what the renderer needs from a window: a surface to draw into and its size.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameStats describes the last rendered frame and the GPU resources alive after it.
type FrameStats struct {
	Frame       uint64
	Drawables   int
	Drawn       int
	Culled      int
	ShadowDraws int
	Meshes      int
	Materials   int
	Textures    int
}

// materialResources is a material's bind group and the texture it was built with.
type materialResources struct {
	provider bind_group_provider.BindGroupProvider
	texture  *common.TextureStagingData
}

// drawResources are the GPU resources of one drawable for the current frame.
type drawResources struct {
	mesh     bind_group_provider.BindGroupProvider
	material bind_group_provider.BindGroupProvider
	object   bind_group_provider.BindGroupProvider
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu      *sync.Mutex
	logger  *log.Logger
	backend RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           common.Color
	shadowsEnabled       bool

	width  int
	height int

	pipelines      map[string]pipeline.Pipeline
	frameLayout    *wgpu.BindGroupLayout
	materialLayout *wgpu.BindGroupLayout
	objectLayout   *wgpu.BindGroupLayout
	faceLayout     *wgpu.BindGroupLayout

	frame bind_group_provider.BindGroupProvider
	faces [light.ShadowFaceCount]bind_group_provider.BindGroupProvider

	shadowSize        uint32
	shadowArray       *wgpu.TextureView
	shadowLayers      []*wgpu.TextureView
	comparisonSampler *wgpu.Sampler
	diffuseSampler    *wgpu.Sampler
	whiteTexture      *wgpu.TextureView
	defaultMaterial   material.Material

	meshes    map[*model.Mesh]bind_group_provider.BindGroupProvider
	materials map[material.Material]*materialResources
	objects   map[game_object.GameObject]bind_group_provider.BindGroupProvider
	textures  map[*common.TextureStagingData]*wgpu.TextureView
	failed    map[*model.Mesh]bool

	stats FrameStats
}

// Renderer draws a scene through a camera: six depth-only shadow passes for the point light's cube faces,
// then one lit pass over every drawable inside the view frustum.
//
// GPU resources for meshes, materials, textures and objects are created the first time a drawable uses
// them and released once no drawable does. Only the render goroutine touches the GPU.
type Renderer interface {
	// Resize reconfigures the surface for a new size. Zero or negative sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Render draws one frame and presents it. A drawable whose resources cannot be created is logged
	// once and skipped; the frame itself only fails when the surface cannot be acquired.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw it through
	//
	// Returns:
	//   - error: an error if the frame could not be started
	Render(s scene.Scene, cam camera.Camera) error

	// Stats returns statistics about the last frame.
	//
	// Returns:
	//   - FrameStats: the statistics
	Stats() FrameStats

	// Release releases every GPU resource, the pipelines and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the WebGPU backend drawing into the given surface.
// It panics if no adapter or device is available or the built-in pipelines cannot be created.
//
// Parameters:
//   - src: the surface source, usually the window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(src SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := newRendererState(options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	backend := newWGPURendererBackend(src.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	if err := r.init(backend, src.Width(), src.Height()); err != nil {
		panic(fmt.Sprintf("renderer init: %v", err))
	}
	return r
}

func newRendererState(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:              &sync.Mutex{},
		logger:          log.Default(),
		clearColor:      common.Color{0, 0, 0},
		shadowsEnabled:  true,
		pipelines:       make(map[string]pipeline.Pipeline),
		defaultMaterial: material.NewMaterial(material.WithName("default")),
		meshes:          make(map[*model.Mesh]bind_group_provider.BindGroupProvider),
		materials:       make(map[material.Material]*materialResources),
		objects:         make(map[game_object.GameObject]bind_group_provider.BindGroupProvider),
		textures:        make(map[*common.TextureStagingData]*wgpu.TextureView),
		failed:          make(map[*model.Mesh]bool),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init creates the layouts, pipelines and frame-wide resources on the backend.
func (r *renderer) init(backend RendererBackend, width, height int) error {
	r.backend = backend
	if r.pendingPresentMode != nil {
		backend.SetPresentMode(*r.pendingPresentMode)
	}
	backend.SetClearColor(r.clearColor)
	if width > 0 && height > 0 {
		r.width, r.height = width, height
		backend.ConfigureSurface(width, height)
	}

	var err error
	if r.frameLayout, err = backend.CreateBindGroupLayout("Frame", frameLayoutEntries()); err != nil {
		return fmt.Errorf("frame layout: %w", err)
	}
	if r.materialLayout, err = backend.CreateBindGroupLayout("Material", materialLayoutEntries()); err != nil {
		return fmt.Errorf("material layout: %w", err)
	}
	if r.objectLayout, err = backend.CreateBindGroupLayout("Object", objectLayoutEntries()); err != nil {
		return fmt.Errorf("object layout: %w", err)
	}
	if r.faceLayout, err = backend.CreateBindGroupLayout("Shadow Face", faceLayoutEntries()); err != nil {
		return fmt.Errorf("shadow face layout: %w", err)
	}

	if err := r.registerPipelines(); err != nil {
		return err
	}

	if r.diffuseSampler, err = backend.CreateSampler(common.SamplerStagingData{}); err != nil {
		return fmt.Errorf("diffuse sampler: %w", err)
	}
	if r.comparisonSampler, err = backend.CreateComparisonSampler(); err != nil {
		return fmt.Errorf("comparison sampler: %w", err)
	}
	white := common.TextureStagingData{Name: "white", Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	if r.whiteTexture, err = backend.CreateTexture(white); err != nil {
		return fmt.Errorf("default texture: %w", err)
	}

	r.frame = bind_group_provider.NewBindGroupProvider("Frame",
		bind_group_provider.WithSampler(3, r.comparisonSampler),
	)
	if err := backend.InitUniformBuffer(r.frame, 0, cameraUniformSize); err != nil {
		return fmt.Errorf("camera uniform: %w", err)
	}
	if err := backend.InitUniformBuffer(r.frame, 1, lightsUniformSize); err != nil {
		return fmt.Errorf("lights uniform: %w", err)
	}

	for i := range r.faces {
		face := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Shadow Face %d", i))
		if err := backend.InitUniformBuffer(face, 0, faceUniformSize); err != nil {
			return fmt.Errorf("shadow face %d uniform: %w", i, err)
		}
		if err := backend.InitBindGroup(face, r.faceLayout, faceLayoutEntries()); err != nil {
			return fmt.Errorf("shadow face %d bind group: %w", i, err)
		}
		r.faces[i] = face
	}
	return nil
}

func (r *renderer) registerPipelines() error {
	meshShader, err := shader.NewShader(pipelineMesh, MeshShaderSource)
	if err != nil {
		return err
	}
	shadowShader, err := shader.NewShader(pipelineShadow, ShadowShaderSource)
	if err != nil {
		return err
	}

	samples := uint32(r.backend.SampleCount())
	mainLayouts := pipeline.WithBindGroupLayouts(r.frameLayout, r.materialLayout, r.objectLayout)
	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineMesh, meshShader,
			mainLayouts,
			pipeline.WithCullMode(wgpu.CullModeBack),
			pipeline.WithSampleCount(samples),
		),
		pipeline.NewPipeline(pipelineMeshDouble, meshShader,
			mainLayouts,
			pipeline.WithCullMode(wgpu.CullModeNone),
			pipeline.WithSampleCount(samples),
		),
		pipeline.NewPipeline(pipelineShadow, shadowShader,
			pipeline.WithBindGroupLayouts(r.faceLayout, r.objectLayout),
			pipeline.WithDepthOnly(wgpu.TextureFormatDepth32Float),
			pipeline.WithCullMode(wgpu.CullModeNone),
		),
	}
	for _, p := range pipelines {
		if err := r.backend.RegisterPipeline(p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Key(), err)
		}
		r.pipelines[p.Key()] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.width <= 0 || r.height <= 0 {
		return nil
	}

	drawables := s.Drawables()
	point := s.Light()
	shadows := r.shadowsEnabled && point != nil && point.CastsShadows()

	if err := r.ensureShadowMap(point); err != nil {
		return err
	}

	plan := planFrame(drawables, cam.Frustum(), shadows)

	camU := cam.Uniform()
	lightsU := light.NewGPULightsUniform(s.Ambient(), point, shadows)
	writes := []bind_group_provider.BufferWrite{
		bind_group_provider.UniformWrite(r.frame, 0, &camU),
		bind_group_provider.UniformWrite(r.frame, 1, &lightsU),
	}
	if shadows {
		faces := light.NewGPUShadowFaceUniforms(point)
		for i := range faces {
			writes = append(writes, bind_group_provider.UniformWrite(r.faces[i], 0, &faces[i]))
		}
	}

	resources := make([]*drawResources, len(drawables))
	written := make(map[bind_group_provider.BindGroupProvider]bool)
	prepare := func(i int) {
		if resources[i] != nil {
			return
		}
		res, ok := r.prepare(drawables[i])
		if !ok {
			return
		}
		resources[i] = res
		d := drawables[i]
		if !written[res.object] {
			written[res.object] = true
			u := model.GPUModelUniform{Model: d.World, Normal: d.Normal}
			if d.ReceiveShadow {
				u.Flags[0] = 1
			}
			if d.CastShadow {
				u.Flags[1] = 1
			}
			writes = append(writes, bind_group_provider.UniformWrite(res.object, 0, &u))
		}
		if !written[res.material] {
			written[res.material] = true
			u := r.materialOf(d).Uniform()
			writes = append(writes, bind_group_provider.UniformWrite(res.material, 0, &u))
		}
	}
	for _, i := range plan.casters {
		prepare(i)
	}
	for _, i := range plan.visible {
		prepare(i)
	}

	r.backend.WriteBuffers(writes)

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	shadowDraws := 0
	if shadows {
		shadowPipeline := r.pipelines[pipelineShadow]
		for f, layer := range r.shadowLayers {
			r.backend.BeginShadowPass(layer)
			for _, i := range plan.casters {
				res := resources[i]
				if res == nil {
					continue
				}
				r.backend.ShadowDrawCall(shadowPipeline, res.mesh, []bind_group_provider.BindGroupProvider{r.faces[f], res.object})
				shadowDraws++
			}
			r.backend.EndShadowPass()
		}
	}

	drawn := 0
	r.backend.BeginMainPass()
	for _, i := range plan.visible {
		res := resources[i]
		if res == nil {
			continue
		}
		p := r.pipelines[pipelineFor(drawables[i])]
		r.backend.DrawCall(p, res.mesh, []bind_group_provider.BindGroupProvider{r.frame, res.material, res.object})
		drawn++
	}
	r.backend.EndMainPass()
	r.backend.EndFrame()
	r.backend.Present()

	r.sweep(drawables)

	r.stats = FrameStats{
		Frame:       r.stats.Frame + 1,
		Drawables:   len(drawables),
		Drawn:       drawn,
		Culled:      plan.culled,
		ShadowDraws: shadowDraws,
		Meshes:      len(r.meshes),
		Materials:   len(r.materials),
		Textures:    len(r.textures),
	}
	return nil
}

// ensureShadowMap sizes the shadow map to the point light and rebuilds the frame bind group after a change.
// Without a point light a 1x1 map keeps the frame bind group complete.
func (r *renderer) ensureShadowMap(point light.Light) error {
	size := uint32(1)
	if point != nil && point.Shadow().MapSize > 0 {
		size = point.Shadow().MapSize
	}
	if size == r.shadowSize && r.shadowArray != nil {
		return nil
	}

	array, layers, err := r.backend.CreateShadowMap(size, light.ShadowFaceCount)
	if err != nil {
		return fmt.Errorf("shadow map: %w", err)
	}
	r.shadowSize = size
	r.shadowArray = array
	r.shadowLayers = layers
	r.frame.SetTextureView(2, array)
	if err := r.backend.InitBindGroup(r.frame, r.frameLayout, frameLayoutEntries()); err != nil {
		return fmt.Errorf("frame bind group: %w", err)
	}
	return nil
}

// materialOf returns the drawable's material or the default one.
func (r *renderer) materialOf(d scene.Drawable) material.Material {
	if d.Mesh.Material != nil {
		return d.Mesh.Material
	}
	return r.defaultMaterial
}

// prepare returns the resources of a drawable, creating whatever is missing.
// A failure is logged once per mesh and reported as !ok from then on.
func (r *renderer) prepare(d scene.Drawable) (*drawResources, bool) {
	if r.failed[d.Mesh] {
		return nil, false
	}
	res, err := r.resources(d)
	if err != nil {
		r.failed[d.Mesh] = true
		r.logger.Printf("[Renderer] skipping mesh %q: %v", d.Mesh.Name, err)
		return nil, false
	}
	return res, true
}

func (r *renderer) resources(d scene.Drawable) (*drawResources, error) {
	meshP, err := r.meshProvider(d.Mesh)
	if err != nil {
		return nil, err
	}
	matP, err := r.materialProvider(r.materialOf(d))
	if err != nil {
		return nil, err
	}
	objP, err := r.objectProvider(d.Object)
	if err != nil {
		return nil, err
	}
	return &drawResources{mesh: meshP, material: matP, object: objP}, nil
}

func (r *renderer) meshProvider(m *model.Mesh) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := r.meshes[m]; ok {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider("Mesh " + m.Name)
	if err := r.backend.InitMeshBuffers(p, m.VertexData(), m.IndexData(), len(m.Indices)); err != nil {
		p.Release()
		return nil, fmt.Errorf("mesh buffers: %w", err)
	}
	r.meshes[m] = p
	return p, nil
}

func (r *renderer) materialProvider(mat material.Material) (bind_group_provider.BindGroupProvider, error) {
	tex := mat.Texture()
	if res, ok := r.materials[mat]; ok {
		if res.texture == tex {
			return res.provider, nil
		}
		res.provider.Release()
		delete(r.materials, mat)
	}

	view := r.whiteTexture
	if tex != nil {
		var err error
		if view, err = r.textureView(tex); err != nil {
			return nil, err
		}
	}

	p := bind_group_provider.NewBindGroupProvider("Material "+mat.Name(),
		bind_group_provider.WithTextureView(1, view),
		bind_group_provider.WithSampler(2, r.diffuseSampler),
	)
	if err := r.backend.InitUniformBuffer(p, 0, materialUniformSize); err != nil {
		p.Release()
		return nil, fmt.Errorf("material uniform: %w", err)
	}
	if err := r.backend.InitBindGroup(p, r.materialLayout, materialLayoutEntries()); err != nil {
		p.Release()
		return nil, fmt.Errorf("material bind group: %w", err)
	}
	r.materials[mat] = &materialResources{provider: p, texture: tex}
	return p, nil
}

func (r *renderer) textureView(tex *common.TextureStagingData) (*wgpu.TextureView, error) {
	if view, ok := r.textures[tex]; ok {
		return view, nil
	}
	view, err := r.backend.CreateTexture(*tex)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", tex.Name, err)
	}
	r.textures[tex] = view
	return view, nil
}

func (r *renderer) objectProvider(obj game_object.GameObject) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := r.objects[obj]; ok {
		return p, nil
	}
	label := "Object"
	if obj != nil {
		label += " " + obj.Name()
	}
	p := bind_group_provider.NewBindGroupProvider(label)
	if err := r.backend.InitUniformBuffer(p, 0, modelUniformSize); err != nil {
		p.Release()
		return nil, fmt.Errorf("object uniform: %w", err)
	}
	if err := r.backend.InitBindGroup(p, r.objectLayout, objectLayoutEntries()); err != nil {
		p.Release()
		return nil, fmt.Errorf("object bind group: %w", err)
	}
	r.objects[obj] = p
	return p, nil
}

// sweep releases the resources of meshes, materials, objects and textures no drawable uses anymore.
func (r *renderer) sweep(drawables []scene.Drawable) {
	liveMeshes := make(map[*model.Mesh]bool, len(drawables))
	liveMaterials := make(map[material.Material]bool)
	liveObjects := make(map[game_object.GameObject]bool)
	liveTextures := make(map[*common.TextureStagingData]bool)
	for _, d := range drawables {
		if d.Mesh == nil {
			continue
		}
		liveMeshes[d.Mesh] = true
		mat := r.materialOf(d)
		liveMaterials[mat] = true
		if tex := mat.Texture(); tex != nil {
			liveTextures[tex] = true
		}
		liveObjects[d.Object] = true
	}

	for m, p := range r.meshes {
		if !liveMeshes[m] {
			p.Release()
			delete(r.meshes, m)
		}
	}
	for m := range r.failed {
		if !liveMeshes[m] {
			delete(r.failed, m)
		}
	}
	for mat, res := range r.materials {
		if !liveMaterials[mat] {
			res.provider.Release()
			delete(r.materials, mat)
		}
	}
	for obj, p := range r.objects {
		if !liveObjects[obj] {
			p.Release()
			delete(r.objects, obj)
		}
	}
	for tex, view := range r.textures {
		if !liveTextures[tex] {
			r.backend.ReleaseTexture(view)
			delete(r.textures, tex)
		}
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(nil)
	for _, face := range r.faces {
		if face != nil {
			face.Release()
		}
	}
	if r.frame != nil {
		r.frame.Release()
	}
	if r.whiteTexture != nil {
		r.backend.ReleaseTexture(r.whiteTexture)
		r.whiteTexture = nil
	}
	for key, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, key)
	}
	r.backend.Release()
}
