package renderer

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records what the renderer asks of the GPU. The objects it hands out are never released.
type fakeBackend struct {
	configured   [][2]int
	pipelines    []string
	meshUploads  map[string]int
	textures     map[*wgpu.TextureView]string
	released     []string
	shadowMaps   []uint32
	shadowPasses int
	shadowDraws  int
	draws        []string
	frames       int
	presented    int
	failMesh     string
	beginErr     error
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meshUploads: make(map[string]int),
		textures:    make(map[*wgpu.TextureView]string),
	}
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.configured = append(f.configured, [2]int{width, height})
}
func (f *fakeBackend) SetPresentMode(PresentMode)   {}
func (f *fakeBackend) SetClearColor(common.Color)   {}
func (f *fakeBackend) SampleCount() MSAASampleCount { return MSAA4x }
func (f *fakeBackend) CreateBindGroupLayout(string, []wgpu.BindGroupLayoutEntry) (*wgpu.BindGroupLayout, error) {
	return nil, nil
}
func (f *fakeBackend) RegisterPipeline(p pipeline.Pipeline) error {
	f.pipelines = append(f.pipelines, p.Key())
	return nil
}
func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, _ int) error {
	name := strings.TrimPrefix(provider.Label(), "Mesh ")
	if name == f.failMesh {
		return errors.New("out of memory")
	}
	f.meshUploads[name]++
	return nil
}
func (f *fakeBackend) InitUniformBuffer(bind_group_provider.BindGroupProvider, int, uint64) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, *wgpu.BindGroupLayout, []wgpu.BindGroupLayoutEntry) error {
	return nil
}
func (f *fakeBackend) CreateTexture(staging common.TextureStagingData) (*wgpu.TextureView, error) {
	view := &wgpu.TextureView{}
	f.textures[view] = staging.Name
	return view, nil
}
func (f *fakeBackend) ReleaseTexture(view *wgpu.TextureView) {
	f.released = append(f.released, f.textures[view])
	delete(f.textures, view)
}
func (f *fakeBackend) CreateSampler(common.SamplerStagingData) (*wgpu.Sampler, error) {
	return &wgpu.Sampler{}, nil
}
func (f *fakeBackend) CreateComparisonSampler() (*wgpu.Sampler, error) {
	return &wgpu.Sampler{}, nil
}
func (f *fakeBackend) CreateShadowMap(size uint32, layers int) (*wgpu.TextureView, []*wgpu.TextureView, error) {
	f.shadowMaps = append(f.shadowMaps, size)
	views := make([]*wgpu.TextureView, layers)
	for i := range views {
		views[i] = &wgpu.TextureView{}
	}
	return &wgpu.TextureView{}, views, nil
}
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) {}
func (f *fakeBackend) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.frames++
	return nil
}
func (f *fakeBackend) BeginShadowPass(*wgpu.TextureView) { f.shadowPasses++ }
func (f *fakeBackend) ShadowDrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, []bind_group_provider.BindGroupProvider) {
	f.shadowDraws++
}
func (f *fakeBackend) EndShadowPass() {}
func (f *fakeBackend) BeginMainPass() {}
func (f *fakeBackend) DrawCall(p pipeline.Pipeline, _ bind_group_provider.BindGroupProvider, _ []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, p.Key())
}
func (f *fakeBackend) EndMainPass() {}
func (f *fakeBackend) EndFrame()    {}
func (f *fakeBackend) Present()     { f.presented++ }
func (f *fakeBackend) Release()     {}

func newTestRenderer(t *testing.T, fake *fakeBackend, options ...RendererBuilderOption) *renderer {
	t.Helper()
	r := newRendererState(options...)
	require.NoError(t, r.init(fake, 800, 600))
	return r
}

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithAspect(800.0/600.0),
		camera.WithClipPlanes(0.1, 1000),
		camera.WithController(camera.NewCameraController(
			camera.WithTarget([3]float32{}),
			camera.WithPosition([3]float32{0, 20, 40}),
		)),
	)
}

func testScene(castShadows bool) scene.Scene {
	return scene.NewScene(scene.WithPointLight(light.NewLight(light.LightTypePoint,
		light.WithPosition(0, 6, 6),
		light.WithCastsShadows(castShadows),
	)))
}

func boxObject(name string, pos [3]float32, mat material.Material) game_object.GameObject {
	verts := []model.GPUVertex{
		{Position: [3]float32{-1, -1, -1}},
		{Position: [3]float32{1, 1, 1}},
		{Position: [3]float32{1, -1, 1}},
	}
	mesh := model.NewMesh(name, verts, []uint32{0, 1, 2}, mat)
	return game_object.NewGameObject(
		game_object.WithName(name),
		game_object.WithModel(model.NewModel(model.WithName(name), model.WithMeshes(mesh))),
		game_object.WithPosition(pos),
		game_object.WithShadows(true, false),
	)
}

func addToGroup(s scene.Scene, group string, objs ...game_object.GameObject) {
	g := s.AddGroup(group)
	for _, obj := range objs {
		g.Append(obj)
	}
	s.Attach(g)
}

func texture(name string) *common.TextureStagingData {
	return &common.TextureStagingData{Name: name, Pixels: make([]byte, 16), Width: 2, Height: 2}
}

func TestBuiltInShadersPreprocess(t *testing.T) {
	for key, src := range map[string]string{pipelineMesh: MeshShaderSource, pipelineShadow: ShadowShaderSource} {
		s, err := shader.NewShader(key, src)
		require.NoError(t, err, key)
		assert.NotContains(t, s.Source(), "//@include", key)
		assert.Contains(t, s.Source(), "fn vs_main", key)
		assert.Contains(t, s.Source(), "fn fs_main", key)
		assert.Contains(t, s.Source(), "struct ModelUniform", key)
	}
}

func TestInitRegistersPipelines(t *testing.T) {
	fake := newFakeBackend()
	newTestRenderer(t, fake)

	assert.ElementsMatch(t, []string{pipelineMesh, pipelineMeshDouble, pipelineShadow}, fake.pipelines)
	assert.Equal(t, [][2]int{{800, 600}}, fake.configured)
	assert.Equal(t, []string{"white"}, mapValues(fake.textures))
}

func TestPlanFrameCullsAndCollectsCasters(t *testing.T) {
	s := testScene(true)
	addToGroup(s, "tank",
		boxObject("front", [3]float32{}, nil),
		boxObject("behind", [3]float32{0, 20, 200}, nil),
	)
	drawables := s.Drawables()
	drawables = append(drawables, scene.Drawable{Mesh: nil})

	plan := planFrame(drawables, common.ExtractFrustum(testCamera().ViewProjectionMatrix()), true)
	names := func(idx []int) []string {
		var out []string
		for _, i := range idx {
			out = append(out, drawables[i].Mesh.Name)
		}
		return out
	}
	assert.ElementsMatch(t, []string{scene.GroundName, "front"}, names(plan.visible))
	assert.ElementsMatch(t, []string{"front", "behind"}, names(plan.casters))
	assert.Equal(t, 1, plan.culled)
	assert.Equal(t, 1, plan.skipped)

	plan = planFrame(drawables, common.ExtractFrustum(testCamera().ViewProjectionMatrix()), false)
	assert.Empty(t, plan.casters)
}

func TestRenderEmptySceneDrawsGround(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)

	require.NoError(t, r.Render(testScene(true), testCamera()))

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Frame)
	assert.Equal(t, 1, stats.Drawables)
	assert.Equal(t, 1, stats.Drawn)
	assert.Equal(t, 0, stats.ShadowDraws)
	assert.Equal(t, []string{pipelineMeshDouble}, fake.draws)
	assert.Equal(t, light.ShadowFaceCount, fake.shadowPasses)
	assert.Equal(t, 1, fake.presented)
}

func TestRenderUploadsLazilyOnce(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)
	s := testScene(false)
	hull := material.NewMaterial(material.WithName("hull"), material.WithTexture(texture("hull.png")))
	addToGroup(s, "tank", boxObject("tank", [3]float32{}, hull))

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Render(s, testCamera()))
	}

	assert.Equal(t, map[string]int{scene.GroundName: 1, "tank": 1}, fake.meshUploads)
	assert.ElementsMatch(t, []string{"white", "hull.png"}, mapValues(fake.textures))
	stats := r.Stats()
	assert.Equal(t, uint64(3), stats.Frame)
	assert.Equal(t, 2, stats.Meshes)
	assert.Equal(t, 2, stats.Materials)
	assert.Equal(t, 1, stats.Textures)
	assert.ElementsMatch(t, []string{pipelineMeshDouble, pipelineMesh}, fake.draws[len(fake.draws)-2:])
}

func TestRenderShadowPassPerFace(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)
	s := testScene(true)
	addToGroup(s, "tank",
		boxObject("front", [3]float32{}, nil),
		boxObject("behind", [3]float32{0, 20, 200}, nil),
	)

	require.NoError(t, r.Render(s, testCamera()))

	stats := r.Stats()
	assert.Equal(t, 2, stats.Drawn)
	assert.Equal(t, 1, stats.Culled)
	assert.Equal(t, 2*light.ShadowFaceCount, stats.ShadowDraws)
	assert.Equal(t, []uint32{light.DefaultShadowMapSize}, fake.shadowMaps)
}

func TestRenderShadowsDisabled(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake, WithShadowsEnabled(false))
	s := testScene(true)
	addToGroup(s, "tank", boxObject("tank", [3]float32{}, nil))

	require.NoError(t, r.Render(s, testCamera()))

	assert.Equal(t, 0, fake.shadowPasses)
	assert.Equal(t, 0, r.Stats().ShadowDraws)
	assert.Equal(t, 2, r.Stats().Drawn)
}

func TestGroundTextureSwapReleasesOldResources(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)
	s := testScene(false)

	require.NoError(t, r.Render(s, testCamera()))
	s.SetGroundTexture(texture("grass.jpg"))
	require.NoError(t, r.Render(s, testCamera()))
	assert.Equal(t, 1, r.Stats().Textures)
	assert.Equal(t, 1, r.Stats().Meshes)
	assert.Empty(t, fake.released)

	s.SetGroundTexture(texture("dirt.jpg"))
	require.NoError(t, r.Render(s, testCamera()))

	assert.Equal(t, []string{"grass.jpg"}, fake.released)
	assert.ElementsMatch(t, []string{"white", "dirt.jpg"}, mapValues(fake.textures))
	assert.Equal(t, 1, r.Stats().Textures)
	assert.Equal(t, 1, r.Stats().Materials)
	assert.Equal(t, 3, fake.meshUploads[scene.GroundName])
}

func TestRenderSkipsFailedMeshAndLogsOnce(t *testing.T) {
	fake := newFakeBackend()
	fake.failMesh = "broken"
	var buf bytes.Buffer
	r := newTestRenderer(t, fake, WithLogger(log.New(&buf, "", 0)))
	s := testScene(false)
	addToGroup(s, "tank", boxObject("broken", [3]float32{}, nil))

	require.NoError(t, r.Render(s, testCamera()))
	require.NoError(t, r.Render(s, testCamera()))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "[Renderer]")
	assert.Contains(t, buf.String(), `"broken"`)
	assert.Equal(t, 1, r.Stats().Drawn)
}

func TestRenderBeginFrameError(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)
	fake.beginErr = errors.New("surface lost")

	err := r.Render(testScene(false), testCamera())
	require.Error(t, err)
	assert.ErrorIs(t, err, fake.beginErr)
	assert.Equal(t, 0, fake.presented)
}

func TestResizeIgnoresEmptyAndRepeatedSizes(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)

	r.Resize(0, 600)
	r.Resize(800, -1)
	r.Resize(800, 600)
	r.Resize(1024, 768)

	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, fake.configured)
}

func TestReleaseDropsAllTextures(t *testing.T) {
	fake := newFakeBackend()
	r := newTestRenderer(t, fake)
	s := testScene(false)
	s.SetGroundTexture(texture("grass.jpg"))
	require.NoError(t, r.Render(s, testCamera()))

	r.Release()

	assert.ElementsMatch(t, []string{"grass.jpg", "white"}, fake.released)
	assert.Empty(t, fake.textures)
}

func mapValues(m map[*wgpu.TextureView]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
