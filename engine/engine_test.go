package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/loader"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxOBJ = `o Box
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`

type fakeWindow struct {
	width, height int

	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseDown func(button common.MouseButton, x, y int32)
	onMouseUp   func(button common.MouseButton, x, y int32)
	onMouseMove func(x, y int32)

	closeOnce sync.Once
	closeCh   chan struct{}
	mu        sync.Mutex
	closed    bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{width: 1280, height: 720, closeCh: make(chan struct{})}
}

func (w *fakeWindow) SetUpdateCallback(func())                     {}
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))   { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(keyCode uint32))     { w.onKeyUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y int32))     { w.onMouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }
func (w *fakeWindow) ProcessMessages()                             { <-w.closeCh }
func (w *fakeWindow) RequestClose()                                { w.closeOnce.Do(func() { close(w.closeCh) }) }
func (w *fakeWindow) SetMouseDownCallback(cb func(common.MouseButton, int32, int32)) {
	w.onMouseDown = cb
}
func (w *fakeWindow) SetMouseUpCallback(cb func(common.MouseButton, int32, int32)) {
	w.onMouseUp = cb
}

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.closeCh:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWindow) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

type stubRenderer struct {
	mu        sync.Mutex
	frames    int
	drawables []scene.Drawable
	resizes   [][2]int
	released  bool
	err       error
}

func (r *stubRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *stubRenderer) Render(s scene.Scene, _ camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.drawables = s.Drawables()
	return r.err
}

func (r *stubRenderer) Stats() renderer.FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return renderer.FrameStats{Frame: uint64(r.frames), Drawables: len(r.drawables)}
}

func (r *stubRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

func (r *stubRenderer) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// emptyManifest is the default manifest without assets or ground texture.
func emptyManifest() config.Scene {
	cfg := config.Default()
	cfg.Assets = nil
	cfg.Ground.Texture = ""
	cfg.Camera.Damping = false
	return cfg
}

func bootstrapHeadless(t *testing.T, cfg config.Scene, opts ...EngineBuilderOption) (*engine, *fakeWindow, *stubRenderer) {
	t.Helper()
	w := newFakeWindow()
	r := &stubRenderer{}
	var buf bytes.Buffer
	opts = append([]EngineBuilderOption{
		WithWindow(w),
		WithRenderer(r),
		WithLogger(log.New(&buf, "", 0)),
		WithFetcher(loader.NewFSFetcher(fstest.MapFS{})),
	}, opts...)
	eng, err := Bootstrap(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(eng.Loader().Close)
	return eng.(*engine), w, r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBootstrapRejectsInvalidManifest(t *testing.T) {
	cfg := emptyManifest()
	cfg.Window.Width = 0

	eng, err := Bootstrap(context.Background(), cfg, WithWindow(newFakeWindow()), WithRenderer(&stubRenderer{}))
	assert.Error(t, err)
	assert.Nil(t, eng)
}

func TestBuildSceneCreatesEmptyUnattachedGroups(t *testing.T) {
	s, err := BuildScene(emptyManifest())
	require.NoError(t, err)

	groups := s.Groups()
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name())
		assert.Zero(t, g.Len())
	}
	assert.Equal(t, []string{"grass", "rocks", "tank", "tree", "turret"}, names)
	assert.Empty(t, s.Attached())

	assert.True(t, s.Light().CastsShadows())
	assert.Equal(t, [3]float32{0, 6, 6}, s.Light().Position())
	assert.Equal(t, uint32(1024), s.Light().Shadow().MapSize)
	assert.True(t, s.Ground().ReceiveShadow())
	assert.False(t, s.Ground().CastShadow())
}

func TestFrameWithoutLoadedAssetsDrawsOnlyGround(t *testing.T) {
	e, _, r := bootstrapHeadless(t, emptyManifest())

	require.NotPanics(t, func() {
		require.NoError(t, e.Frame(1.0/60))
	})
	require.Len(t, r.drawables, 1)
	assert.Equal(t, scene.GroundName, r.drawables[0].Mesh.Name)
	assert.Empty(t, e.Tasks())
}

func TestFrameWrapsRenderError(t *testing.T) {
	e, _, r := bootstrapHeadless(t, emptyManifest())
	r.err = assert.AnError

	err := e.Frame(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "render frame")
}

func TestSubmitAssetsPlacesObjectsAndIsolatesFailures(t *testing.T) {
	cfg := emptyManifest()
	scale := config.Uniform(4)
	offset := config.Vec3{1, 1, 1}
	cfg.Groups = map[string]config.Group{"tank": {}, "rocks": {}}
	cfg.Assets = map[string]config.Asset{
		"tank": {
			AssetDescriptor: config.AssetDescriptor{Mesh: "Tank.obj"},
			Group:           "tank",
			Placement:       config.Placement{Scale: &scale, Position: &offset},
		},
		"rock": {
			AssetDescriptor: config.AssetDescriptor{Mesh: "Missing.obj"},
			Group:           "rocks",
		},
	}
	s, err := BuildScene(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	l := loader.NewLoader(
		loader.WithFetcher(loader.NewFSFetcher(fstest.MapFS{"Tank.obj": {Data: []byte(boxOBJ)}})),
		loader.WithScene(s),
		loader.WithLogger(log.New(&buf, "", 0)),
	)
	defer l.Close()

	tasks := SubmitAssets(context.Background(), l, s, cfg)
	require.Len(t, tasks, 2)
	assert.Equal(t, "rock", tasks[0].Name())
	assert.Equal(t, "tank", tasks[1].Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, l.Wait(ctx))

	tank, _ := s.Group("tank")
	require.Equal(t, 1, tank.Len())
	obj := tank.Children()[0]
	assert.Equal(t, [3]float32{4, 4, 4}, obj.Scale())
	assert.Equal(t, [3]float32{1, 1, 1}, obj.Position())
	assert.True(t, obj.CastShadow())
	assert.False(t, obj.ReceiveShadow())

	rocks, _ := s.Group("rocks")
	assert.Zero(t, rocks.Len())
	assert.Equal(t, 1, strings.Count(buf.String(), "failed to load"))

	attached := s.Attached()
	require.Len(t, attached, 1)
	assert.Equal(t, "tank", attached[0].Name())
	assert.Len(t, s.Drawables(), 2)
}

func TestSubmitAssetsLoadsGroundTexture(t *testing.T) {
	cfg := emptyManifest()
	cfg.Ground.Texture = "checker_large.png"
	s, err := BuildScene(cfg)
	require.NoError(t, err)
	require.Nil(t, s.Ground().Model().Meshes()[0].Material.Texture())

	l := loader.NewLoader(
		loader.WithFetcher(loader.NewFSFetcher(fstest.MapFS{"checker_large.png": {Data: pngBytes(t)}})),
		loader.WithScene(s),
		loader.WithLogger(log.New(&bytes.Buffer{}, "", 0)),
	)
	defer l.Close()

	tasks := SubmitAssets(context.Background(), l, s, cfg)
	require.Len(t, tasks, 1)
	assert.Equal(t, GroundTextureTask, tasks[0].Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))

	mat := s.Ground().Model().Meshes()[0].Material
	require.NotNil(t, mat.Texture())
	assert.Equal(t, uint32(2), mat.Texture().Width)
	assert.Equal(t, [2]float32{8, 8}, mat.Tiling().Repeat)
}

func TestPointerInputDrivesController(t *testing.T) {
	e, w, _ := bootstrapHeadless(t, emptyManifest())
	ctrl := e.Controller()
	azimuth, radius, target := ctrl.Azimuth(), ctrl.Radius(), ctrl.Target()

	w.onMouseDown(common.MouseButtonLeft, 100, 100)
	w.onMouseMove(140, 100)
	w.onMouseUp(common.MouseButtonLeft, 140, 100)
	require.NoError(t, e.Frame(1.0/60))
	assert.NotEqual(t, azimuth, ctrl.Azimuth())

	w.onMouseMove(300, 300)
	rotated := ctrl.Azimuth()
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, rotated, ctrl.Azimuth(), "moves without a held button are ignored")

	w.onScroll(1)
	require.NoError(t, e.Frame(1.0/60))
	assert.Less(t, ctrl.Radius(), radius)

	w.onMouseDown(common.MouseButtonRight, 10, 10)
	w.onMouseMove(60, 10)
	w.onMouseUp(common.MouseButtonRight, 60, 10)
	require.NoError(t, e.Frame(1.0/60))
	assert.NotEqual(t, target, ctrl.Target())

	w.onKeyDown(common.KeyR)
	require.NoError(t, e.Frame(1.0/60))
	assert.InDelta(t, azimuth, ctrl.Azimuth(), 1e-5)
	assert.InDelta(t, radius, ctrl.Radius(), 1e-4)
	assert.Equal(t, target, ctrl.Target())
}

func TestHeldKeysPanOnTick(t *testing.T) {
	e, w, _ := bootstrapHeadless(t, emptyManifest())
	ctrl := e.Controller()
	start := ctrl.Target()

	w.onKeyDown(common.KeyD)
	e.tick(1.0 / 60)
	ctrl.Update(0)
	moved := ctrl.Target()
	assert.NotEqual(t, start, moved)

	w.onKeyUp(common.KeyD)
	e.tick(1.0 / 60)
	ctrl.Update(0)
	assert.Equal(t, moved, ctrl.Target())
}

func TestResizeUpdatesRendererAndCamera(t *testing.T) {
	e, w, r := bootstrapHeadless(t, emptyManifest())

	w.onResize(800, 400)
	w.onResize(0, 400)

	assert.Equal(t, [][2]int{{800, 400}}, r.resizes)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
}

func TestEscapeQuits(t *testing.T) {
	e, w, _ := bootstrapHeadless(t, emptyManifest())

	w.onKeyDown(common.KeyEsc)

	assert.False(t, w.IsRunning())
	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel still open")
	}
}

func TestRunRendersUntilQuitThenReleases(t *testing.T) {
	e, w, r := bootstrapHeadless(t, emptyManifest(), WithTickRate(240), WithRenderFrameLimit(500))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool { return r.frameCount() >= 3 }, 5*time.Second, time.Millisecond)
	e.Quit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.True(t, w.isClosed())
	r.mu.Lock()
	assert.True(t, r.released)
	r.mu.Unlock()
	assert.Zero(t, e.Loader().Pending())
}
