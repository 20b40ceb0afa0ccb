package loader

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

func dioramaAssets(t *testing.T) map[string][]byte {
	return map[string][]byte{
		"Resources/Tank.obj":                []byte(cubeOBJ),
		"Resources/Turret.obj":              []byte(cubeOBJ),
		"Resources/Tank_texture.jpg":        pngBytes(t, 8, 8),
		"Resources/Lowpoly_tree_sample.obj": []byte(treeOBJ),
		"Resources/Lowpoly_tree_sample.mtl": []byte(treeMTL),
		"Resources/leaves.png":              pngBytes(t, 4, 4),
	}
}

func tankRequest(g scene.Group) Request {
	pos := config.Vec3{1, 1, 1}
	scale := config.Uniform(4)
	tint := config.Color(common.ColorFromHex(0x629163))
	asset := config.Asset{
		AssetDescriptor: config.AssetDescriptor{Mesh: "Resources/Tank.obj", Texture: "Resources/Tank_texture.jpg"},
		Group:           "tank",
		Placement:       config.Placement{Scale: &scale, Position: &pos, Tint: &tint},
	}
	return Request{Name: "tank", Descriptor: asset.AssetDescriptor, Placement: asset.Resolve(config.Placement{}), Group: g}
}

func TestLoadTankScenario(t *testing.T) {
	logger, logs := newTestLogger()
	s := scene.NewScene()
	g := s.AddGroup("tank")
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithLogger(logger), WithScene(s))
	defer l.Close()

	task := l.Load(context.Background(), tankRequest(g))
	require.NoError(t, task.Wait(waitCtx(t)))
	assert.Equal(t, TaskSucceeded, task.State())

	require.Equal(t, 1, g.Len())
	obj := g.Children()[0]
	assert.Same(t, obj, task.Object())
	assert.Equal(t, [3]float32{4, 4, 4}, obj.Scale())
	assert.Equal(t, [3]float32{1, 1, 1}, obj.Position())
	assert.True(t, obj.CastShadow())
	assert.False(t, obj.ReceiveShadow())
	for _, mesh := range obj.Model().Meshes() {
		assert.Equal(t, uint32(0x629163), mesh.Material.Color().Hex())
		require.NotNil(t, mesh.Material.Texture())
		assert.Equal(t, "Resources/Tank_texture.jpg", mesh.Material.Texture().Name)
	}

	assert.Len(t, s.Attached(), 1)
	assert.Len(t, s.Drawables(), 1+len(obj.Model().Meshes()))
	assert.Empty(t, logs.lines("failed"))
	assert.Len(t, logs.lines(`loaded "tank"`), 1)
}

func TestLoadMaterialDescribedAsset(t *testing.T) {
	s := scene.NewScene()
	g := s.AddGroup("tree")
	rec := newRecordingFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t))))
	l := NewLoader(WithFetcher(rec), WithScene(s), WithLogger(newDiscardLogger()))
	defer l.Close()

	asset := config.Asset{AssetDescriptor: config.AssetDescriptor{
		Mesh:     "Resources/Lowpoly_tree_sample.obj",
		Material: "Resources/Lowpoly_tree_sample.mtl",
	}}
	task := l.Load(context.Background(), Request{Name: "tree", Descriptor: asset.AssetDescriptor, Placement: asset.Resolve(config.Placement{}), Group: g})
	require.NoError(t, task.Wait(waitCtx(t)))

	obj := g.Children()[0]
	assert.True(t, obj.CastShadow())
	assert.True(t, obj.ReceiveShadow())
	meshes := obj.Model().Meshes()
	require.Len(t, meshes, 2)
	assert.Equal(t, "Bark", meshes[0].Material.Name())
	assert.Nil(t, meshes[0].Material.Texture())
	assert.Equal(t, "Leaves", meshes[1].Material.Name())
	require.NotNil(t, meshes[1].Material.Texture())
	assert.Equal(t, 1, rec.count("Resources/leaves.png"))
}

func TestFailingMeshFetchLeavesGroupUnchanged(t *testing.T) {
	logger, logs := newTestLogger()
	s := scene.NewScene()
	g := s.AddGroup("rocks")
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithLogger(logger), WithScene(s))
	defer l.Close()

	task := l.Load(context.Background(), Request{
		Name:       "rock",
		Descriptor: config.AssetDescriptor{Mesh: "Resources/Rock.obj"},
		Placement:  config.ResolvedPlacement{Scale: [3]float32{1, 1, 1}},
		Group:      g,
	})
	err := task.Wait(waitCtx(t))

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, TaskFailed, task.State())
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, s.Attached())
	assert.Len(t, logs.lines("[Loader]"), 1)
	assert.Len(t, logs.lines(`failed to load "rock"`), 1)
}

func TestMaterialNotFoundSkipsGeometryFetch(t *testing.T) {
	logger, logs := newTestLogger()
	g := scene.NewGroup("tree")
	files := dioramaAssets(t)
	delete(files, "Resources/Lowpoly_tree_sample.mtl")
	rec := newRecordingFetcher(NewFSFetcher(memAssets(t, files)))
	l := NewLoader(WithFetcher(rec), WithLogger(logger))
	defer l.Close()

	task := l.Load(context.Background(), Request{
		Name: "tree",
		Descriptor: config.AssetDescriptor{
			Mesh:     "Resources/Lowpoly_tree_sample.obj",
			Material: "Resources/Lowpoly_tree_sample.mtl",
		},
		Group: g,
	})
	require.Error(t, task.Wait(waitCtx(t)))

	assert.Equal(t, 1, rec.count("Resources/Lowpoly_tree_sample.mtl"))
	assert.Equal(t, 0, rec.count("Resources/Lowpoly_tree_sample.obj"))
	assert.Equal(t, 0, g.Len())
	assert.Len(t, logs.lines("[Loader]"), 1)
}

func TestDuplicateLoadReturnsSameTask(t *testing.T) {
	s := scene.NewScene()
	g := s.AddGroup("tank")
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithScene(s), WithLogger(newDiscardLogger()))
	defer l.Close()

	first := l.Load(context.Background(), tankRequest(g))
	second := l.Load(context.Background(), tankRequest(g))
	assert.Same(t, first, second)

	require.NoError(t, l.Wait(waitCtx(t)))
	assert.Equal(t, 1, g.Len())
	assert.Len(t, l.Tasks(), 1)
}

func TestCancelBeforeCompletion(t *testing.T) {
	logger, logs := newTestLogger()
	g := scene.NewGroup("tank")
	blocking := &blockingFetcher{
		Fetcher: NewFSFetcher(memAssets(t, dioramaAssets(t))),
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
	l := NewLoader(WithFetcher(blocking), WithLogger(logger))
	defer l.Close()

	task := l.Load(context.Background(), tankRequest(g))
	select {
	case <-blocking.started:
	case <-time.After(waitTimeout):
		t.Fatal("fetch never started")
	}
	task.Cancel()

	err := task.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TaskCanceled, task.State())
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, task.Object())
	assert.Empty(t, logs.lines("failed"))
}

func TestCancelAfterCompletionIsNoop(t *testing.T) {
	g := scene.NewGroup("tank")
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithLogger(newDiscardLogger()))
	defer l.Close()

	task := l.Load(context.Background(), tankRequest(g))
	require.NoError(t, task.Wait(waitCtx(t)))
	task.Cancel()
	l.CancelAll()
	assert.Equal(t, TaskSucceeded, task.State())
	assert.NoError(t, task.Err())
	assert.Equal(t, 1, g.Len())
}

func TestLoadOrderDoesNotAffectMembership(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	membership := func(order []string) []string {
		s := scene.NewScene()
		g := s.AddGroup("grass")
		l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithScene(s), WithWorkers(3), WithLogger(newDiscardLogger()))
		defer l.Close()
		for _, name := range order {
			req := tankRequest(g)
			req.Name = name
			l.Load(context.Background(), req)
		}
		require.NoError(t, l.Wait(waitCtx(t)))
		var got []string
		for _, obj := range g.Children() {
			got = append(got, obj.Name())
		}
		return sortedCopy(got)
	}

	forward := membership(names)
	reversed := membership([]string{"f", "e", "d", "c", "b", "a"})
	assert.Equal(t, names, forward)
	assert.Equal(t, forward, reversed)
}

func TestWaitJoinsFailures(t *testing.T) {
	g := scene.NewGroup("g")
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithLogger(newDiscardLogger()))
	defer l.Close()

	for i := 0; i < 3; i++ {
		l.Load(context.Background(), Request{
			Name:       fmt.Sprintf("missing-%d", i),
			Descriptor: config.AssetDescriptor{Mesh: fmt.Sprintf("nope-%d.obj", i)},
			Group:      g,
		})
	}
	l.Load(context.Background(), tankRequest(g))

	err := l.Wait(waitCtx(t))
	require.Error(t, err)
	for i := 0; i < 3; i++ {
		assert.Contains(t, err.Error(), fmt.Sprintf("nope-%d.obj", i))
	}
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 1, g.Len())
}

func TestLoadTextureAppliesOnSuccess(t *testing.T) {
	files := dioramaAssets(t)
	files["checker_large.gif"] = pngBytes(t, 2, 2)
	s := scene.NewScene()
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, files))), WithLogger(newDiscardLogger()))
	defer l.Close()

	task := l.LoadTexture(context.Background(), "ground", "./checker_large.gif", s.SetGroundTexture)
	require.NoError(t, task.Wait(waitCtx(t)))
	assert.NotNil(t, s.Ground().Model().Meshes()[0].Material.Texture())

	again := l.LoadTexture(context.Background(), "ground", "./checker_large.gif", nil)
	assert.Same(t, task, again)
}

func TestLoadAfterCloseFails(t *testing.T) {
	l := NewLoader(WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))), WithLogger(newDiscardLogger()))
	l.Close()

	task := l.Load(context.Background(), tankRequest(scene.NewGroup("tank")))
	select {
	case <-task.Done():
	case <-time.After(waitTimeout):
		t.Fatal("task never finished")
	}
	assert.ErrorIs(t, task.Err(), ErrClosed)
	assert.Equal(t, TaskFailed, task.State())
}

type stopCountingPool struct {
	worker.DynamicWorkerPool
	stops atomic.Int32
}

func (p *stopCountingPool) Stop() {
	p.stops.Add(1)
	p.DynamicWorkerPool.Stop()
}

func TestCloseStopsWorkerPoolOnce(t *testing.T) {
	s := scene.NewScene()
	group := s.AddGroup("tank")
	l := NewLoader(
		WithFetcher(NewFSFetcher(memAssets(t, dioramaAssets(t)))),
		WithLogger(newDiscardLogger()),
		WithScene(s),
		WithWorkers(4),
	).(*loader)
	pool := &stopCountingPool{DynamicWorkerPool: l.pool}
	l.pool = pool

	task := l.Load(context.Background(), tankRequest(group))
	require.NoError(t, l.Wait(waitCtx(t)))
	assert.Equal(t, TaskSucceeded, task.State())

	l.Close()
	l.Close()
	assert.Equal(t, int32(1), pool.stops.Load())
	assert.Equal(t, 1, group.Len())
}
