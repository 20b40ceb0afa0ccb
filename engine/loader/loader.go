package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
)

// Request describes one asset load: what to fetch, how to place it and where to append it.
type Request struct {
	Name       string
	Descriptor config.AssetDescriptor
	Placement  config.ResolvedPlacement
	Group      scene.Group
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	fetcher        Fetcher
	logger         *log.Logger
	progress       ProgressFunc
	workers        int
	maxTextureSize int
	scene          scene.Scene

	pool     worker.DynamicWorkerPool
	textures *textureCache
	tasks    map[string]*task
	nextID   int
	closed   bool

	wg     *sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Loader fetches, parses and places assets on a worker pool. Each asset name loads at most once; the caller
// gets a Task handle back immediately and never blocks on the load.
type Loader interface {
	// Load queues an asset load. A second Load with the same name returns the first task.
	//
	// Parameters:
	//   - ctx: cancels this load when done
	//   - req: the asset to load
	//
	// Returns:
	//   - Task: the load handle
	Load(ctx context.Context, req Request) Task

	// LoadTexture queues a standalone texture load and hands the decoded texture to apply on success.
	//
	// Parameters:
	//   - ctx: cancels this load when done
	//   - name: the task name, unique across Load and LoadTexture
	//   - path: the texture asset path
	//   - apply: receives the texture; it is not called if the task fails or is cancelled
	//
	// Returns:
	//   - Task: the load handle
	LoadTexture(ctx context.Context, name, path string, apply func(*common.TextureStagingData)) Task

	// Task looks up a task by name.
	//
	// Parameters:
	//   - name: the task name
	//
	// Returns:
	//   - Task: the task, or nil
	//   - bool: whether it exists
	Task(name string) (Task, bool)

	// Tasks returns every task sorted by name.
	//
	// Returns:
	//   - []Task: the tasks
	Tasks() []Task

	// Pending returns the number of tasks that have not finished.
	//
	// Returns:
	//   - int: the count
	Pending() int

	// Wait blocks until every task submitted so far has finished.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: ctx.Err() if ctx ended first, otherwise the joined task failures
	Wait(ctx context.Context) error

	// CancelAll cancels every unfinished task.
	CancelAll()

	// Close cancels every unfinished task, waits for the queued tasks to return and stops the worker pool.
	// Later loads fail with ErrClosed. Calling Close again only waits.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from the working directory with 4 workers.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loader{
		mu:             &sync.RWMutex{},
		logger:         log.Default(),
		workers:        4,
		maxTextureSize: DefaultMaxTextureSize,
		tasks:          make(map[string]*task),
		wg:             &sync.WaitGroup{},
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, option := range options {
		option(l)
	}
	if l.fetcher == nil {
		l.fetcher = NewFSFetcher(os.DirFS("."))
	}
	l.textures = newTextureCache(l.maxTextureSize)
	l.pool = worker.NewDynamicWorkerPool(max(l.workers, 1), 256, 1*time.Second)
	return l
}

func (l *loader) Load(ctx context.Context, req Request) Task {
	return l.submit(ctx, req.Name, func(t *task) {
		obj, err := l.loadAsset(t.ctx, req)
		if err != nil {
			l.finishFailed(t, err)
			return
		}
		ok := t.commit(obj, func() {
			if req.Group != nil {
				req.Group.Append(obj)
				if l.scene != nil {
					l.scene.Attach(req.Group)
				}
			}
		})
		if !ok {
			l.finishFailed(t, t.ctx.Err())
			return
		}
		l.logger.Printf("[Loader] loaded %q: %d meshes", req.Name, len(obj.Model().Meshes()))
	})
}

func (l *loader) LoadTexture(ctx context.Context, name, path string, apply func(*common.TextureStagingData)) Task {
	return l.submit(ctx, name, func(t *task) {
		tex, err := l.textures.get(t.ctx, l.ctx, l.fetcher, path, l.progress)
		if err != nil {
			l.finishFailed(t, fmt.Errorf("texture %s: %w", path, err))
			return
		}
		ok := t.commit(nil, func() {
			if apply != nil {
				apply(tex)
			}
		})
		if !ok {
			l.finishFailed(t, t.ctx.Err())
		}
	})
}

// submit registers a task under name and queues run on the worker pool.
func (l *loader) submit(ctx context.Context, name string, run func(t *task)) Task {
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.Lock()
	if existing, ok := l.tasks[name]; ok {
		l.mu.Unlock()
		return existing
	}
	t := newTask(ctx, name)
	if l.closed {
		l.mu.Unlock()
		t.fail(ErrClosed)
		return t
	}
	l.tasks[name] = t
	id := l.nextID
	l.nextID++
	l.wg.Add(1)
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer l.wg.Done()
			if !t.start() {
				t.fail(t.ctx.Err())
				return nil, nil
			}
			run(t)
			return nil, nil
		},
	})
	return t
}

// finishFailed records the failure and logs it once. Cancellations are recorded without a log line.
func (l *loader) finishFailed(t *task, err error) {
	t.fail(err)
	if t.State() == TaskFailed {
		l.logger.Printf("[Loader] failed to load %q: %v", t.name, err)
	}
}

// loadAsset runs the fetch and parse sequence: material library and its textures, then the direct texture,
// then the geometry. Nothing is appended here.
func (l *loader) loadAsset(ctx context.Context, req Request) (game_object.GameObject, error) {
	desc := req.Descriptor

	var lib *MaterialLibrary
	if desc.Material != "" {
		data, err := l.fetcher.Fetch(ctx, desc.Material, l.progress)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", desc.Material, err)
		}
		if lib, err = DecodeMTL(desc.Material, data); err != nil {
			return nil, err
		}
		for _, p := range lib.TexturePaths() {
			tex, err := l.textures.get(ctx, l.ctx, l.fetcher, p, l.progress)
			if err != nil {
				return nil, fmt.Errorf("material %s texture %s: %w", desc.Material, p, err)
			}
			lib.SetTexture(p, tex)
		}
		l.logWarnings(req.Name, desc.Material, lib.Warnings())
	}

	var tex *common.TextureStagingData
	if desc.Texture != "" {
		var err error
		if tex, err = l.textures.get(ctx, l.ctx, l.fetcher, desc.Texture, l.progress); err != nil {
			return nil, fmt.Errorf("texture %s: %w", desc.Texture, err)
		}
	}

	data, err := l.fetcher.Fetch(ctx, desc.Mesh, l.progress)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", desc.Mesh, err)
	}
	decoded, err := DecodeOBJ(req.Name, desc.Mesh, data, lib)
	if err != nil {
		return nil, err
	}
	l.logWarnings(req.Name, desc.Mesh, decoded.Warnings)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	place := req.Placement
	for _, mesh := range decoded.Model.Meshes() {
		if tex != nil {
			mesh.Material.SetTexture(tex)
		}
		if place.Tint != nil {
			mesh.Material.SetColor(*place.Tint)
		}
	}
	return game_object.NewGameObject(
		game_object.WithName(req.Name),
		game_object.WithModel(decoded.Model),
		game_object.WithPosition(place.Position),
		game_object.WithRotation(place.Rotation),
		game_object.WithScale(place.Scale),
		game_object.WithShadows(place.CastShadow, place.ReceiveShadow),
	), nil
}

// logWarnings summarizes parser warnings on one line.
func (l *loader) logWarnings(name, path string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	l.logger.Printf("[Loader] %q: %s: %d warnings, first: %s", name, path, len(warnings), warnings[0])
}

func (l *loader) Task(name string) (Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tasks[name]
	if !ok {
		return nil, false
	}
	return t, true
}

func (l *loader) Tasks() []Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.tasks))
	for name := range l.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Task, 0, len(names))
	for _, name := range names {
		out = append(out, l.tasks[name])
	}
	return out
}

func (l *loader) Pending() int {
	n := 0
	for _, t := range l.Tasks() {
		if !t.State().Terminal() {
			n++
		}
	}
	return n
}

func (l *loader) Wait(ctx context.Context) error {
	var errs []error
	for _, t := range l.Tasks() {
		if err := t.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (l *loader) CancelAll() {
	for _, t := range l.Tasks() {
		t.Cancel()
	}
}

func (l *loader) Close() {
	l.mu.Lock()
	wasClosed := l.closed
	l.closed = true
	l.mu.Unlock()

	l.CancelAll()
	l.cancel()
	l.wg.Wait()
	if !wasClosed {
		l.pool.Stop()
	}
}
