package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
)

var nextID atomic.Uint64

type gameObject struct {
	id            uint64
	name          string
	enabled       atomic.Bool
	mdl           model.Model
	mu            *sync.RWMutex
	position      [3]float32
	rotation      [3]float32
	scale         [3]float32
	castShadow    bool
	receiveShadow bool
}

// GameObject defines the interface for one placed instance of a loaded model.
// The transform is local to the group the object is appended to.
type GameObject interface {
	// ID returns the object's unique identifier, assigned at construction.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's name, the manifest asset name for loaded objects.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Position returns the local offset.
	//
	// Returns:
	//   - [3]float32: x, y, z
	Position() [3]float32

	// Rotation returns the local XYZ Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rx, ry, rz
	Rotation() [3]float32

	// Scale returns the local per-axis scale.
	//
	// Returns:
	//   - [3]float32: sx, sy, sz
	Scale() [3]float32

	// CastShadow reports whether the object is drawn into the shadow map.
	//
	// Returns:
	//   - bool: true if the object casts shadows
	CastShadow() bool

	// ReceiveShadow reports whether the object is darkened by the shadow map.
	//
	// Returns:
	//   - bool: true if the object receives shadows
	ReceiveShadow() bool

	// ModelMatrix builds the local transform from position, rotation and scale.
	//
	// Returns:
	//   - [16]float32: the column-major local matrix
	ModelMatrix() [16]float32

	// SetEnabled sets whether the object is drawn.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition sets the local offset.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the local rotation.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetScale sets the local scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetShadows sets both shadow flags.
	//
	// Parameters:
	//   - cast: whether the object casts shadows
	//   - receive: whether the object receives shadows
	SetShadows(cast, receive bool)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject with unit scale, configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:    nextID.Add(1),
		mu:    &sync.RWMutex{},
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Position() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) CastShadow() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.castShadow
}

func (g *gameObject) ReceiveShadow() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.receiveShadow
}

func (g *gameObject) ModelMatrix() [16]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var m [16]float32
	common.BuildModelMatrix(m[:], g.position, g.rotation, g.scale)
	return m
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{sx, sy, sz}
}

func (g *gameObject) SetShadows(cast, receive bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.castShadow = cast
	g.receiveShadow = receive
}
