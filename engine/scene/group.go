package scene

import (
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
)

type group struct {
	name     string
	mu       *sync.RWMutex
	position [3]float32
	rotation [3]float32
	scale    [3]float32
	children []game_object.GameObject
}

// Group is a named, append-only container of loaded objects. Its transform is applied on top of every
// child's own transform. Children are appended from loader goroutines while the render goroutine reads them.
type Group interface {
	// Name returns the group name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Position returns the group translation.
	//
	// Returns:
	//   - [3]float32: x, y, z
	Position() [3]float32

	// Rotation returns the group XYZ Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rx, ry, rz
	Rotation() [3]float32

	// Scale returns the group scale.
	//
	// Returns:
	//   - [3]float32: sx, sy, sz
	Scale() [3]float32

	// Matrix returns the group transform as a column-major matrix.
	//
	// Returns:
	//   - [16]float32: the group matrix
	Matrix() [16]float32

	// Append adds an object to the group. There is no removal.
	//
	// Parameters:
	//   - obj: the object to add, ignored when nil
	Append(obj game_object.GameObject)

	// Children returns a copy of the group's objects in append order.
	//
	// Returns:
	//   - []game_object.GameObject: the children
	Children() []game_object.GameObject

	// Len returns the number of children.
	//
	// Returns:
	//   - int: the child count
	Len() int
}

var _ Group = &group{}

// NewGroup creates an empty group at the origin with unit scale.
//
// Parameters:
//   - name: the group name
//   - options: functional options to configure the group
//
// Returns:
//   - Group: the new group
func NewGroup(name string, options ...GroupBuilderOption) Group {
	g := &group{
		name:  name,
		mu:    &sync.RWMutex{},
		scale: [3]float32{1, 1, 1},
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *group) Name() string {
	return g.name
}

func (g *group) Position() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *group) Rotation() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *group) Scale() [3]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *group) Matrix() [16]float32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var m [16]float32
	common.BuildModelMatrix(m[:], g.position, g.rotation, g.scale)
	return m
}

func (g *group) Append(obj game_object.GameObject) {
	if obj == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children = append(g.children, obj)
}

func (g *group) Children() []game_object.GameObject {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]game_object.GameObject, len(g.children))
	copy(out, g.children)
	return out
}

func (g *group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.children)
}
