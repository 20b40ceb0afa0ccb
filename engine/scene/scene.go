package scene

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
)

// Drawable is one mesh placed in world space, captured by Drawables for a single frame.
type Drawable struct {
	Object        game_object.GameObject
	Mesh          *model.Mesh
	World         [16]float32
	Normal        [16]float32
	Bounds        common.AABB
	CastShadow    bool
	ReceiveShadow bool
}

type scene struct {
	name string
	mu   *sync.RWMutex

	groups   map[string]Group
	attached map[string]bool

	ambient light.Light
	point   light.Light
	ground  game_object.GameObject
}

// Scene owns the groups, lights and ground of the diorama for the lifetime of the process.
// Groups are created up front and attached when their first object arrives; nothing is ever removed.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// AddGroup creates a detached group, or returns the existing group of that name unchanged.
	//
	// Parameters:
	//   - name: the group name
	//   - options: functional options applied only when the group is new
	//
	// Returns:
	//   - Group: the group registered under name
	AddGroup(name string, options ...GroupBuilderOption) Group

	// Group looks up a group by name.
	//
	// Parameters:
	//   - name: the group name
	//
	// Returns:
	//   - Group: the group, or nil
	//   - bool: whether the group exists
	Group(name string) (Group, bool)

	// Groups returns every registered group sorted by name.
	//
	// Returns:
	//   - []Group: the groups
	Groups() []Group

	// Attach makes a group part of the rendered scene. Attaching twice is a no-op. A group that was not
	// created through AddGroup is registered first.
	//
	// Parameters:
	//   - g: the group to attach
	//
	// Returns:
	//   - bool: true if the group was newly attached
	Attach(g Group) bool

	// Attached returns the attached groups sorted by name.
	//
	// Returns:
	//   - []Group: the attached groups
	Attached() []Group

	// Ambient returns the ambient light.
	//
	// Returns:
	//   - light.Light: the ambient light
	Ambient() light.Light

	// Light returns the point light.
	//
	// Returns:
	//   - light.Light: the point light
	Light() light.Light

	// Ground returns the ground plane object.
	//
	// Returns:
	//   - game_object.GameObject: the ground
	Ground() game_object.GameObject

	// SetGroundTexture replaces the ground plane's diffuse map. The ground is rebuilt with a cloned
	// material so frames already holding the old drawable are unaffected.
	//
	// Parameters:
	//   - tex: the decoded texture
	SetGroundTexture(tex *common.TextureStagingData)

	// Drawables snapshots every enabled mesh of the ground and the attached groups with its world matrix.
	//
	// Returns:
	//   - []Drawable: the ground first, then attached groups in name order
	Drawables() []Drawable
}

var _ Scene = &scene{}

// NewScene creates a scene with default lights and ground and no groups.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		name:     "scene",
		mu:       &sync.RWMutex{},
		groups:   make(map[string]Group),
		attached: make(map[string]bool),
	}
	for _, option := range options {
		option(s)
	}
	if s.ambient == nil {
		s.ambient = light.NewLight(light.LightTypeAmbient)
	}
	if s.point == nil {
		s.point = light.NewLight(light.LightTypePoint)
	}
	if s.ground == nil {
		s.ground = NewGround()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) AddGroup(name string, options ...GroupBuilderOption) Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[name]; ok {
		return g
	}
	g := NewGroup(name, options...)
	s.groups[name] = g
	return g
}

func (s *scene) Group(name string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	return g, ok
}

func (s *scene) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedGroups(func(string) bool { return true })
}

func (s *scene) Attach(g Group) bool {
	if g == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.Name()]; !ok {
		s.groups[g.Name()] = g
	}
	if s.attached[g.Name()] {
		return false
	}
	s.attached[g.Name()] = true
	return true
}

func (s *scene) Attached() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedGroups(func(name string) bool { return s.attached[name] })
}

func (s *scene) Ambient() light.Light {
	return s.ambient
}

func (s *scene) Light() light.Light {
	return s.point
}

func (s *scene) Ground() game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ground
}

func (s *scene) SetGroundTexture(tex *common.TextureStagingData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.ground
	var meshes []*model.Mesh
	for _, m := range old.Model().Meshes() {
		mat := m.Material.Clone()
		mat.SetTexture(tex)
		meshes = append(meshes, &model.Mesh{
			Name:     m.Name,
			Vertices: m.Vertices,
			Indices:  m.Indices,
			Material: mat,
			Bounds:   m.Bounds,
		})
	}
	s.ground = game_object.NewGameObject(
		game_object.WithName(old.Name()),
		game_object.WithEnabled(old.Enabled()),
		game_object.WithModel(model.NewModel(model.WithName(old.Model().Name()), model.WithMeshes(meshes...))),
		game_object.WithPosition(old.Position()),
		game_object.WithRotation(old.Rotation()),
		game_object.WithScale(old.Scale()),
		game_object.WithShadows(old.CastShadow(), old.ReceiveShadow()),
	)
}

func (s *scene) Drawables() []Drawable {
	s.mu.RLock()
	ground := s.ground
	attached := s.sortedGroups(func(name string) bool { return s.attached[name] })
	s.mu.RUnlock()

	out := appendObject(nil, common.IdentityMatrix(), ground)
	for _, g := range attached {
		parent := g.Matrix()
		for _, obj := range g.Children() {
			out = appendObject(out, parent, obj)
		}
	}
	return out
}

// sortedGroups returns the groups accepted by keep in name order. Caller must hold the mutex.
func (s *scene) sortedGroups(keep func(name string) bool) []Group {
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		if keep(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]Group, 0, len(names))
	for _, name := range names {
		out = append(out, s.groups[name])
	}
	return out
}

// appendObject appends one drawable per mesh of obj, placed under the parent transform.
func appendObject(out []Drawable, parent [16]float32, obj game_object.GameObject) []Drawable {
	if obj == nil || !obj.Enabled() || obj.Model() == nil {
		return out
	}
	local := obj.ModelMatrix()
	var world [16]float32
	common.Mul4(world[:], parent[:], local[:])
	normal := common.NormalMatrix(world)
	for _, mesh := range obj.Model().Meshes() {
		out = append(out, Drawable{
			Object:        obj,
			Mesh:          mesh,
			World:         world,
			Normal:        normal,
			Bounds:        mesh.Bounds.Transform(world),
			CastShadow:    obj.CastShadow(),
			ReceiveShadow: obj.ReceiveShadow(),
		})
	}
	return out
}

// GroundMaterial builds the ground material from a colour, a tiling and the double-sided flag.
//
// Parameters:
//   - color: base colour multiplied with the texture
//   - tiling: uv repeat and offset
//   - doubleSided: whether back faces are lit
//
// Returns:
//   - material.Material: the material
func GroundMaterial(color common.Color, tiling material.Tiling, doubleSided bool) material.Material {
	return material.NewMaterial(
		material.WithName(GroundName),
		material.WithColor(color),
		material.WithTiling(tiling),
		material.WithDoubleSided(doubleSided),
	)
}
