package scene

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeObject(name string, pos [3]float32) game_object.GameObject {
	verts := []model.GPUVertex{
		{Position: [3]float32{-1, -1, -1}},
		{Position: [3]float32{1, 1, 1}},
		{Position: [3]float32{1, -1, 1}},
	}
	mesh := model.NewMesh(name, verts, []uint32{0, 1, 2}, nil)
	return game_object.NewGameObject(
		game_object.WithName(name),
		game_object.WithModel(model.NewModel(model.WithName(name), model.WithMeshes(mesh))),
		game_object.WithPosition(pos),
		game_object.WithShadows(true, false),
	)
}

func TestEmptySceneDrawsOnlyGround(t *testing.T) {
	s := NewScene()
	s.AddGroup("tank")
	s.AddGroup("tree")

	drawables := s.Drawables()
	require.Len(t, drawables, 1)
	assert.Equal(t, GroundName, drawables[0].Mesh.Name)
	assert.False(t, drawables[0].CastShadow)
	assert.True(t, drawables[0].ReceiveShadow)
}

func TestUnattachedGroupIsNotDrawn(t *testing.T) {
	s := NewScene()
	g := s.AddGroup("tank")
	g.Append(cubeObject("tank", [3]float32{}))

	assert.Len(t, s.Drawables(), 1)
	assert.True(t, s.Attach(g))
	assert.False(t, s.Attach(g))
	assert.Len(t, s.Drawables(), 2)
	assert.Len(t, s.Attached(), 1)
}

func TestAddGroupReturnsExisting(t *testing.T) {
	s := NewScene()
	first := s.AddGroup("tank", WithGroupPosition([3]float32{1, 0, 1}))
	second := s.AddGroup("tank", WithGroupPosition([3]float32{9, 9, 9}))

	assert.Same(t, first, second)
	assert.Equal(t, [3]float32{1, 0, 1}, second.Position())
}

func TestGroupsSortedByName(t *testing.T) {
	s := NewScene()
	for _, name := range []string{"turret", "grass", "tank", "rocks"} {
		s.AddGroup(name)
	}
	var names []string
	for _, g := range s.Groups() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"grass", "rocks", "tank", "turret"}, names)
}

func TestDrawableWorldMatrixCombinesGroupAndObject(t *testing.T) {
	s := NewScene()
	g := s.AddGroup("tank", WithGroupPosition([3]float32{1, 0, 1}))
	g.Append(cubeObject("tank", [3]float32{1, 1, 1}))
	s.Attach(g)

	drawables := s.Drawables()
	require.Len(t, drawables, 2)
	d := drawables[1]
	origin := common.TransformPoint(d.World, [3]float32{})
	assert.InDeltaSlice(t, []float32{2, 1, 2}, origin[:], 1e-5)
	assert.True(t, d.CastShadow)
	assert.False(t, d.ReceiveShadow)
	assert.InDeltaSlice(t, []float32{1, 0, 1}, d.Bounds.Min[:], 1e-5)
	assert.InDeltaSlice(t, []float32{3, 2, 3}, d.Bounds.Max[:], 1e-5)
}

func TestDisabledObjectsAreSkipped(t *testing.T) {
	s := NewScene()
	g := s.AddGroup("rocks")
	obj := cubeObject("rock", [3]float32{})
	obj.SetEnabled(false)
	g.Append(obj)
	s.Attach(g)

	assert.Len(t, s.Drawables(), 1)
}

func TestConcurrentAppendIsOrderIndependent(t *testing.T) {
	s := NewScene()
	g := s.AddGroup("grass")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.Append(cubeObject(fmt.Sprintf("blade-%02d", i), [3]float32{}))
			s.Attach(g)
			_ = s.Drawables()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, g.Len())
	assert.Len(t, s.Drawables(), 33)
	assert.Len(t, s.Attached(), 1)
}

func TestGroundGeometry(t *testing.T) {
	ground := NewGround(WithGroundSize(200, 200), WithGroundSegments(50, 50))
	meshes := ground.Model().Meshes()
	require.Len(t, meshes, 1)
	mesh := meshes[0]

	assert.Len(t, mesh.Vertices, 51*51)
	assert.Len(t, mesh.Indices, 50*50*6)
	assert.Equal(t, [2]float32{0, 1}, mesh.Vertices[0].TexCoord)
	assert.Equal(t, [2]float32{1, 0}, mesh.Vertices[len(mesh.Vertices)-1].TexCoord)

	normal := common.NormalMatrix(ground.ModelMatrix())
	up := common.Normalize3(common.TransformPoint(normal, mesh.Vertices[0].Normal))
	assert.InDeltaSlice(t, []float32{0, 1, 0}, up[:], 1e-5)
	assert.False(t, ground.CastShadow())
	assert.True(t, ground.ReceiveShadow())
}

func TestSetGroundTextureKeepsOldDrawable(t *testing.T) {
	mat := GroundMaterial(common.ColorFromHex(0xffffff), material.Tiling{Repeat: [2]float32{8, 8}}, true)
	s := NewScene(WithGround(NewGround(WithGroundMaterial(mat), WithGroundPosition([3]float32{0, -4.02, 0}))))
	before := s.Drawables()[0]

	tex := &common.TextureStagingData{Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}}
	s.SetGroundTexture(tex)
	after := s.Drawables()[0]

	assert.Nil(t, before.Mesh.Material.Texture())
	assert.Same(t, tex, after.Mesh.Material.Texture())
	assert.Equal(t, [2]float32{8, 8}, after.Mesh.Material.Tiling().Repeat)
	assert.Equal(t, before.World, after.World)
	assert.True(t, after.ReceiveShadow)
}
