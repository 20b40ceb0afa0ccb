package scene

import (
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
	"github.com/chewxy/math32"
)

// GroundName is the name of the ground object and its mesh.
const GroundName = "ground"

type groundParams struct {
	width    float32
	height   float32
	segX     int
	segY     int
	position [3]float32
	rotation [3]float32
	mat      material.Material
	receive  bool
}

// NewGround builds the ground plane: a width x height plane subdivided into segX x segY quads, authored in
// the XY plane facing +Z and laid flat by the rotation (by default -π/2 about X so the normal points +Y).
// UVs span 0..1 across the plane; tiling comes from the material. The ground never casts shadows.
//
// Parameters:
//   - options: functional options to configure the ground
//
// Returns:
//   - game_object.GameObject: the ground object
func NewGround(options ...GroundBuilderOption) game_object.GameObject {
	g := &groundParams{
		width:    200,
		height:   200,
		segX:     50,
		segY:     50,
		rotation: [3]float32{-math32.Pi / 2, 0, 0},
		receive:  true,
	}
	for _, option := range options {
		option(g)
	}
	if g.mat == nil {
		g.mat = material.NewMaterial(material.WithName(GroundName), material.WithDoubleSided(true))
	}

	vertices, indices := planeGeometry(g.width, g.height, max(g.segX, 1), max(g.segY, 1))
	mesh := model.NewMesh(GroundName, vertices, indices, g.mat)
	return game_object.NewGameObject(
		game_object.WithName(GroundName),
		game_object.WithModel(model.NewModel(model.WithName(GroundName), model.WithMeshes(mesh))),
		game_object.WithPosition(g.position),
		game_object.WithRotation(g.rotation),
		game_object.WithShadows(false, g.receive),
	)
}

// planeGeometry returns a +Z facing plane centred on the origin. Row 0 is the top edge (v = 1).
func planeGeometry(width, height float32, segX, segY int) ([]model.GPUVertex, []uint32) {
	stepX := width / float32(segX)
	stepY := height / float32(segY)
	cols := segX + 1

	vertices := make([]model.GPUVertex, 0, cols*(segY+1))
	for iy := 0; iy <= segY; iy++ {
		y := float32(iy)*stepY - height/2
		for ix := 0; ix <= segX; ix++ {
			x := float32(ix)*stepX - width/2
			vertices = append(vertices, model.GPUVertex{
				Position: [3]float32{x, -y, 0},
				Normal:   [3]float32{0, 0, 1},
				TexCoord: [2]float32{float32(ix) / float32(segX), 1 - float32(iy)/float32(segY)},
			})
		}
	}

	indices := make([]uint32, 0, segX*segY*6)
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := uint32(ix + cols*iy)
			b := uint32(ix + cols*(iy+1))
			c := uint32(ix + 1 + cols*(iy+1))
			d := uint32(ix + 1 + cols*iy)
			indices = append(indices, a, b, d, b, c, d)
		}
	}
	return vertices, indices
}
