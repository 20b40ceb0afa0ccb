package material

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
)

// Tiling is the uv transform applied to the diffuse map: uv * Repeat + Offset.
type Tiling struct {
	Repeat [2]float32
	Offset [2]float32
}

// DefaultTiling samples the map once with no offset.
var DefaultTiling = Tiling{Repeat: [2]float32{1, 1}}

// material is the implementation of the Material interface.
type material struct {
	name        string
	color       common.Color
	specular    common.Color
	emissive    common.Color
	shininess   float32
	opacity     float32
	texture     *common.TextureStagingData
	tiling      Tiling
	doubleSided bool
}

// Material defines the surface description of a mesh: Blinn-Phong colors, an optional diffuse map and
// its uv tiling.
//
// Colors and the diffuse map are mutable so a loader can override them after parsing, which is how
// texture-only assets receive their tint and map. A material must not be mutated once the object owning
// it has been appended to a scene group.
type Material interface {
	// Name retrieves the material identifier, the MTL newmtl name for parsed materials.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the diffuse color. It multiplies the diffuse map when one is set.
	//
	// Returns:
	//   - common.Color: the diffuse color
	Color() common.Color

	// Specular retrieves the specular color.
	//
	// Returns:
	//   - common.Color: the specular color
	Specular() common.Color

	// Emissive retrieves the emissive color.
	//
	// Returns:
	//   - common.Color: the emissive color
	Emissive() common.Color

	// Shininess retrieves the Blinn-Phong exponent.
	//
	// Returns:
	//   - float32: the specular exponent
	Shininess() float32

	// Opacity retrieves the dissolve factor, 1 for fully opaque.
	//
	// Returns:
	//   - float32: the opacity
	Opacity() float32

	// Texture retrieves the diffuse map, or nil if none is set.
	//
	// Returns:
	//   - *common.TextureStagingData: the decoded diffuse map, or nil
	Texture() *common.TextureStagingData

	// Tiling retrieves the uv transform applied to the diffuse map.
	//
	// Returns:
	//   - Tiling: the repeat and offset
	Tiling() Tiling

	// DoubleSided reports whether back faces are lit as front faces.
	//
	// Returns:
	//   - bool: true if the material is double sided
	DoubleSided() bool

	// SetColor overrides the diffuse color.
	//
	// Parameters:
	//   - c: the new diffuse color
	SetColor(c common.Color)

	// SetTexture overrides the diffuse map.
	//
	// Parameters:
	//   - tex: the decoded map, or nil to remove it
	SetTexture(tex *common.TextureStagingData)

	// Clone returns an independent copy. The diffuse map pixels are shared.
	//
	// Returns:
	//   - Material: the copy
	Clone() Material

	// Uniform builds the GPU representation of the material.
	//
	// Returns:
	//   - GPUMaterialUniform: the packed uniform
	Uniform() GPUMaterialUniform
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Without options the material is opaque white with a faint specular highlight.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		color:     common.Color{1, 1, 1},
		specular:  common.Color{0.07, 0.07, 0.07},
		shininess: 30,
		opacity:   1,
		tiling:    DefaultTiling,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() common.Color {
	return m.color
}

func (m *material) Specular() common.Color {
	return m.specular
}

func (m *material) Emissive() common.Color {
	return m.emissive
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) Tiling() Tiling {
	return m.tiling
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) SetColor(c common.Color) {
	m.color = c
}

func (m *material) SetTexture(tex *common.TextureStagingData) {
	m.texture = tex
}

func (m *material) Clone() Material {
	c := *m
	return &c
}

func (m *material) Uniform() GPUMaterialUniform {
	var u GPUMaterialUniform
	u.Color = [4]float32{m.color[0], m.color[1], m.color[2], m.opacity}
	u.Specular = [4]float32{m.specular[0], m.specular[1], m.specular[2], m.shininess}
	u.Emissive = [4]float32{m.emissive[0], m.emissive[1], m.emissive[2], 0}
	if m.texture != nil {
		u.Emissive[3] = 1
	}
	u.Tiling = [4]float32{m.tiling.Repeat[0], m.tiling.Repeat[1], m.tiling.Offset[0], m.tiling.Offset[1]}
	return u
}
