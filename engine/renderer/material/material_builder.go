package material

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the diffuse color (MTL Kd).
//
// Parameters:
//   - c: the diffuse color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}

// WithSpecular is an option builder that sets the specular color (MTL Ks).
//
// Parameters:
//   - c: the specular color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option to a material
func WithSpecular(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.specular = c
	}
}

// WithEmissive is an option builder that sets the emissive color (MTL Ke).
//
// Parameters:
//   - c: the emissive color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive option to a material
func WithEmissive(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = c
	}
}

// WithShininess is an option builder that sets the specular exponent (MTL Ns).
//
// Parameters:
//   - s: the exponent, clamped to at least 1
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shininess option to a material
func WithShininess(s float32) MaterialBuilderOption {
	return func(m *material) {
		m.shininess = max(s, 1)
	}
}

// WithOpacity is an option builder that sets the dissolve factor (MTL d).
//
// Parameters:
//   - o: the opacity in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(o float32) MaterialBuilderOption {
	return func(m *material) {
		m.opacity = min(max(o, 0), 1)
	}
}

// WithTexture is an option builder that sets the diffuse map (MTL map_Kd).
//
// Parameters:
//   - tex: the decoded map
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = tex
	}
}

// WithTiling is an option builder that sets the uv repeat and offset of the diffuse map.
//
// Parameters:
//   - t: the tiling
//
// Returns:
//   - MaterialBuilderOption: a function that applies the tiling option to a material
func WithTiling(t Tiling) MaterialBuilderOption {
	return func(m *material) {
		m.tiling = t
	}
}

// WithDoubleSided is an option builder that marks the material as double sided.
//
// Parameters:
//   - doubleSided: whether back faces are shaded
//
// Returns:
//   - MaterialBuilderOption: a function that applies the double sided option to a material
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}
