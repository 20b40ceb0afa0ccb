package light

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/chewxy/math32"
)

// ShadowFaceCount is the number of cube faces rendered for a point light shadow.
const ShadowFaceCount = 6

// DefaultShadowMapSize is the width and height in texels of each shadow cube face.
const DefaultShadowMapSize uint32 = 1024

// DefaultShadowNear is the near plane of the shadow cameras.
const DefaultShadowNear float32 = 0.5

// DefaultShadowFar is the far plane of the shadow cameras.
const DefaultShadowFar float32 = 500

// DefaultShadowBias is subtracted from the fragment depth before the shadow comparison to reduce acne.
const DefaultShadowBias float32 = 0.005

// ShadowConfig holds the shadow map resolution and the projection of the shadow cameras.
type ShadowConfig struct {
	MapSize uint32
	Near    float32
	Far     float32
	Bias    float32
}

// DefaultShadowConfig returns the shadow settings used when none are configured.
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		MapSize: DefaultShadowMapSize,
		Near:    DefaultShadowNear,
		Far:     DefaultShadowFar,
		Bias:    DefaultShadowBias,
	}
}

// cubeFaces lists the look direction and up vector of each face in +X, -X, +Y, -Y, +Z, -Z order.
// The fragment shader selects a face by the major axis of the light-to-fragment vector in the same order.
var cubeFaces = [ShadowFaceCount]struct{ dir, up [3]float32 }{
	{[3]float32{1, 0, 0}, [3]float32{0, -1, 0}},
	{[3]float32{-1, 0, 0}, [3]float32{0, -1, 0}},
	{[3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
	{[3]float32{0, -1, 0}, [3]float32{0, 0, -1}},
	{[3]float32{0, 0, 1}, [3]float32{0, -1, 0}},
	{[3]float32{0, 0, -1}, [3]float32{0, -1, 0}},
}

// FaceDirection returns the look direction of a shadow cube face.
//
// Parameters:
//   - face: the face index in [0, ShadowFaceCount)
//
// Returns:
//   - [3]float32: the unit direction
func FaceDirection(face int) [3]float32 {
	return cubeFaces[face].dir
}

// PointShadowMatrices builds the view-projection matrix of each shadow cube face: a 90 degree square
// perspective placed at the light position.
//
// Parameters:
//   - l: the point light
//
// Returns:
//   - [6][16]float32: one column-major matrix per face
func PointShadowMatrices(l Light) [ShadowFaceCount][16]float32 {
	cfg := l.Shadow()
	pos := l.Position()

	var proj [16]float32
	common.Perspective(proj[:], math32.Pi/2, 1, cfg.Near, cfg.Far)

	var out [ShadowFaceCount][16]float32
	for i, f := range cubeFaces {
		var view [16]float32
		common.LookAt(view[:], pos, common.Add3(pos, f.dir), f.up)
		common.Mul4(out[i][:], proj[:], view[:])
	}
	return out
}
