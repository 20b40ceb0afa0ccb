package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/tank-diorama/common"
)

// GPULightsUniformSource is the canonical WGSL definition of the LightsUniform struct.
// Matches GPULightsUniform layout exactly (448 bytes).
//
//go:embed assets/lights_uniform.wgsl
var GPULightsUniformSource string

// GPULightsUniform is the per-frame lighting uniform of the mesh shader: one ambient term, one point light,
// its shadow parameters and the view-projection of every shadow cube face.
// Matches the WGSL LightsUniform struct layout exactly (see GPULightsUniformSource).
// Size: 448 bytes (4 vec4<f32> + 6 mat4x4<f32>).
type GPULightsUniform struct {
	Ambient       [4]float32                   // offset   0: rgb * intensity, w unused
	PointPosition [4]float32                   // offset  16: xyz position, w = distance (0 = no falloff)
	PointColor    [4]float32                   // offset  32: rgb * intensity, w = decay
	Shadow        [4]float32                   // offset  48: x = bias, y = enabled (0 or 1), z = near, w = far
	Faces         [ShadowFaceCount][16]float32 // offset  64: cube face view-projections in +X, -X, +Y, -Y, +Z, -Z order
}

// NewGPULightsUniform packs the ambient and point lights for upload.
// A nil light contributes nothing.
//
// Parameters:
//   - ambient: the ambient light, or nil
//   - point: the point light, or nil
//   - shadowsEnabled: whether the renderer draws the shadow map this frame
//
// Returns:
//   - GPULightsUniform: the packed uniform
func NewGPULightsUniform(ambient, point Light, shadowsEnabled bool) GPULightsUniform {
	var u GPULightsUniform
	if ambient != nil {
		c := ambient.Color().Scale(ambient.Intensity())
		u.Ambient = [4]float32{c[0], c[1], c[2], 0}
	}
	if point != nil {
		pos := point.Position()
		c := point.Color().Scale(point.Intensity())
		u.PointPosition = [4]float32{pos[0], pos[1], pos[2], point.Distance()}
		u.PointColor = [4]float32{c[0], c[1], c[2], point.Decay()}

		cfg := point.Shadow()
		u.Shadow = [4]float32{cfg.Bias, 0, cfg.Near, cfg.Far}
		if shadowsEnabled && point.CastsShadows() {
			u.Shadow[1] = 1
		}
		u.Faces = PointShadowMatrices(point)
	}
	return u
}

// Size returns the size of the GPULightsUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (448)
func (g *GPULightsUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightsUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 448-byte buffer ready for GPU upload
func (g *GPULightsUniform) Marshal() []byte {
	buf := make([]byte, 0, 448)
	for _, v := range [][4]float32{g.Ambient, g.PointPosition, g.PointColor, g.Shadow} {
		buf = common.AppendFloat32s(buf, v[:]...)
	}
	for i := range g.Faces {
		buf = common.AppendFloat32s(buf, g.Faces[i][:]...)
	}
	return buf
}

// GPUShadowFaceUniformSource is the canonical WGSL definition of the ShadowFaceUniform struct.
// Matches GPUShadowFaceUniform layout exactly (96 bytes).
//
//go:embed assets/shadow_face_uniform.wgsl
var GPUShadowFaceUniformSource string

// GPUShadowFaceUniform is the uniform of one shadow pass: the face camera and the light it belongs to.
// The shadow fragment stage writes the light distance remapped from [near, far] to [0, 1] as depth.
// Size: 96 bytes (mat4x4<f32> + 2 vec4<f32>).
type GPUShadowFaceUniform struct {
	ViewProj      [16]float32 // offset  0: face view-projection (64 bytes)
	LightPosition [4]float32  // offset 64: xyz light position, w = face index (16 bytes)
	Range         [4]float32  // offset 80: x = near, y = far, zw unused (16 bytes)
}

// NewGPUShadowFaceUniforms packs one uniform per cube face of a point light.
//
// Parameters:
//   - l: the point light
//
// Returns:
//   - [6]GPUShadowFaceUniform: the face uniforms in +X, -X, +Y, -Y, +Z, -Z order
func NewGPUShadowFaceUniforms(l Light) [ShadowFaceCount]GPUShadowFaceUniform {
	var out [ShadowFaceCount]GPUShadowFaceUniform
	pos := l.Position()
	cfg := l.Shadow()
	faces := PointShadowMatrices(l)
	for i := range out {
		out[i] = GPUShadowFaceUniform{
			ViewProj:      faces[i],
			LightPosition: [4]float32{pos[0], pos[1], pos[2], float32(i)},
			Range:         [4]float32{cfg.Near, cfg.Far, 0, 0},
		}
	}
	return out
}

// Size returns the size of the GPUShadowFaceUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUShadowFaceUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUShadowFaceUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUShadowFaceUniform) Marshal() []byte {
	buf := make([]byte, 0, 96)
	buf = common.AppendFloat32s(buf, g.ViewProj[:]...)
	buf = common.AppendFloat32s(buf, g.LightPosition[:]...)
	return common.AppendFloat32s(buf, g.Range[:]...)
}
