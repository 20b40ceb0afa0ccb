package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/tank-diorama/common"
)

// GPUCameraUniformSource is the WGSL CameraUniform struct, included by the mesh shader.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the camera as the mesh shader sees it: the view-projection for vertex placement and
// the eye position for the specular half vector. 80 bytes.
type GPUCameraUniform struct {
	ViewProj [16]float32 // mat4x4<f32> at offset 0
	Eye      [3]float32  // vec3<f32> at offset 64
	_        float32
}

// Size returns the uniform size in bytes.
//
// Returns:
//   - int: 80
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal packs the uniform for a queue write.
//
// Returns:
//   - []byte: the 80-byte payload
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, 0, g.Size())
	buf = common.AppendFloat32s(buf, g.ViewProj[:]...)
	buf = common.AppendFloat32s(buf, g.Eye[:]...)
	return common.AppendFloat32s(buf, 0)
}
