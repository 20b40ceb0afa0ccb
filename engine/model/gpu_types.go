package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes, no padding.
type GPUVertex struct {
	Position [3]float32 // offset  0: model-space position (12 bytes)
	Normal   [3]float32 // offset 12: unit normal (12 bytes)
	TexCoord [2]float32 // offset 24: uv, v pointing up as in OBJ files (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:24], g.Normal[:])
	putFloats(buf[24:32], g.TexCoord[:])
	return buf
}

// VertexLayout describes GPUVertex to the pipeline: position at location 0, normal at 1, uv at 2.
//
// Returns:
//   - wgpu.VertexBufferLayout: the vertex buffer layout
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// GPUModelUniformSource is the canonical WGSL definition of the ModelUniform struct.
// Matches GPUModelUniform layout exactly (144 bytes).
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUModelUniform is the per-draw object uniform.
// Matches the WGSL ModelUniform struct layout exactly (see GPUModelUniformSource).
// Size: 144 bytes (two mat4x4<f32> + one vec4<f32>).
type GPUModelUniform struct {
	Model  [16]float32 // offset   0: world matrix (64 bytes)
	Normal [16]float32 // offset  64: inverse-transpose of the world matrix (64 bytes)
	Flags  [4]float32  // offset 128: x = receives shadows, y = casts shadows, zw unused (16 bytes)
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload.
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, 144)
	putFloats(buf[0:64], g.Model[:])
	putFloats(buf[64:128], g.Normal[:])
	putFloats(buf[128:144], g.Flags[:])
	return buf
}

func putFloats(dst []byte, src []float32) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(f))
	}
}
