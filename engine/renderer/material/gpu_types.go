package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialUniformSource is the canonical WGSL definition of the MaterialUniform struct.
// Matches GPUMaterialUniform layout exactly (64 bytes, std140 aligned).
//
//go:embed assets/material_uniform.wgsl
var GPUMaterialUniformSource string

// GPUMaterialUniform is the per-material uniform of the mesh fragment shader.
// Matches the WGSL MaterialUniform struct layout exactly (see GPUMaterialUniformSource).
// Size: 64 bytes (four vec4<f32>).
type GPUMaterialUniform struct {
	Color    [4]float32 // offset 0: diffuse RGB + opacity
	Specular [4]float32 // offset 16: specular RGB + shininess
	Emissive [4]float32 // offset 32: emissive RGB + has-texture flag (0 or 1)
	Tiling   [4]float32 // offset 48: uv repeat xy + uv offset xy
}

// Size returns the size of the GPUMaterialUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, 64)
	fields := [4][4]float32{g.Color, g.Specular, g.Emissive, g.Tiling}
	for i, v := range fields {
		for j, f := range v {
			off := i*16 + j*4
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		}
	}
	return buf
}
