package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUVertexLayout(t *testing.T) {
	var v GPUVertex
	assert.Equal(t, 32, v.Size())

	layout := VertexLayout()
	assert.Equal(t, uint64(v.Size()), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
}

func TestGPUVertexMarshal(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.25, 0.75}}
	buf := v.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])))
}

func TestMeshBoundsAndBuffers(t *testing.T) {
	mesh := NewMesh("tri", []GPUVertex{
		{Position: [3]float32{-1, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 2, -3}},
	}, []uint32{0, 1, 2}, nil)

	require.NotNil(t, mesh.Material)
	assert.Equal(t, [3]float32{-1, 0, -3}, mesh.Bounds.Min)
	assert.Equal(t, [3]float32{1, 2, 0}, mesh.Bounds.Max)
	assert.Len(t, mesh.VertexData(), 96)
	assert.Len(t, mesh.IndexData(), 12)

	m := NewModel(WithName("tri"), WithMeshes(mesh, nil))
	assert.Len(t, m.Meshes(), 1)
	assert.Equal(t, mesh.Bounds, m.Bounds())
}

func TestEmptyModelBounds(t *testing.T) {
	assert.True(t, NewModel().Bounds().Empty())
}

func TestGPUModelUniformSize(t *testing.T) {
	var u GPUModelUniform
	assert.Equal(t, 144, u.Size())
	assert.Len(t, u.Marshal(), 144)
}
