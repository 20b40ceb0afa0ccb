package model

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
)

// Mesh is one drawable run of triangles sharing a single material.
// Geometry is immutable after construction; the renderer uploads it lazily and keys the GPU buffers by the
// mesh pointer.
type Mesh struct {
	Name     string
	Vertices []GPUVertex
	Indices  []uint32
	Material material.Material
	Bounds   common.AABB
}

// NewMesh creates a Mesh and computes its bounds.
//
// Parameters:
//   - name: the mesh identifier, usually "<object>/<material>"
//   - vertices: the vertex data
//   - indices: triangle list indices into vertices
//   - mat: the material, nil for a default material
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(name string, vertices []GPUVertex, indices []uint32, mat material.Material) *Mesh {
	if mat == nil {
		mat = material.NewMaterial(material.WithName("default"))
	}
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Material: mat,
		Bounds:   common.NewAABB(),
	}
	for _, v := range vertices {
		m.Bounds.Extend(v.Position)
	}
	return m
}

// VertexData serializes every vertex for GPU upload.
//
// Returns:
//   - []byte: the packed vertex buffer
func (m *Mesh) VertexData() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	stride := m.Vertices[0].Size()
	buf := make([]byte, 0, stride*len(m.Vertices))
	for i := range m.Vertices {
		buf = append(buf, m.Vertices[i].Marshal()...)
	}
	return buf
}

// IndexData returns the index buffer as bytes.
//
// Returns:
//   - []byte: the packed uint32 indices
func (m *Mesh) IndexData() []byte {
	return common.SliceToBytes(m.Indices)
}

// model is the implementation of the Model interface.
type model struct {
	name   string
	meshes []*Mesh
	bounds common.AABB
}

// Model defines the interface for a loaded 3D model: the meshes parsed from one OBJ file, one per
// object and material run.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the meshes of the model in file order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Bounds retrieves the model-space bounding box of every mesh.
	//
	// Returns:
	//   - common.AABB: the bounds, empty when the model has no vertices
	Bounds() common.AABB
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{bounds: common.NewAABB()}
	for _, opt := range options {
		opt(m)
	}
	for _, mesh := range m.meshes {
		m.bounds.Union(mesh.Bounds)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) Bounds() common.AABB {
	return m.bounds
}
