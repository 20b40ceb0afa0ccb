package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	bindGroup *wgpu.BindGroup
	buffers   map[int]*wgpu.Buffer

	// views and samplers are borrowed from the renderer caches and never released here
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider holds the GPU resources of one drawable part: a mesh's vertex and index buffers, a
// material's uniform and texture bindings, an object's uniform, or the per-frame bindings.
//
// Usage pattern:
//  1. The renderer creates a provider the first time it sees the mesh, material or object.
//  2. Buffers, borrowed texture views and samplers are attached by binding index.
//  3. The bind group is created from a layout and the attached resources.
//  4. Draw calls read BindGroup, VertexBuffer and IndexBuffer.
type BindGroupProvider interface {
	// Release releases the bind group and every buffer owned by this provider.
	// Texture views and samplers are borrowed and left alone.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil before creation.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the vertex buffer, or nil for providers that are not meshes.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the index buffer, or nil for providers that are not meshes.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn from IndexBuffer.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Entries builds the bind group entries from the attached resources in binding order.
	// Bindings are taken from the layout entries so every declared binding appears exactly once.
	//
	// Parameters:
	//   - layout: the layout entries the bind group is created against
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: the entries
	//   - []int: the bindings declared by layout with no attached resource
	Entries(layout []wgpu.BindGroupLayoutEntry) ([]wgpu.BindGroupEntry, []int)

	// SetBindGroup stores the created bind group, releasing a previous one.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer attaches an owned buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView attaches a borrowed texture view at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the view
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler attaches a borrowed sampler at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// SetMesh attaches owned vertex and index buffers.
	//
	// Parameters:
	//   - vertices: the vertex buffer
	//   - indices: the index buffer
	//   - indexCount: the number of uint32 indices
	SetMesh(vertices, indices *wgpu.Buffer, indexCount int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: the debug label used for GPU objects created for this provider
//   - options: functional options attaching resources up front
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) Entries(layout []wgpu.BindGroupLayoutEntry) ([]wgpu.BindGroupEntry, []int) {
	entries := make([]wgpu.BindGroupEntry, 0, len(layout))
	var missing []int
	for _, le := range layout {
		binding := int(le.Binding)
		entry := wgpu.BindGroupEntry{Binding: le.Binding}
		switch {
		case le.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			entry.TextureView = p.textureViews[binding]
			if entry.TextureView == nil {
				missing = append(missing, binding)
				continue
			}
		case le.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			entry.Sampler = p.samplers[binding]
			if entry.Sampler == nil {
				missing = append(missing, binding)
				continue
			}
		default:
			entry.Buffer = p.buffers[binding]
			if entry.Buffer == nil {
				missing = append(missing, binding)
				continue
			}
			entry.Size = wgpu.WholeSize
		}
		entries = append(entries, entry)
	}
	return entries, missing
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetMesh(vertices, indices *wgpu.Buffer, indexCount int) {
	p.vertexBuffer = vertices
	p.indexBuffer = indices
	p.indexCount = indexCount
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, binding)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
	clear(p.textureViews)
	clear(p.samplers)
}
