package pipeline

import (
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It describes one render pipeline and holds the GPU object once the backend has created it.
type pipeline struct {
	key    string
	shader shader.Shader

	vertexEntryPoint   string
	fragmentEntryPoint string
	colorTarget        bool

	bindGroupLayouts []*wgpu.BindGroupLayout
	renderPipeline   *wgpu.RenderPipeline

	depthFormat       wgpu.TextureFormat
	depthCompare      wgpu.CompareFunction
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	sampleCount       uint32
	writeMask         wgpu.ColorWriteMask
}

// Pipeline describes a render pipeline over the mesh vertex layout: its shader and entry points, the bind
// group layouts it is created with, and the raster and depth state.
//
// A pipeline without a color target is depth-only. Its fragment stage, if any, may only write depth.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline, used for caching and labels.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Shader returns the shader holding both entry points.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// VertexEntryPoint returns the name of the vertex stage function.
	//
	// Returns:
	//   - string: the entry point
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the fragment stage function, empty when the pipeline has none.
	//
	// Returns:
	//   - string: the entry point or ""
	FragmentEntryPoint() string

	// ColorTarget reports whether the pipeline writes a color attachment.
	//
	// Returns:
	//   - bool: false for depth-only pipelines
	ColorTarget() bool

	// BindGroupLayouts returns the layouts the pipeline layout is built from, indexed by group.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: the layouts
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// DepthFormat returns the format of the depth attachment.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format
	DepthFormat() wgpu.TextureFormat

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// SampleCount returns the multisample count of the attachments the pipeline draws into.
	//
	// Returns:
	//   - uint32: the sample count, at least 1
	SampleCount() uint32

	// Descriptor builds the creation descriptor for this pipeline.
	//
	// Parameters:
	//   - module: the compiled shader module
	//   - layout: the pipeline layout built from BindGroupLayouts
	//   - colorFormat: the format of the color attachment, ignored for depth-only pipelines
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor
	Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, colorFormat wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor

	// RenderPipeline returns the created GPU pipeline, or nil before creation.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created GPU pipeline.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// Release releases the GPU pipeline. The bind group layouts belong to the caller.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline description. Without options it draws triangle lists into a single
// sampled Depth24Plus target with depth test Less, no culling and counter-clockwise front faces.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - s: the shader holding the entry points
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(key string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:                key,
		shader:             s,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
		colorTarget:        true,
		depthFormat:        wgpu.TextureFormatDepth24Plus,
		depthCompare:       wgpu.CompareFunctionLess,
		depthWriteEnabled:  true,
		cullMode:           wgpu.CullModeNone,
		topology:           wgpu.PrimitiveTopologyTriangleList,
		frontFace:          wgpu.FrontFaceCCW,
		sampleCount:        1,
		writeMask:          wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntryPoint
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntryPoint
}

func (p *pipeline) ColorTarget() bool {
	return p.colorTarget
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, colorFormat wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.vertexEntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{model.VertexLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            p.depthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      p.depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}

	if p.fragmentEntryPoint == "" {
		return desc
	}
	desc.Fragment = &wgpu.FragmentState{
		Module:     module,
		EntryPoint: p.fragmentEntryPoint,
	}
	if p.colorTarget {
		desc.Fragment.Targets = []wgpu.ColorTargetState{
			{Format: colorFormat, WriteMask: p.writeMask},
		}
	}
	return desc
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
