package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints sets the vertex and fragment entry points. An empty fragment entry point creates the
// pipeline without a fragment stage.
//
// Parameters:
//   - vertex: the vertex stage function name
//   - fragment: the fragment stage function name, or ""
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points for this pipeline
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntryPoint = vertex
		p.fragmentEntryPoint = fragment
	}
}

// WithDepthOnly drops the color target and draws into a depth attachment of the given format.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that makes this pipeline depth-only
func WithDepthOnly(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorTarget = false
		p.depthFormat = format
	}
}

// WithBindGroupLayouts sets the bind group layouts, indexed by group.
//
// Parameters:
//   - layouts: the layouts in group order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layouts for this pipeline
func WithBindGroupLayouts(layouts ...*wgpu.BindGroupLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = layouts
	}
}

// WithDepthFormat sets the depth attachment format.
//
// Parameters:
//   - format: the depth format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth format for this pipeline
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithSampleCount sets the multisample count. Values below 1 are treated as 1.
//
// Parameters:
//   - count: the sample count of the attachments
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count for this pipeline
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = max(count, 1)
	}
}
