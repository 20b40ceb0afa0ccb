package renderer

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the GPU side of the Renderer. The renderer decides what to draw; the backend owns the
// device, the surface and every texture it creates, and encodes one command buffer per frame:
// BeginFrame, any number of shadow passes, one main pass, EndFrame, Present.
type RendererBackend interface {
	// ConfigureSurface (re)configures the surface and recreates the MSAA and depth attachments.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color of the main pass.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// SampleCount returns the MSAA sample count of the main pass attachments.
	//
	// Returns:
	//   - MSAASampleCount: the sample count
	SampleCount() MSAASampleCount

	// CreateBindGroupLayout creates a bind group layout from explicit entries.
	//
	// Parameters:
	//   - label: the debug label
	//   - entries: the layout entries
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: an error if creation fails
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (*wgpu.BindGroupLayout, error)

	// RegisterPipeline compiles the pipeline's shader, builds its layout from its bind group layouts and
	// stores the created render pipeline on it.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the pipeline could not be created
	RegisterPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data and stores the buffers on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitUniformBuffer creates a uniform buffer of the given size at a binding of the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffer on
	//   - binding: the binding index
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error

	// InitBindGroup creates the provider's bind group from the resources it holds.
	//
	// Parameters:
	//   - provider: the BindGroupProvider holding buffers, views and samplers
	//   - layout: the bind group layout
	//   - entries: the layout entries the provider must satisfy
	//
	// Returns:
	//   - error: an error if a binding is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupLayoutEntry) error

	// CreateTexture uploads RGBA8 staging data into a new sRGB texture and returns its view.
	// The backend keeps the texture until ReleaseTexture is called with the view.
	//
	// Parameters:
	//   - staging: the decoded pixels
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view
	//   - error: an error if creation fails
	CreateTexture(staging common.TextureStagingData) (*wgpu.TextureView, error)

	// ReleaseTexture releases a view returned by CreateTexture and its texture.
	//
	// Parameters:
	//   - view: the view to release
	ReleaseTexture(view *wgpu.TextureView)

	// CreateSampler creates a filtering sampler.
	//
	// Parameters:
	//   - staging: the sampler state
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: an error if creation fails
	CreateSampler(staging common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateComparisonSampler creates a comparison sampler for PCF shadow lookups.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	//   - error: an error if sampler creation fails
	CreateComparisonSampler() (*wgpu.Sampler, error)

	// CreateShadowMap (re)creates the Depth32Float shadow map with one layer per cube face.
	// Any previous shadow map is released.
	//
	// Parameters:
	//   - size: width and height of each layer in texels
	//   - layers: the number of layers
	//
	// Returns:
	//   - *wgpu.TextureView: a 2D-array view over every layer, for sampling
	//   - []*wgpu.TextureView: one 2D view per layer, for rendering
	//   - error: an error if creation fails
	CreateShadowMap(size uint32, layers int) (*wgpu.TextureView, []*wgpu.TextureView, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: the writes to apply
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginShadowPass starts a depth-only pass into one shadow map layer.
	//
	// Parameters:
	//   - depthView: the layer view to render into
	BeginShadowPass(depthView *wgpu.TextureView)

	// ShadowDrawCall encodes an indexed draw in the current shadow pass.
	//
	// Parameters:
	//   - p: the shadow Pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: the bind groups, in group order
	ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndShadowPass ends the current shadow pass.
	EndShadowPass()

	// BeginMainPass starts the color pass into the swapchain.
	BeginMainPass()

	// DrawCall encodes an indexed draw in the main pass.
	//
	// Parameters:
	//   - p: the render Pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: the bind groups, in group order
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndMainPass ends the main pass.
	EndMainPass()

	// EndFrame finishes the command encoder and submits it. It does not present.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release releases every GPU object the backend owns.
	Release()
}
