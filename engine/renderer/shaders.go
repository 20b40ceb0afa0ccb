package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshShaderSource is the lit mesh shader. Its bind groups are frame (0), material (1) and object (2).
//
//go:embed assets/mesh.wgsl
var MeshShaderSource string

// ShadowShaderSource is the depth-only point light shadow shader. Its bind groups are face (0) and object (1).
//
//go:embed assets/shadow.wgsl
var ShadowShaderSource string

const (
	pipelineMesh       = "mesh"
	pipelineMeshDouble = "mesh_double"
	pipelineShadow     = "shadow"
)

var (
	cameraUniformSize   = uint64((&camera.GPUCameraUniform{}).Size())
	lightsUniformSize   = uint64((&light.GPULightsUniform{}).Size())
	faceUniformSize     = uint64((&light.GPUShadowFaceUniform{}).Size())
	materialUniformSize = uint64((&material.GPUMaterialUniform{}).Size())
	modelUniformSize    = uint64((&model.GPUModelUniform{}).Size())
)

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}

// frameLayoutEntries: camera, lights, shadow map array, comparison sampler.
func frameLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, cameraUniformSize),
		uniformEntry(1, wgpu.ShaderStageFragment, lightsUniformSize),
		{
			Binding:    2,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeDepth,
				ViewDimension: wgpu.TextureViewDimension2DArray,
			},
		},
		{
			Binding:    3,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
		},
	}
}

// materialLayoutEntries: material uniform, diffuse texture, diffuse sampler.
func materialLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, materialUniformSize),
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
	}
}

func objectLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, modelUniformSize),
	}
}

func faceLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, faceUniformSize),
	}
}
