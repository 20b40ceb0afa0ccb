package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key      string
	source   string
	includes []string
	module   *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module ready for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Includes lists the include names expanded into the source.
	//
	// Returns:
	//   - []string: the include names in source order
	Includes() []string

	// Module returns the descriptor the backend passes to CreateShaderModule.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes source and builds its module descriptor.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the raw WGSL source, possibly containing include directives
//   - options: extra includes for the pre-processor
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if the source is empty or an include directive is invalid
func NewShader(key, source string, options ...PreProcessorOption) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	pp := NewPreProcessor(options...)
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return &shader{
		key:      key,
		source:   processed,
		includes: pp.Included(),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: processed,
			},
		},
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Includes() []string {
	return s.includes
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
