package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/tank-diorama/engine/camera"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
)

// IncludeDirective starts a line that is replaced with a registered WGSL source.
const IncludeDirective = "//@include"

// Names of the built-in includes.
const (
	IncludeCamera     = "camera"
	IncludeLights     = "lights"
	IncludeShadowFace = "shadow_face"
	IncludeModel      = "model"
	IncludeMaterial   = "material"
	IncludeVertex     = "vertex"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]string
	included []string
}

// PreProcessor expands include directives in WGSL source.
//
// A directive is a line of the form "//@include <name>". It is replaced with the registered source for
// name. Each name is expanded once per Process call; later directives for the same name are dropped so
// struct definitions are never declared twice.
type PreProcessor interface {
	// Process expands every include directive in source.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error naming the line of a malformed or unknown directive
	Process(source string) (string, error)

	// Included returns the names expanded by the most recent Process call, in source order.
	//
	// Returns:
	//   - []string: the expanded include names
	Included() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that knows the GPU struct sources of the camera, light, model
// and material packages.
//
// Parameters:
//   - options: extra includes to register
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		registry: map[string]string{
			IncludeCamera:     camera.GPUCameraUniformSource,
			IncludeLights:     light.GPULightsUniformSource,
			IncludeShadowFace: light.GPUShadowFaceUniformSource,
			IncludeModel:      model.GPUModelUniformSource,
			IncludeMaterial:   material.GPUMaterialUniformSource,
			IncludeVertex:     model.GPUVertexSource,
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	seen := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), IncludeDirective)
		if !ok {
			out = append(out, line)
			continue
		}

		args := strings.Fields(rest)
		if len(args) != 1 || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			return "", fmt.Errorf("line %d: malformed include directive %q", i+1, strings.TrimSpace(line))
		}
		name := args[0]
		src, known := p.registry[name]
		if !known {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		p.included = append(p.included, name)
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Included() []string {
	return append([]string(nil), p.included...)
}
