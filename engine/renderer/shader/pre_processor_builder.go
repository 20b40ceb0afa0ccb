package shader

// PreProcessorOption is a functional option used to configure a PreProcessor during construction.
type PreProcessorOption func(*preProcessor)

// WithInclude registers, or replaces, the source expanded for an include name.
//
// Parameters:
//   - name: the include name used after the directive
//   - source: the WGSL text to insert
//
// Returns:
//   - PreProcessorOption: a function that registers the include
func WithInclude(name, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.registry[name] = source
	}
}
