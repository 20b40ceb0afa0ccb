package bind_group_provider

// Marshaler is a GPU struct that packs itself for a queue write.
type Marshaler interface {
	Marshal() []byte
}

// BufferWrite is one queued write into the buffer at a provider binding. The renderer collects a frame's
// writes and hands them to the backend in one batch before encoding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// UniformWrite packs u into a whole-buffer write at binding.
//
// Parameters:
//   - p: the provider holding the uniform buffer
//   - binding: the buffer binding
//   - u: the uniform value
//
// Returns:
//   - BufferWrite: the write
func UniformWrite(p BindGroupProvider, binding int, u Marshaler) BufferWrite {
	return BufferWrite{Provider: p, Binding: binding, Data: u.Marshal()}
}
