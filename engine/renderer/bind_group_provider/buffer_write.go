package bind_group_provider

// BufferWrite describes one queue write into the buffer a provider holds at Binding.
// Data is copied by the queue before the write call returns.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
