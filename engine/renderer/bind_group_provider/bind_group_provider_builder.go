package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option applied to a BindGroupProvider during construction via NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer seeds the uniform buffer held at binding. The provider takes ownership
// and releases it with the group.
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
