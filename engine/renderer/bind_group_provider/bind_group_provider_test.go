package bind_group_provider

import (
	"slices"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestBindings(t *testing.T) {
	p := NewBindGroupProvider("test", WithBuffer(2, nil))
	p.SetBuffer(0, nil)
	p.SetBuffer(5, nil)

	if got, want := p.Bindings(), []int{0, 2, 5}; !slices.Equal(got, want) {
		t.Fatalf("Bindings() = %v, want %v", got, want)
	}
	if p.Label() != "test" {
		t.Fatalf("Label() = %q, want %q", p.Label(), "test")
	}
	if p.Buffer(1) != (*wgpu.Buffer)(nil) {
		t.Fatal("Buffer(1) should be nil")
	}
}

func TestReleaseEmpty(t *testing.T) {
	p := NewBindGroupProvider("empty", WithBuffer(0, nil))
	p.Release()
	if len(p.Bindings()) != 0 {
		t.Fatalf("Bindings() after Release = %v, want none", p.Bindings())
	}
	if p.BindGroup() != nil || p.BindGroupLayout() != nil {
		t.Fatal("bind group resources should be nil after Release")
	}
}
