package renderer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/vitra/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

type fakeWrite struct {
	binding int
	data    []byte
}

type fakeUniformBackend struct {
	buffers     []string
	sizes       []uint64
	descriptors []wgpu.BindGroupLayoutDescriptor
	writes      []fakeWrite
	createErr   error
}

func (f *fakeUniformBackend) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.buffers = append(f.buffers, label)
	f.sizes = append(f.sizes, size)
	return nil, nil
}

func (f *fakeUniformBackend) CreateUniformBindGroup(_ bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor) error {
	f.descriptors = append(f.descriptors, d)
	return nil
}

func (f *fakeUniformBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		f.writes = append(f.writes, fakeWrite{binding: w.Binding, data: bytes.Clone(w.Data)})
	}
}

func TestShaderStages(t *testing.T) {
	tests := []struct {
		in   uniform.StageMask
		want wgpu.ShaderStage
	}{
		{uniform.StageNone, wgpu.ShaderStageNone},
		{uniform.StageVertex, wgpu.ShaderStageVertex},
		{uniform.StageFragment, wgpu.ShaderStageFragment},
		{uniform.StageCompute, wgpu.ShaderStageCompute},
		{uniform.StageGraphics, wgpu.ShaderStageVertex | wgpu.ShaderStageFragment},
	}
	for _, tt := range tests {
		if got := ShaderStages(tt.in); got != tt.want {
			t.Errorf("ShaderStages(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUniformUploaderBind(t *testing.T) {
	backend := &fakeUniformBackend{}
	u := newUniformUploader(backend, "globals")

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if err := u.BindUniformBlock("frame", 1, uniform.StageFragment, data); err != nil {
		t.Fatalf("BindUniformBlock: %v", err)
	}
	data[0] = 99
	if err := u.BindUniformBlock("frame", 1, uniform.StageFragment, data); err != nil {
		t.Fatalf("BindUniformBlock: %v", err)
	}

	if len(backend.buffers) != 1 || backend.sizes[0] != 16 {
		t.Fatalf("buffers = %v sizes = %v, want one 16 byte buffer", backend.buffers, backend.sizes)
	}
	if len(backend.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(backend.writes))
	}
	if backend.writes[0].binding != 1 || backend.writes[0].data[0] != 1 || backend.writes[1].data[0] != 99 {
		t.Fatalf("unexpected writes: %+v", backend.writes)
	}

	if _, err := u.BindGroup(); err != nil {
		t.Fatalf("BindGroup: %v", err)
	}
	if _, err := u.BindGroup(); err != nil {
		t.Fatalf("BindGroup: %v", err)
	}
	if len(backend.descriptors) != 1 {
		t.Fatalf("bind group built %d times, want 1", len(backend.descriptors))
	}
}

func TestUniformUploaderLayoutDescriptor(t *testing.T) {
	backend := &fakeUniformBackend{}
	u := newUniformUploader(backend, "globals")

	reg := uniform.NewRegistry()
	vertex, err := uniform.NewLayoutBuilder(uniform.WithLabel("transforms"), uniform.WithFields(
		uniform.FieldSpec{Type: uniform.FieldTypeMat4, Name: "MVP"},
	)).Build(0, uniform.StageVertex, reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	shared, err := uniform.NewLayoutBuilder(uniform.WithLabel("fog"), uniform.WithFields(
		uniform.FieldSpec{Type: uniform.FieldTypeVec4, Name: "FogColor"},
		uniform.FieldSpec{Type: uniform.FieldTypeFloat, Name: "FogStart"},
	)).Build(2, uniform.StageGraphics, reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Declared out of order; entries come back sorted by binding.
	if err := u.Declare(shared, vertex); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	d := u.LayoutDescriptor()
	if len(d.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(d.Entries))
	}
	e0, e1 := d.Entries[0], d.Entries[1]
	if e0.Binding != 0 || e0.Visibility != wgpu.ShaderStageVertex || e0.Buffer.MinBindingSize != 64 {
		t.Errorf("entry 0 = binding %d visibility %v size %d", e0.Binding, e0.Visibility, e0.Buffer.MinBindingSize)
	}
	if e1.Binding != 2 || e1.Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment || e1.Buffer.MinBindingSize != 32 {
		t.Errorf("entry 1 = binding %d visibility %v size %d", e1.Binding, e1.Visibility, e1.Buffer.MinBindingSize)
	}
	for _, e := range d.Entries {
		if e.Buffer.Type != wgpu.BufferBindingTypeUniform {
			t.Errorf("binding %d type = %v, want uniform", e.Binding, e.Buffer.Type)
		}
	}

	// Binding the declared blocks reuses their buffers.
	if err := vertex.UpdateAndBind(u); err != nil {
		t.Fatalf("UpdateAndBind: %v", err)
	}
	if len(backend.buffers) != 2 {
		t.Fatalf("buffers created = %d, want 2", len(backend.buffers))
	}
}

func TestUniformUploaderRecreatesOnChange(t *testing.T) {
	backend := &fakeUniformBackend{}
	u := newUniformUploader(backend, "globals")

	if err := u.BindUniformBlock("a", 0, uniform.StageVertex, make([]byte, 16)); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, err := u.BindGroup(); err != nil {
		t.Fatalf("BindGroup: %v", err)
	}
	if err := u.BindUniformBlock("a", 0, uniform.StageVertex, make([]byte, 32)); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := u.BindUniformBlock("a", 0, uniform.StageGraphics, make([]byte, 32)); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(backend.buffers) != 3 {
		t.Fatalf("buffers created = %d, want 3", len(backend.buffers))
	}
	if _, err := u.BindGroup(); err != nil {
		t.Fatalf("BindGroup: %v", err)
	}
	if len(backend.descriptors) != 2 {
		t.Fatalf("bind group built %d times, want 2", len(backend.descriptors))
	}
	last := backend.descriptors[1].Entries[0]
	if last.Buffer.MinBindingSize != 32 || last.Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Fatalf("rebuilt entry = %+v", last)
	}
}

func TestUniformUploaderErrors(t *testing.T) {
	boom := errors.New("out of memory")
	backend := &fakeUniformBackend{createErr: boom}
	u := newUniformUploader(backend, "globals")

	if err := u.BindUniformBlock("a", 0, uniform.StageVertex, make([]byte, 16)); !errors.Is(err, boom) {
		t.Fatalf("bind error = %v, want %v", err, boom)
	}
	if len(backend.writes) != 0 {
		t.Fatal("no write expected after a failed buffer creation")
	}

	backend.createErr = nil
	u.Release()
	if err := u.BindUniformBlock("a", 0, uniform.StageVertex, make([]byte, 16)); !errors.Is(err, ErrUploaderReleased) {
		t.Fatalf("bind after Release = %v, want %v", err, ErrUploaderReleased)
	}
}
