package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vitra/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	// pipelineGroups holds, per pipeline key, the uploaders bound at groups 0..n-1.
	pipelineGroups map[string][]*UniformUploader

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	clearColor           *wgpu.Color
}

// Renderer draws uniform-driven pipelines to a window surface.
//
// A frame is BeginFrame, one or more Draw calls, EndFrame and Present. Uniform data
// reaches the GPU through UniformUploaders, which implement uniform.Binder; update and
// bind blocks before BeginFrame.
type Renderer interface {
	// Pipeline retrieves a registered Pipeline by key.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if not registered
	Pipeline(key string) pipeline.Pipeline

	// NewUniformUploader creates an uploader for one bind group.
	//
	// Parameters:
	//   - label: the debug label used for the group's GPU resources
	//
	// Returns:
	//   - *UniformUploader: the uploader
	NewUniformUploader(label string) *UniformUploader

	// RegisterPipeline creates the GPU pipeline for p with groups[i] bound at group i,
	// and caches p under its key. The uploaders must have every slot declared.
	//
	// Parameters:
	//   - p: the pipeline
	//   - groups: the uploaders for groups 0..n-1
	//
	// Returns:
	//   - error: an error if a bind group layout or the pipeline cannot be created
	RegisterPipeline(p pipeline.Pipeline, groups ...*UniformUploader) error

	// Resize reconfigures the surface for a new framebuffer size.
	Resize(width, height int) error

	// SetPresentMode changes the present mode; it applies from the next Resize.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color.
	SetClearColor(c wgpu.Color)

	// BeginFrame acquires the swapchain texture and begins the render pass.
	BeginFrame() error

	// Draw draws the pipeline registered under key with its uniform groups.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or a bind group cannot be built
	Draw(key string) error

	// EndFrame ends the render pass and submits the frame.
	EndFrame()

	// Present presents the frame.
	Present()

	// Release frees every GPU resource owned by the renderer. Uploaders are released by their owners.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing to win.
//
// Parameters:
//   - backendType: the GPU backend
//   - win: the window that provides the surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the device or surface cannot be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		pipelineCache:  make(map[string]pipeline.Pipeline),
		pipelineGroups: make(map[string][]*UniformUploader),
		backendType:    backendType,
		presentMode:    PresentModeVSync,
		sampleCount:    MSAAOff,
	}
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	default:
		return nil, fmt.Errorf("unsupported renderer backend %d", backendType)
	}

	r.backend.SetPresentMode(r.presentMode)
	if r.clearColor != nil {
		r.backend.SetClearColor(*r.clearColor)
	}
	if err := r.backend.ConfigureSurface(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}

	common.Logger().Info("renderer ready", "width", win.Width(), "height", win.Height(), "msaa", uint32(r.sampleCount))
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) NewUniformUploader(label string) *UniformUploader {
	return newUniformUploader(r.backend, label)
}

func (r *renderer) RegisterPipeline(p pipeline.Pipeline, groups ...*UniformUploader) error {
	layouts := make([]*wgpu.BindGroupLayout, len(groups))
	for i, u := range groups {
		layout, err := u.BindGroupLayout()
		if err != nil {
			return fmt.Errorf("pipeline %s group %d: %w", p.PipelineKey(), i, err)
		}
		layouts[i] = layout
	}
	if err := r.backend.RegisterRenderPipeline(p, layouts); err != nil {
		return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache[p.PipelineKey()] = p
	r.pipelineGroups[p.PipelineKey()] = groups
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if width == 0 || height == 0 {
		// Minimized; the surface cannot be configured with a zero extent.
		return nil
	}
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Draw(key string) error {
	r.mu.Lock()
	p, ok := r.pipelineCache[key]
	groups := r.pipelineGroups[key]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("pipeline %q not registered", key)
	}

	bindGroups := make([]*wgpu.BindGroup, len(groups))
	for i, u := range groups {
		bg, err := u.BindGroup()
		if err != nil {
			return fmt.Errorf("pipeline %s group %d: %w", key, i, err)
		}
		bindGroups[i] = bg
	}
	r.backend.Draw(p, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
