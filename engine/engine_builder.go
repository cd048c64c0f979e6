package engine

import (
	"time"

	"github.com/Carmen-Shannon/vitra/engine/frame"
	"github.com/Carmen-Shannon/vitra/engine/profiler"
	"github.com/Carmen-Shannon/vitra/engine/render_state"
)

// EngineBuilderOption is a functional option applied to an engine during construction via NewEngine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling on startup.
// When enabled, the profiler logs FPS and uniform upload statistics once per second.
//
// Parameters:
//   - enabled: true to enable profiling on engine start
//
// Returns:
//   - EngineBuilderOption: a function that applies the profiling option to an engine
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the engine's profiler, so it can be shared with a
// frame.FrameUpdater configured with frame.WithProfiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithFrameUpdater sets the updater that fills and binds uniform blocks every frame.
func WithFrameUpdater(f frame.FrameUpdater) EngineBuilderOption {
	return func(e *engine) {
		e.frame = f
	}
}

// WithState sets the render state. A fresh render_state.State is used otherwise.
func WithState(s *render_state.State) EngineBuilderOption {
	return func(e *engine) {
		e.state = s
	}
}

// WithPipelines sets the keys of the registered pipelines drawn each frame, in order.
//
// Parameters:
//   - keys: pipeline keys
//
// Returns:
//   - EngineBuilderOption: a function that applies the pipelines to an engine
func WithPipelines(keys ...string) EngineBuilderOption {
	return func(e *engine) {
		e.pipelines = append(e.pipelines, keys...)
	}
}

// WithTickCallback sets the per-frame callback. See Engine.SetTickCallback.
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithRenderFrameLimit caps the frame rate at fps. Zero or negative means uncapped.
//
// Parameters:
//   - fps: the maximum frames per second
//
// Returns:
//   - EngineBuilderOption: a function that applies the frame limit to an engine
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithDayLength sets how much real time one game day lasts.
func WithDayLength(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.dayLength = d
	}
}

// WithProjection keeps a perspective projection in sync with the window aspect ratio.
//
// Parameters:
//   - fovY: the vertical field of view in radians
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - EngineBuilderOption: a function that applies the projection to an engine
func WithProjection(fovY, near, far float32) EngineBuilderOption {
	return func(e *engine) {
		e.fovY, e.near, e.far = fovY, near, far
	}
}
