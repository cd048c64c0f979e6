package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/frame"
	"github.com/Carmen-Shannon/vitra/engine/profiler"
	"github.com/Carmen-Shannon/vitra/engine/render_state"
	"github.com/Carmen-Shannon/vitra/engine/renderer"
	"github.com/Carmen-Shannon/vitra/engine/window"
)

// DefaultDayLength is the real time one game day lasts.
const DefaultDayLength = 20 * time.Minute

type engine struct {
	window   window.Window
	renderer renderer.Renderer
	frame    frame.FrameUpdater
	state    *render_state.State

	quitChannel chan struct{}
	quitOnce    sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)
	pipelines    []string

	dayLength        time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// projection is re-applied on resize when fovY is non-zero.
	fovY, near, far float32

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine runs the frame loop: poll window events, advance the render state, fill and
// bind uniform blocks, then draw every registered pipeline.
type Engine interface {
	Window() window.Window
	Renderer() renderer.Renderer

	// State returns the render state uniform suppliers read from.
	State() *render_state.State

	EnableProfiler()
	DisableProfiler()

	// SetTickCallback sets the function called once per frame, before uniforms are
	// updated, with the seconds elapsed since the previous frame.
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate. Zero or negative removes the cap.
	SetRenderFrameLimit(fps float64)

	// Run drives the frame loop on the calling goroutine until the window closes or
	// Quit is called. It must be called from the goroutine that created the window.
	//
	// Returns:
	//   - error: a draw error; uniform and surface errors are logged and the frame skipped
	Run() error

	// Quit stops Run after the current frame. Safe to call from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine drawing to win through r.
//
// Parameters:
//   - win: the window
//   - r: the renderer attached to win
//   - options: engine options
//
// Returns:
//   - Engine: the engine
//   - error: an error if win or r is nil
func NewEngine(win window.Window, r renderer.Renderer, options ...EngineBuilderOption) (Engine, error) {
	if win == nil || r == nil {
		return nil, errors.New("engine requires a window and a renderer")
	}
	e := &engine{
		window:      win,
		renderer:    r,
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		dayLength:   DefaultDayLength,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.state == nil {
		e.state = render_state.NewState()
	}

	e.resize(win.Width(), win.Height())
	win.SetResizeCallback(func(width, height int) {
		if err := e.renderer.Resize(width, height); err != nil {
			common.Logger().Warn("resize failed", "width", width, "height", height, "error", err)
		}
		e.resize(width, height)
	})
	return e, nil
}

func (e *engine) resize(width, height int) {
	e.state.SetScreenSize(float32(width), float32(height))
	if e.fovY != 0 && height > 0 {
		e.state.SetPerspective(e.fovY, float32(width)/float32(height), e.near, e.far)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) State() *render_state.State {
	return e.state
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) Run() error {
	start := e.now()
	last := start

	for !e.quitting() && e.window.IsRunning() {
		e.window.ProcessMessages()

		now := e.now()
		dt := now.Sub(last)
		last = now

		e.state.SetGameTime(gameTime(now.Sub(start), e.dayLength))
		if e.tickCallback != nil {
			e.tickCallback(float32(dt.Seconds()))
		}

		if err := e.renderFrame(); err != nil {
			return err
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}
		if e.renderFrameLimit > 0 {
			if spent := e.now().Sub(now); spent < e.renderFrameLimit {
				e.sleep(e.renderFrameLimit - spent)
			}
		}
	}
	return nil
}

func (e *engine) renderFrame() error {
	// Uniform failures are logged by the updater; blocks that did bind are still drawn.
	if e.frame != nil {
		_ = e.frame.Update()
	}

	if err := e.renderer.BeginFrame(); err != nil {
		// Outdated or lost surfaces recover on the next resize.
		common.Logger().Debug("frame skipped", "error", err)
		return nil
	}
	var drawErr error
	for _, key := range e.pipelines {
		if err := e.renderer.Draw(key); err != nil {
			drawErr = fmt.Errorf("draw %s: %w", key, err)
			break
		}
	}
	e.renderer.EndFrame()
	e.renderer.Present()
	return drawErr
}

// gameTime maps elapsed time onto [0, 1) cycling once per day.
func gameTime(elapsed, day time.Duration) float32 {
	if day <= 0 {
		return 0
	}
	return float32(math.Mod(elapsed.Seconds(), day.Seconds()) / day.Seconds())
}
