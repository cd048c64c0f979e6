// Command vitra-demo opens a window and draws a sky whose uniforms are filled from the
// render state and a Lua script every frame. Drag the mouse or use the arrow keys to
// look around; Escape quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine"
	"github.com/Carmen-Shannon/vitra/engine/camera"
	"github.com/Carmen-Shannon/vitra/engine/frame"
	"github.com/Carmen-Shannon/vitra/engine/profiler"
	"github.com/Carmen-Shannon/vitra/engine/render_state"
	"github.com/Carmen-Shannon/vitra/engine/renderer"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
	"github.com/Carmen-Shannon/vitra/engine/window"
)

type config struct {
	program  string
	script   string
	speed    float64
	workers  int
	fps      float64
	vsync    bool
	profile  bool
	software bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.program, "program", "", "program definition whose uniform defaults are registered")
	flag.StringVar(&cfg.script, "script", "", "Lua script registering suppliers (default: built-in pulse)")
	flag.Float64Var(&cfg.speed, "speed", 2, "speed global passed to the script")
	flag.IntVar(&cfg.workers, "workers", 1, "goroutines filling uniform blocks")
	flag.Float64Var(&cfg.fps, "fps", 0, "frame rate cap, 0 for none")
	flag.BoolVar(&cfg.vsync, "vsync", true, "wait for vertical sync")
	flag.BoolVar(&cfg.profile, "profile", false, "log frame and upload statistics every second")
	flag.BoolVar(&cfg.software, "software", false, "force the fallback adapter")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	win, err := window.NewWindow(window.WithTitle("Vitra"), window.WithSize(1280, 720))
	if err != nil {
		return err
	}
	defer win.Close()

	mode := renderer.PresentModeVSync
	if !cfg.vsync {
		mode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(mode),
		renderer.WithClearColor(wgpu.Color{R: 0, G: 0, B: 0, A: 1}),
		renderer.WithForceSoftwareRenderer(cfg.software),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	state := render_state.NewState()
	reg := uniform.NewRegistry()
	cam := camera.NewOrbitCamera(camera.WithRadius(5), camera.WithAngles(0, 0.2))
	if err := cam.RegisterSuppliers(reg); err != nil {
		return err
	}

	sc, err := buildScene(reg, state, cfg)
	if err != nil {
		return err
	}
	defer sc.host.Close()
	for _, t := range []uniform.FieldType{uniform.FieldTypeFloat, uniform.FieldTypeVec3, uniform.FieldTypeVec4, uniform.FieldTypeMat4} {
		common.Logger().Debug("suppliers", "type", t.String(), "names", reg.Names(t))
	}

	uploader := r.NewUniformUploader("globals")
	defer uploader.Release()
	if err := uploader.Declare(sc.block); err != nil {
		return err
	}
	if err := r.RegisterPipeline(sc.pipeline, uploader); err != nil {
		return err
	}

	prof := profiler.NewProfiler()
	updater, err := frame.NewFrameUpdater(uploader,
		frame.WithBlocks(sc.block),
		frame.WithWorkers(cfg.workers),
		frame.WithProfiler(prof),
	)
	if err != nil {
		return err
	}
	defer updater.Close()

	win.SetMouseMoveCallback(cam.Drag)
	win.SetKeyDownCallback(func(key uint32) {
		switch glfw.Key(key) {
		case glfw.KeyLeft:
			cam.Orbit(-0.05, 0)
		case glfw.KeyRight:
			cam.Orbit(0.05, 0)
		case glfw.KeyUp:
			cam.Orbit(0, 0.05)
		case glfw.KeyDown:
			cam.Orbit(0, -0.05)
		}
	})

	eng, err := engine.NewEngine(win, r,
		engine.WithState(state),
		engine.WithFrameUpdater(updater),
		engine.WithPipelines(skyPipeline),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.profile),
		engine.WithRenderFrameLimit(cfg.fps),
		engine.WithTickCallback(func(float32) {
			cam.Apply(state)
			if err := sc.host.SetGlobal("time", win.Time()); err != nil {
				common.Logger().Warn("script clock not updated", "error", err)
			}
		}),
	)
	if err != nil {
		return err
	}
	return eng.Run()
}
