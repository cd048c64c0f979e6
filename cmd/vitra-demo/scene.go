package main

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/program"
	"github.com/Carmen-Shannon/vitra/engine/render_state"
	"github.com/Carmen-Shannon/vitra/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vitra/engine/renderer/shader"
	"github.com/Carmen-Shannon/vitra/engine/scripting"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

//go:embed sky.wgsl
var skyShader string

//go:embed pulse.lua
var pulseScript string

const skyPipeline = "sky"

// scene is everything the demo draws, built without touching the GPU.
type scene struct {
	host     scripting.ScriptHost
	block    *uniform.Block
	pipeline pipeline.Pipeline
}

// globalsFields is the block the sky shader reads. Pulse comes from the Lua script;
// the rest are render state defaults.
var globalsFields = []uniform.FieldSpec{
	{Type: uniform.FieldTypeMat4, Name: render_state.IViewRotMat},
	{Type: uniform.FieldTypeVec4, Name: render_state.ColorModulator},
	{Type: uniform.FieldTypeVec2, Name: render_state.ScreenSize},
	{Type: uniform.FieldTypeFloat, Name: render_state.GameTime},
	{Type: uniform.FieldTypeFloat, Name: "Pulse"},
}

// buildScene registers state, script and program-default suppliers into reg, then
// builds the globals block and a sky pipeline whose shader is checked against it.
// Script suppliers replace state ones; program defaults only fill names still unserved.
func buildScene(reg *uniform.Registry, state *render_state.State, cfg config) (*scene, error) {
	if err := render_state.RegisterDefaults(reg, state); err != nil {
		return nil, err
	}

	host, err := scripting.NewScriptHost(reg, scripting.WithGlobals(map[string]float64{"speed": cfg.speed, "time": 0}))
	if err != nil {
		return nil, err
	}
	if cfg.script != "" {
		err = host.LoadFile(cfg.script)
	} else {
		err = host.Load(pulseScript)
	}
	if err != nil {
		host.Close()
		return nil, err
	}

	if cfg.program != "" {
		p, err := program.LoadFile(cfg.program)
		if err != nil {
			host.Close()
			return nil, err
		}
		n, err := p.RegisterDefaultValues(reg)
		if err != nil {
			host.Close()
			return nil, err
		}
		common.Logger().Debug("program defaults registered", "program", p.Name(), "count", n)
	}

	lb := uniform.NewLayoutBuilder(uniform.WithLabel("Globals"), uniform.WithFields(globalsFields...))
	block, err := lb.Build(0, uniform.StageFragment, reg, uniform.WithBlockLabel("globals"))
	if err != nil {
		host.Close()
		return nil, err
	}

	pp := shader.NewPreProcessor()
	pp.RegisterLayout("Globals", block.Layout())
	sh, err := shader.NewShader(skyPipeline, skyShader, shader.WithPreProcessor(pp))
	if err != nil {
		host.Close()
		return nil, fmt.Errorf("sky shader: %w", err)
	}

	p := pipeline.NewPipeline(skyPipeline, pipeline.WithShader(sh))
	if err := p.VerifyBlocks(0, block); err != nil {
		host.Close()
		return nil, err
	}
	return &scene{host: host, block: block, pipeline: p}, nil
}
