package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/vitra/engine/renderer/shader"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is the GPU object created by the Renderer during registration.
	renderPipeline *wgpu.RenderPipeline

	vertexCount  uint32
	blendEnabled bool
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
}

// Pipeline describes a render pipeline: its shaders and fixed-function state. Pipelines
// pull no vertex buffers; vertex shaders derive positions from the vertex index and
// read everything else from uniform blocks.
type Pipeline interface {
	// PipelineKey returns the unique key used for caching.
	PipelineKey() string

	// Shader returns the shader for a single stage, or nil.
	//
	// Parameters:
	//   - stage: uniform.StageVertex or uniform.StageFragment
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if none is set for stage
	Shader(stage uniform.StageMask) shader.Shader

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// VerifyBlocks checks blocks against every shader of the pipeline.
	//
	// Parameters:
	//   - group: the bind group the blocks are bound in
	//   - blocks: the blocks to check
	//
	// Returns:
	//   - error: the first shader.ErrLayoutMismatch found, or nil
	VerifyBlocks(group int, blocks ...*uniform.Block) error

	VertexCount() uint32
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU pipeline created by the Renderer.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with default fixed-function state: a full-screen
// triangle list of three vertices, no culling, counter-clockwise front faces and
// blending off.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: pipeline options
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		vertexCount: 3,
		cullMode:    wgpu.CullModeNone,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(stage uniform.StageMask) shader.Shader {
	switch stage {
	case uniform.StageVertex:
		return p.vertexShader
	case uniform.StageFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) VerifyBlocks(group int, blocks ...*uniform.Block) error {
	verified := map[shader.Shader]bool{}
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil || verified[s] {
			continue
		}
		verified[s] = true
		if err := s.VerifyBlocks(group, blocks...); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) VertexCount() uint32 {
	return p.vertexCount
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
