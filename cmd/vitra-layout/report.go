package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/vitra/engine/program"
	"github.com/Carmen-Shannon/vitra/engine/renderer/shader"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// namedLayout is a layout together with where it is bound.
type namedLayout struct {
	name   string
	slot   int
	stages uniform.StageMask
	layout uniform.Layout
}

type reporter struct {
	out   io.Writer
	width int
	langs []string
	group int
}

func (r *reporter) reportFile(path string) error {
	var (
		layouts []namedLayout
		err     error
	)
	if isWGSL(path) {
		layouts, err = shaderLayouts(path)
	} else {
		layouts, err = programLayouts(path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%s\n%s\n", path, strings.Repeat("=", min(len(path), r.width)))
	if len(layouts) == 0 {
		fmt.Fprintln(r.out, "no uniform blocks")
	}
	for _, l := range layouts {
		r.reportLayout(l)
	}
	return nil
}

// reportLayout prints one block's field table followed by its generated declarations.
func (r *reporter) reportLayout(l namedLayout) {
	fmt.Fprintf(r.out, "\n%s  slot=%d stages=%s size=%d\n", l.name, l.slot, l.stages, l.layout.TotalSize())
	fmt.Fprintln(r.out, strings.Repeat("-", min(48, r.width)))
	fmt.Fprintf(r.out, "%-24s %-6s %6s %6s\n", "field", "type", "offset", "bytes")
	for _, f := range l.layout.Fields() {
		fmt.Fprintf(r.out, "%-24s %-6s %6d %6d\n", f.Name, f.Type, f.ByteOffset(), f.ByteWidth())
	}

	for _, lang := range r.langs {
		fmt.Fprintln(r.out)
		switch lang {
		case "wgsl":
			fmt.Fprint(r.out, shader.GenerateWGSLStruct(l.name, l.layout))
			fmt.Fprint(r.out, shader.GenerateWGSLBinding(r.group, l.slot, strings.ToLower(l.name), l.name))
		case "hlsl":
			fmt.Fprint(r.out, shader.GenerateHLSLCBuffer(l.name, l.slot, l.layout))
		case "glsl":
			fmt.Fprint(r.out, shader.GenerateGLSLBlock(l.name, l.slot, l.layout))
		}
	}
}

func programLayouts(path string) ([]namedLayout, error) {
	p, err := program.LoadFile(path)
	if err != nil {
		return nil, err
	}
	var out []namedLayout
	for _, d := range p.Blocks() {
		b, err := d.LayoutBuilder()
		if err != nil {
			return nil, err
		}
		out = append(out, namedLayout{name: d.Name, slot: d.Slot, stages: d.Stages, layout: b.Layout()})
	}
	return out, nil
}

func shaderLayouts(path string) ([]namedLayout, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blocks, err := shader.ReflectUniformBlocks(string(src))
	if err != nil {
		return nil, err
	}
	var out []namedLayout
	for _, rb := range blocks {
		b, err := rb.LayoutBuilder()
		if err != nil {
			return nil, err
		}
		layout := b.Layout()
		// The host layout must agree with the compiler's; report the disagreement instead of a wrong table.
		if err := shader.VerifyLayout(layout, rb); err != nil {
			return nil, err
		}
		out = append(out, namedLayout{name: rb.TypeName, slot: rb.Binding, stages: rb.Stages, layout: layout})
	}
	return out, nil
}

func writeSPIRV(in, out string) error {
	if !isWGSL(in) {
		return fmt.Errorf("-spirv needs a .wgsl input")
	}
	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	bin, err := shader.CompileSPIRV(string(src))
	if err != nil {
		return err
	}
	return os.WriteFile(out, bin, 0o644)
}
