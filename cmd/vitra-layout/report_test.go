package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const frameShader = `struct Frame {
    Tint: vec4<f32>,
    Time: f32,
}

@group(0) @binding(0) var<uniform> frame: Frame;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return frame.Tint * frame.Time;
}
`

func TestReportProgram(t *testing.T) {
	var out bytes.Buffer
	r := &reporter{out: &out, width: 80, langs: []string{"hlsl", "glsl"}}
	if err := r.reportFile("../../engine/program/testdata/rendertype_solid.json"); err != nil {
		t.Fatalf("reportFile() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"uniforms  slot=0 stages=vertex|fragment size=",
		"Lighting  slot=1 stages=fragment size=32",
		"cbuffer Lighting : register(b1)",
		"float GlintAlpha : packoffset(c1.w);",
		"layout(std140, binding = 1) uniform Lighting {",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportShader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.wgsl")
	if err := os.WriteFile(path, []byte(frameShader), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	r := &reporter{out: &out, width: 80, langs: []string{"wgsl"}, group: 2}
	if err := r.reportFile(path); err != nil {
		t.Fatalf("reportFile() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Frame  slot=0 stages=fragment size=32",
		"struct Frame {",
		"@group(2) @binding(0) var<uniform> frame: Frame;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportMissingFile(t *testing.T) {
	r := &reporter{out: &bytes.Buffer{}, width: 80}
	if err := r.reportFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("reportFile() on a missing file should fail")
	}
}

func TestParseLangs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"wgsl", []string{"wgsl"}, false},
		{"hlsl, glsl", []string{"hlsl", "glsl"}, false},
		{"all", []string{"wgsl", "hlsl", "glsl"}, false},
		{"none", nil, false},
		{"metal", nil, true},
	}
	for _, tt := range tests {
		got, err := parseLangs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLangs(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseLangs(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
