// Command vitra-layout prints the constant-buffer layout of the uniform blocks declared
// by program definitions (.json) or WGSL shaders (.wgsl), along with the struct
// declarations generated for each shading language.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/Carmen-Shannon/vitra/common"
)

func main() {
	lang := flag.String("lang", "wgsl", "generated declarations: wgsl, hlsl, glsl, all or none")
	group := flag.Int("group", 0, "bind group used for generated WGSL bindings")
	spirv := flag.String("spirv", "", "write the SPIR-V binary of a .wgsl input to this file")
	verbose := flag.Bool("v", false, "log block construction")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vitra-layout [options] file.json|file.wgsl ...\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *spirv != "" && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: -spirv takes exactly one input")
		os.Exit(2)
	}
	langs, err := parseLangs(*lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *verbose {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	width := 80
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	r := &reporter{out: os.Stdout, width: width, langs: langs, group: *group}
	failed := false
	for _, path := range flag.Args() {
		if err := r.reportFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			failed = true
			continue
		}
		if *spirv != "" {
			if err := writeSPIRV(path, *spirv); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
				failed = true
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

// parseLangs expands the -lang flag into the set of languages to generate.
func parseLangs(s string) ([]string, error) {
	switch s {
	case "all":
		return []string{"wgsl", "hlsl", "glsl"}, nil
	case "none":
		return nil, nil
	}
	var out []string
	for l := range strings.SplitSeq(s, ",") {
		switch l = strings.TrimSpace(l); l {
		case "wgsl", "hlsl", "glsl":
			out = append(out, l)
		default:
			return nil, fmt.Errorf("unknown language %q", l)
		}
	}
	return out, nil
}

func isWGSL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wgsl")
}
