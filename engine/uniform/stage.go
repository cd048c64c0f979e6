package uniform

import (
	"fmt"
	"strings"
)

// StageMask selects the shader stages a uniform block is bound to. The bit values
// match WebGPU's ShaderStage flags so the renderer can convert directly.
type StageMask uint32

const (
	// StageVertex makes the block visible to the vertex stage.
	StageVertex StageMask = 1 << iota
	// StageFragment makes the block visible to the fragment (pixel) stage.
	StageFragment
	// StageCompute makes the block visible to compute shaders.
	StageCompute

	// StageNone selects no stage.
	StageNone StageMask = 0
	// StageGraphics selects both the vertex and fragment stages.
	StageGraphics = StageVertex | StageFragment
	// stageAll is every defined stage bit.
	stageAll = StageVertex | StageFragment | StageCompute
)

var stageNames = []struct {
	mask StageMask
	name string
}{
	{StageVertex, "vertex"},
	{StageFragment, "fragment"},
	{StageCompute, "compute"},
}

// ParseStageMask combines stage names into a mask. Accepted names are "vertex",
// "fragment" (or "pixel") and "compute".
//
// Parameters:
//   - names: the stage names
//
// Returns:
//   - StageMask: the combined mask
//   - error: an error naming the first unknown stage
func ParseStageMask(names ...string) (StageMask, error) {
	var mask StageMask
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "vertex":
			mask |= StageVertex
		case "fragment", "pixel":
			mask |= StageFragment
		case "compute":
			mask |= StageCompute
		default:
			return StageNone, fmt.Errorf("unknown shader stage %q", n)
		}
	}
	return mask, nil
}

// Has reports whether every bit of o is set in m.
func (m StageMask) Has(o StageMask) bool {
	return m&o == o
}

// Valid reports whether m selects at least one stage and no unknown bits.
func (m StageMask) Valid() bool {
	return m != StageNone && m&^stageAll == 0
}

func (m StageMask) String() string {
	if m == StageNone {
		return "none"
	}
	var parts []string
	for _, s := range stageNames {
		if m.Has(s.mask) {
			parts = append(parts, s.name)
		}
	}
	if rest := m &^ stageAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
