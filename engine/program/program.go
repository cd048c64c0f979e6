package program

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// Errors returned while loading a program.
var (
	// ErrCountMismatch is returned when a legacy uniform's count does not fit its type
	// or disagrees with the number of default values.
	ErrCountMismatch = errors.New("uniform count does not match its type")
	// ErrSlotConflict is returned when two blocks claim the same slot.
	ErrSlotConflict = errors.New("uniform block slot already in use")
)

// legacySlot is the slot the flat uniforms list is bound to.
const legacySlot = 0

// BlockDefinition is a uniform block declared by a program, ready to be built against
// a registry.
type BlockDefinition struct {
	// Name is the block's debug label.
	Name string
	// Slot is the shader-visible binding index.
	Slot int
	// Stages selects the shader stages the block is visible to.
	Stages uniform.StageMask
	// Fields lists the members in declaration order.
	Fields []uniform.FieldSpec
}

// LayoutBuilder returns a fresh builder holding the definition's fields.
//
// Returns:
//   - *uniform.LayoutBuilder: the builder
//   - error: any field error
func (d BlockDefinition) LayoutBuilder() (*uniform.LayoutBuilder, error) {
	b := uniform.NewLayoutBuilder(uniform.WithLabel(d.Name), uniform.WithFields(d.Fields...))
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("block %q: %w", d.Name, err)
	}
	return b, nil
}

// defaultValue is a constant fallback for one field.
type defaultValue struct {
	t      uniform.FieldType
	name   string
	values []float32
}

// Program is a parsed shader program definition: the shader sources it pairs and the
// uniform blocks it declares.
type Program struct {
	name     string
	vertex   string
	fragment string
	samplers []string
	blocks   []BlockDefinition
	defaults []defaultValue
}

// Load parses a program definition from r and validates every block it declares.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - *Program: the parsed program
//   - error: a decode error or a wrapped configuration error
func Load(r io.Reader) (*Program, error) {
	var doc programDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return fromDocument(&doc)
}

// LoadFile reads and parses the program definition at path. The program is named
// after the file unless the document names itself.
//
// Parameters:
//   - path: the JSON file path
//
// Returns:
//   - *Program: the parsed program
//   - error: an I/O, decode or configuration error
func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.name = common.Coalesce(p.name, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return p, nil
}

func fromDocument(doc *programDocument) (*Program, error) {
	p := &Program{
		name:     doc.Name,
		vertex:   doc.Vertex,
		fragment: doc.Fragment,
	}
	for _, s := range doc.Samplers {
		p.samplers = append(p.samplers, s.Name)
	}

	slots := make(map[int]string)
	claim := func(d BlockDefinition) error {
		if other, ok := slots[d.Slot]; ok {
			return fmt.Errorf("%w: slot %d used by %q and %q", ErrSlotConflict, d.Slot, other, d.Name)
		}
		slots[d.Slot] = d.Name
		return nil
	}

	if len(doc.Uniforms) > 0 {
		legacy := BlockDefinition{
			Name:   common.Coalesce(doc.Name, "uniforms"),
			Slot:   legacySlot,
			Stages: uniform.StageGraphics,
		}
		for _, u := range doc.Uniforms {
			t, err := legacyFieldType(u)
			if err != nil {
				return nil, err
			}
			legacy.Fields = append(legacy.Fields, uniform.FieldSpec{Type: t, Name: u.Name})
			if len(u.Values) > 0 {
				p.defaults = append(p.defaults, defaultValue{t: t, name: u.Name, values: u.Values})
			}
		}
		if _, err := legacy.LayoutBuilder(); err != nil {
			return nil, err
		}
		_ = claim(legacy)
		p.blocks = append(p.blocks, legacy)
	}

	for _, bd := range doc.Blocks {
		stages, err := uniform.ParseStageMask(bd.Stages...)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", bd.Name, err)
		}
		def := BlockDefinition{Name: bd.Name, Slot: bd.Slot, Stages: stages}
		for _, f := range bd.Fields {
			t, err := uniform.ParseFieldType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("block %q field %q: %w", bd.Name, f.Name, err)
			}
			def.Fields = append(def.Fields, uniform.FieldSpec{Type: t, Name: f.Name})
		}
		if _, err := def.LayoutBuilder(); err != nil {
			return nil, err
		}
		if err := claim(def); err != nil {
			return nil, err
		}
		p.blocks = append(p.blocks, def)
	}
	return p, nil
}

// legacyFieldType maps a legacy (type, count) pair to a field type.
func legacyFieldType(u uniformDocument) (uniform.FieldType, error) {
	if len(u.Values) > 0 && len(u.Values) != u.Count {
		return uniform.FieldTypeInvalid, fmt.Errorf("uniform %q: %w: count %d with %d values", u.Name, ErrCountMismatch, u.Count, len(u.Values))
	}
	switch strings.ToLower(u.Type) {
	case "int":
		if u.Count == 1 {
			return uniform.FieldTypeInt, nil
		}
	case "float":
		switch u.Count {
		case 1:
			return uniform.FieldTypeFloat, nil
		case 2:
			return uniform.FieldTypeVec2, nil
		case 3:
			return uniform.FieldTypeVec3, nil
		case 4:
			return uniform.FieldTypeVec4, nil
		}
	case "matrix4x4":
		if u.Count == 16 {
			return uniform.FieldTypeMat4, nil
		}
	default:
		return uniform.FieldTypeInvalid, fmt.Errorf("uniform %q: %w: %q", u.Name, uniform.ErrInvalidType, u.Type)
	}
	return uniform.FieldTypeInvalid, fmt.Errorf("uniform %q: %w: %s with count %d", u.Name, ErrCountMismatch, u.Type, u.Count)
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Vertex returns the vertex shader name.
func (p *Program) Vertex() string { return p.vertex }

// Fragment returns the fragment shader name.
func (p *Program) Fragment() string { return p.fragment }

// Samplers returns the sampler names in declaration order.
func (p *Program) Samplers() []string { return append([]string(nil), p.samplers...) }

// Blocks returns the block definitions, the legacy block first when present.
func (p *Program) Blocks() []BlockDefinition {
	out := make([]BlockDefinition, len(p.blocks))
	for i, b := range p.blocks {
		b.Fields = append([]uniform.FieldSpec(nil), b.Fields...)
		out[i] = b
	}
	return out
}

// Builders returns a fresh layout builder per block definition.
//
// Returns:
//   - []*uniform.LayoutBuilder: one builder per block, in Blocks order
//   - error: any field error
func (p *Program) Builders() ([]*uniform.LayoutBuilder, error) {
	out := make([]*uniform.LayoutBuilder, 0, len(p.blocks))
	for _, d := range p.blocks {
		b, err := d.LayoutBuilder()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Build builds every block against registry.
//
// Parameters:
//   - registry: the supplier directory
//
// Returns:
//   - []*uniform.Block: the blocks in Blocks order
//   - error: the first build error
func (p *Program) Build(registry *uniform.Registry) ([]*uniform.Block, error) {
	blocks := make([]*uniform.Block, 0, len(p.blocks))
	for _, d := range p.blocks {
		b, err := d.LayoutBuilder()
		if err != nil {
			return nil, err
		}
		block, err := b.Build(d.Slot, d.Stages, registry)
		if err != nil {
			return nil, fmt.Errorf("program %q: %w", p.name, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// RegisterDefaultValues registers a constant supplier for every legacy uniform that
// carries default values and has no supplier yet.
//
// Parameters:
//   - reg: the registry to populate
//
// Returns:
//   - int: the number of suppliers registered
//   - error: uniform.ErrNilRegistry or a registration error
func (p *Program) RegisterDefaultValues(reg *uniform.Registry) (int, error) {
	if reg == nil {
		return 0, uniform.ErrNilRegistry
	}
	n := 0
	for _, d := range p.defaults {
		if _, ok := reg.Lookup(d.t, d.name); ok {
			continue
		}
		var s uniform.Supplier
		switch d.t {
		case uniform.FieldTypeInt:
			s = uniform.ConstInt(int32(d.values[0]))
		case uniform.FieldTypeFloat:
			s = uniform.ConstFloat(d.values[0])
		default:
			s = uniform.ConstFloats(d.values...)
		}
		if err := reg.Register(d.t, d.name, s); err != nil {
			return n, fmt.Errorf("default for %q: %w", d.name, err)
		}
		n++
	}
	return n, nil
}
