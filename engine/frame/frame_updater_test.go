package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

type bindCall struct {
	label string
	slot  int
	data  []byte
}

type recordingBinder struct {
	mu    sync.Mutex
	calls []bindCall
	fail  map[string]error
}

func (r *recordingBinder) BindUniformBlock(label string, slot int, _ uniform.StageMask, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[label]; err != nil {
		return err
	}
	r.calls = append(r.calls, bindCall{label: label, slot: slot, data: append([]byte(nil), data...)})
	return nil
}

func (r *recordingBinder) labels() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.label
	}
	return out
}

func floatBlock(t *testing.T, label string, slot int, stages uniform.StageMask, value float32) *uniform.Block {
	t.Helper()
	reg := uniform.NewRegistry()
	reg.MustRegister(uniform.FieldTypeFloat, "Value", uniform.ConstFloat(value))
	b, err := uniform.NewLayoutBuilder(
		uniform.WithLabel(label),
		uniform.WithFields(uniform.FieldSpec{Type: uniform.FieldTypeFloat, Name: "Value"}),
	).Build(slot, stages, reg)
	if err != nil {
		t.Fatalf("build %s: %v", label, err)
	}
	return b
}

func TestUpdateBindsInSlotOrder(t *testing.T) {
	binder := &recordingBinder{}
	f, err := NewFrameUpdater(binder, WithBlocks(
		floatBlock(t, "c", 2, uniform.StageVertex, 3),
		floatBlock(t, "a", 0, uniform.StageVertex, 1),
		floatBlock(t, "b", 1, uniform.StageFragment, 2),
	))
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}
	defer f.Close()

	if err := f.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"a", "b", "c"}
	if got := binder.labels(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("bind order = %v, want %v", got, want)
	}
	for i, c := range binder.calls {
		if len(c.data) != 16 {
			t.Fatalf("%s: data length %d, want 16", c.label, len(c.data))
		}
		if v := math.Float32frombits(binary.LittleEndian.Uint32(c.data)); v != float32(i+1) {
			t.Fatalf("%s: value %v, want %v", c.label, v, i+1)
		}
	}
}

func TestAddBlockConflicts(t *testing.T) {
	f, err := NewFrameUpdater(&recordingBinder{})
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}
	if err := f.AddBlock(floatBlock(t, "globals", 0, uniform.StageGraphics, 1)); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	tests := []struct {
		name  string
		block *uniform.Block
		want  error
	}{
		{"nil", nil, ErrNilBlock},
		{"same label", floatBlock(t, "globals", 3, uniform.StageCompute, 1), ErrDuplicateBlock},
		{"overlapping stages", floatBlock(t, "other", 0, uniform.StageFragment, 1), ErrSlotInUse},
		{"disjoint stages", floatBlock(t, "compute", 0, uniform.StageCompute, 1), ErrSlotInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.AddBlock(tt.block); !errors.Is(err, tt.want) {
				t.Fatalf("AddBlock error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := f.AddBlock(floatBlock(t, "compute", 1, uniform.StageCompute, 1)); err != nil {
		t.Fatalf("AddBlock on a free slot: %v", err)
	}
	if n := len(f.Blocks()); n != 2 {
		t.Fatalf("Blocks() has %d entries, want 2", n)
	}
}

// slotBinder keeps one buffer per slot and counts how often a slot changes owner,
// the way a GPU binder recreates a buffer when a different block binds there.
type slotBinder struct {
	owner    map[int]string
	recreate int
}

func (s *slotBinder) BindUniformBlock(label string, slot int, _ uniform.StageMask, _ []byte) error {
	if have, ok := s.owner[slot]; !ok || have != label {
		s.owner[slot] = label
		s.recreate++
	}
	return nil
}

func TestSplitStageBlocksNeedSeparateSlots(t *testing.T) {
	vs := floatBlock(t, "vs", 0, uniform.StageVertex, 1)
	fs := floatBlock(t, "fs", 0, uniform.StageFragment, 2)

	if _, err := NewFrameUpdater(&slotBinder{owner: map[int]string{}}, WithBlocks(vs, fs)); !errors.Is(err, ErrSlotInUse) {
		t.Fatalf("NewFrameUpdater with vs and fs on slot 0: error = %v, want %v", err, ErrSlotInUse)
	}

	binder := &slotBinder{owner: map[int]string{}}
	f, err := NewFrameUpdater(binder, WithBlocks(vs, floatBlock(t, "fs", 1, uniform.StageFragment, 2)))
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}
	defer f.Close()
	for frame := range 3 {
		if err := f.Update(); err != nil {
			t.Fatalf("frame %d: Update: %v", frame, err)
		}
	}
	if binder.recreate != 2 {
		t.Fatalf("slot owners changed %d times over 3 frames, want 2", binder.recreate)
	}
}

func TestRemoveBlock(t *testing.T) {
	binder := &recordingBinder{}
	f, err := NewFrameUpdater(binder, WithBlocks(
		floatBlock(t, "a", 0, uniform.StageVertex, 1),
		floatBlock(t, "b", 1, uniform.StageVertex, 2),
	))
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}
	if !f.RemoveBlock("a") {
		t.Fatal("RemoveBlock(a) = false")
	}
	if f.RemoveBlock("a") {
		t.Fatal("second RemoveBlock(a) = true")
	}
	if err := f.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := binder.labels(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("bound %v, want [b]", got)
	}
}

func TestUpdateContinuesPastBindFailure(t *testing.T) {
	boom := errors.New("device lost")
	binder := &recordingBinder{fail: map[string]error{"a": boom}}
	f, err := NewFrameUpdater(binder, WithBlocks(
		floatBlock(t, "a", 0, uniform.StageVertex, 1),
		floatBlock(t, "b", 1, uniform.StageVertex, 2),
	))
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}

	err = f.Update()
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want %v", err, boom)
	}
	if got := binder.labels(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("bound %v, want [b]", got)
	}
}

func TestUpdateParallel(t *testing.T) {
	binder := &recordingBinder{}
	var blocks []*uniform.Block
	for i := range 16 {
		blocks = append(blocks, floatBlock(t, fmt.Sprintf("block%02d", i), i, uniform.StageVertex, float32(i)))
	}
	f, err := NewFrameUpdater(binder, WithWorkers(4), WithBlocks(blocks...))
	if err != nil {
		t.Fatalf("NewFrameUpdater: %v", err)
	}
	defer f.Close()

	for frame := range 3 {
		binder.calls = nil
		if err := f.Update(); err != nil {
			t.Fatalf("frame %d: Update: %v", frame, err)
		}
		if len(binder.calls) != 16 {
			t.Fatalf("frame %d: %d binds, want 16", frame, len(binder.calls))
		}
		for i, c := range binder.calls {
			if c.slot != i {
				t.Fatalf("frame %d: bind %d has slot %d", frame, i, c.slot)
			}
			if v := math.Float32frombits(binary.LittleEndian.Uint32(c.data)); v != float32(i) {
				t.Fatalf("frame %d: block %d value %v", frame, i, v)
			}
		}
	}
}

func TestNewFrameUpdaterNilBinder(t *testing.T) {
	if _, err := NewFrameUpdater(nil); !errors.Is(err, uniform.ErrNilBinder) {
		t.Fatalf("error = %v, want %v", err, uniform.ErrNilBinder)
	}
}
