package uniform

// BlockOption is a functional option applied to a Block during construction via NewBlock.
type BlockOption func(*Block)

// WithBlockLabel sets the block's debug label. The label keys GPU resources in the
// renderer, so blocks sharing a slot should carry distinct labels.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - BlockOption: a function that applies the label to a block
func WithBlockLabel(label string) BlockOption {
	return func(b *Block) {
		if label != "" {
			b.label = label
		}
	}
}
