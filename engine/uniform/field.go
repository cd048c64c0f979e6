package uniform

// FieldDescriptor describes one named member of a uniform block layout. Offset is in
// 4-byte units and is fixed by the LayoutBuilder when the field is added.
type FieldDescriptor struct {
	// Type is the member's scalar, vector or matrix kind.
	Type FieldType
	// Name is the member name suppliers are looked up by.
	Name string
	// Offset is the member's start in 4-byte units from the block start.
	Offset int
}

// ByteOffset returns the member's start in bytes.
func (f FieldDescriptor) ByteOffset() int {
	return f.Offset * unitSize
}

// ByteWidth returns the number of bytes the member occupies (excluding trailing padding).
func (f FieldDescriptor) ByteWidth() int {
	return f.Type.ByteWidth()
}

// End returns the first unit after the member.
func (f FieldDescriptor) End() int {
	return f.Offset + f.Type.ByteWidth()/unitSize
}

// FieldSpec is a (type, name) pair used to declare fields up front.
type FieldSpec struct {
	Type FieldType
	Name string
}

// boundField is a FieldDescriptor paired with the supplier it resolved to when the
// owning Block was built. supplier is nil when no supplier was registered.
type boundField struct {
	FieldDescriptor
	supplier Supplier
}
