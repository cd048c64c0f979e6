package uniform

import "errors"

// Configuration errors. These are programming mistakes surfaced while a layout or
// registry is being set up and must be fixed by the caller.
var (
	// ErrInvalidType is returned for a field type outside the supported set.
	ErrInvalidType = errors.New("invalid uniform field type")
	// ErrDuplicateField is returned when a layout builder already holds a field with the same name.
	ErrDuplicateField = errors.New("duplicate uniform field name")
	// ErrEmptyFieldName is returned when a field is added without a name.
	ErrEmptyFieldName = errors.New("uniform field name must not be empty")
	// ErrSupplierKind is returned when a supplier's kind does not match the field type it is registered for.
	ErrSupplierKind = errors.New("supplier kind does not match field type")
	// ErrNilSupplier is returned when registering a nil supplier.
	ErrNilSupplier = errors.New("supplier must not be nil")
	// ErrInvalidSlot is returned when a block is built for a negative slot.
	ErrInvalidSlot = errors.New("uniform block slot must not be negative")
	// ErrNoStages is returned when a block is built without any shader stage.
	ErrNoStages = errors.New("uniform block must be visible to at least one shader stage")
	// ErrNilRegistry is returned when a block is built without a registry.
	ErrNilRegistry = errors.New("uniform block requires a supplier registry")
)

// Runtime errors.
var (
	// ErrBufferTooSmall is returned by Block.Update when the destination cannot hold the block.
	ErrBufferTooSmall = errors.New("destination buffer smaller than uniform block size")
	// ErrNilBinder is returned when binding a block without a GPU collaborator.
	ErrNilBinder = errors.New("uniform block binder must not be nil")
)
