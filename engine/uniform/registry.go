package uniform

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// registryKey identifies a supplier by field type and name. The same name may be
// registered independently for different types.
type registryKey struct {
	t    FieldType
	name string
}

// Registry maps (type, name) pairs to suppliers. Registration normally completes
// during initialization, but the registry is guarded by a read-write lock so late
// registration from another goroutine is safe.
type Registry struct {
	mu        sync.RWMutex
	suppliers map[registryKey]Supplier
}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	return &Registry{
		suppliers: make(map[registryKey]Supplier),
	}
}

// Register inserts or replaces the supplier for (t, name). The last registration wins.
// The registry holds the supplier itself, not a copy of its value.
//
// Parameters:
//   - t: the field type the supplier serves
//   - name: the field name
//   - s: the supplier; its kind must match t (IntSupplier for Int, FloatSupplier for
//     Float, BufferSupplier for vectors and matrices)
//
// Returns:
//   - error: ErrInvalidType, ErrNilSupplier or ErrSupplierKind
func (r *Registry) Register(t FieldType, name string, s Supplier) error {
	if !t.Valid() {
		return fmt.Errorf("register %q: %w: %d", name, ErrInvalidType, int(t))
	}
	if isNilSupplier(s) {
		return fmt.Errorf("register %s %q: %w", t, name, ErrNilSupplier)
	}
	if s.kind() != supplierKindFor(t) {
		return fmt.Errorf("register %s %q: %w (got %T)", t, name, ErrSupplierKind, s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers[registryKey{t, name}] = s
	return nil
}

// MustRegister is Register for static initialization; it panics on error.
func (r *Registry) MustRegister(t FieldType, name string, s Supplier) {
	if err := r.Register(t, name, s); err != nil {
		panic(err)
	}
}

// Lookup returns the supplier registered for (t, name). It never fails; a missing
// supplier is reported through the boolean.
//
// Parameters:
//   - t: the field type
//   - name: the field name
//
// Returns:
//   - Supplier: the registered supplier, or nil
//   - bool: true if a supplier was found
func (r *Registry) Lookup(t FieldType, name string) (Supplier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suppliers[registryKey{t, name}]
	return s, ok
}

// Unregister removes the supplier for (t, name), if any. Blocks built earlier keep
// the supplier they resolved.
//
// Returns:
//   - bool: true if a supplier was removed
func (r *Registry) Unregister(t FieldType, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey{t, name}
	_, ok := r.suppliers[k]
	delete(r.suppliers, k)
	return ok
}

// Names returns the sorted names registered for type t.
func (r *Registry) Names(t FieldType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for k := range r.suppliers {
		if k.t == t {
			names = append(names, k.name)
		}
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered suppliers across all types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.suppliers)
}

// Clone returns an independent registry holding the same suppliers.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{suppliers: maps.Clone(r.suppliers)}
}
