package scripting

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// ErrClosed is returned when loading a script into a closed host.
var ErrClosed = errors.New("script host is closed")

// registerFuncs maps the Lua global registration functions to the field types they register.
var registerFuncs = map[string]uniform.FieldType{
	"register_int":   uniform.FieldTypeInt,
	"register_float": uniform.FieldTypeFloat,
	"register_vec2":  uniform.FieldTypeVec2,
	"register_vec3":  uniform.FieldTypeVec3,
	"register_vec4":  uniform.FieldTypeVec4,
	"register_mat4":  uniform.FieldTypeMat4,
}

// scriptHost is the implementation of the ScriptHost interface.
type scriptHost struct {
	// mu serializes every use of state; suppliers may be called from worker goroutines.
	mu       sync.Mutex
	state    *lua.LState
	registry *uniform.Registry
	globals  map[string]float64
	closed   bool

	registered []uniform.FieldSpec
	// failures counts supplier calls that raised a Lua error.
	failures int
	// warned records fields whose failure has already been logged.
	warned map[string]bool
}

// ScriptHost runs Lua scripts that register uniform suppliers. Scripts call
// register_int, register_float, register_vec2, register_vec3, register_vec4 or
// register_mat4 with a field name and a function; the function is called every time a
// block reads the field. Vectors and matrices are returned as arrays of numbers.
//
// A supplier whose function raises an error yields zero for that update. The first
// failure per field is logged as a warning.
type ScriptHost interface {
	// Load runs a Lua chunk.
	//
	// Parameters:
	//   - source: the Lua source
	//
	// Returns:
	//   - error: ErrClosed or the Lua compile or runtime error
	Load(source string) error

	// LoadFile runs the Lua file at path.
	//
	// Parameters:
	//   - path: the script path
	//
	// Returns:
	//   - error: ErrClosed or the Lua compile or runtime error
	LoadFile(path string) error

	// SetGlobal sets a numeric Lua global, visible to suppliers from their next call.
	//
	// Parameters:
	//   - name: the global name
	//   - v: the value
	//
	// Returns:
	//   - error: ErrClosed
	SetGlobal(name string, v float64) error

	// Registered returns the fields registered by scripts so far, in registration order.
	//
	// Returns:
	//   - []uniform.FieldSpec: the registered fields
	Registered() []uniform.FieldSpec

	// Failures returns the number of supplier calls that raised a Lua error.
	//
	// Returns:
	//   - int: the failure count
	Failures() int

	// Close releases the Lua state. Suppliers registered by the host yield zero afterwards.
	Close()
}

var _ ScriptHost = &scriptHost{}

// NewScriptHost creates a ScriptHost registering into registry.
//
// Parameters:
//   - registry: the registry scripts register suppliers into
//   - options: functional options to configure the host
//
// Returns:
//   - ScriptHost: the host
//   - error: uniform.ErrNilRegistry
func NewScriptHost(registry *uniform.Registry, options ...ScriptHostBuilderOption) (ScriptHost, error) {
	if registry == nil {
		return nil, uniform.ErrNilRegistry
	}
	h := &scriptHost{
		state:    lua.NewState(),
		registry: registry,
		warned:   make(map[string]bool),
	}
	for _, opt := range options {
		opt(h)
	}

	for name, v := range h.globals {
		h.state.SetGlobal(name, lua.LNumber(v))
	}
	for name, t := range registerFuncs {
		h.state.SetGlobal(name, h.state.NewFunction(h.registerFunc(t)))
	}
	return h, nil
}

func (h *scriptHost) Load(source string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if err := h.state.DoString(source); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

func (h *scriptHost) LoadFile(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("run script %s: %w", path, err)
	}
	return nil
}

func (h *scriptHost) SetGlobal(name string, v float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.state.SetGlobal(name, lua.LNumber(v))
	return nil
}

func (h *scriptHost) Registered() []uniform.FieldSpec {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]uniform.FieldSpec(nil), h.registered...)
}

func (h *scriptHost) Failures() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failures
}

func (h *scriptHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.state.Close()
}

// registerFunc returns the Lua function registering a supplier of type t. It runs on
// the Lua stack with h.mu already held by Load.
func (h *scriptHost) registerFunc(t uniform.FieldType) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		var s uniform.Supplier
		switch t {
		case uniform.FieldTypeInt:
			s = uniform.IntSupplier(func() int32 {
				var out int32
				h.call(name, fn, func(v lua.LValue) { out = int32(lua.LVAsNumber(v)) })
				return out
			})
		case uniform.FieldTypeFloat:
			s = uniform.FloatSupplier(func() float32 {
				var out float32
				h.call(name, fn, func(v lua.LValue) { out = float32(lua.LVAsNumber(v)) })
				return out
			})
		default:
			s = h.bufferSupplier(name, t.ByteWidth()/4, fn)
		}

		if err := h.registry.Register(t, name, s); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		h.registered = append(h.registered, uniform.FieldSpec{Type: t, Name: name})
		common.Logger().Debug("script supplier registered", "field", name, "type", t.String())
		return 0
	}
}

// bufferSupplier encodes the array returned by fn as n little-endian floats. A scalar
// result fills the first component. Each call returns its own buffer, so blocks filled
// on different goroutines never share bytes.
func (h *scriptHost) bufferSupplier(name string, n int, fn *lua.LFunction) uniform.BufferSupplier {
	return func() []byte {
		var out []byte
		h.call(name, fn, func(v lua.LValue) {
			out = make([]byte, n*4)
			switch lv := v.(type) {
			case *lua.LTable:
				for i := range n {
					f := float32(lua.LVAsNumber(lv.RawGetInt(i + 1)))
					binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
				}
			case lua.LNumber:
				binary.LittleEndian.PutUint32(out, math.Float32bits(float32(lv)))
			}
		})
		return out
	}
}

// call invokes fn under the host lock and hands its first result to use, still under
// the lock; Lua values are only valid while the state is held. use is not called when
// fn fails or the host is closed.
func (h *scriptHost) call(name string, fn *lua.LFunction, use func(lua.LValue)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	if err := h.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		h.failures++
		if !h.warned[name] {
			h.warned[name] = true
			common.Logger().Warn("script supplier failed; writing zero", "field", name, "error", err)
		}
		return
	}
	v := h.state.Get(-1)
	h.state.Pop(1)
	use(v)
}
