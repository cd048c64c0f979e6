package scripting

// ScriptHostBuilderOption is a functional option applied to a script host during construction via NewScriptHost.
type ScriptHostBuilderOption func(*scriptHost)

// WithGlobals defines numeric Lua globals before any script runs.
//
// Parameters:
//   - globals: global names and values
//
// Returns:
//   - ScriptHostBuilderOption: a function that applies the globals to a host
func WithGlobals(globals map[string]float64) ScriptHostBuilderOption {
	return func(h *scriptHost) {
		if h.globals == nil {
			h.globals = make(map[string]float64, len(globals))
		}
		for k, v := range globals {
			h.globals[k] = v
		}
	}
}
