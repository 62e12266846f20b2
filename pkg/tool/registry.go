package tool

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry is the in-memory directory of registered tools, keyed by name.
// Tools are registered at startup and never removed at runtime.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register stores the tool under its declared name. If a tool with the same
// name is already registered it is overwritten with a warning (last
// registration wins, no error).
func (r *Registry) Register(t Tool) {
	name := t.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		log.Warn().Str("tool", name).Msg("Tool already registered, overwriting")
	}

	r.tools[name] = t
	log.Info().Str("tool", name).Msg("Tool registered")
}

// Get returns the tool registered under name, or false if not found.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// All returns a copy of the name-to-tool map.
func (r *Registry) All() map[string]Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make(map[string]Tool, len(r.tools))
	for name, t := range r.tools {
		tools[name] = t
	}
	return tools
}
