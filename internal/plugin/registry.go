package plugin

import (
	"fmt"
	"sync"
)

// Registry manages plugin registration and lookup.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	plugins map[string]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name already exists.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}

	r.plugins[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	return p, nil
}

// List returns all registered plugins in registration order.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// Configurers returns registered plugins implementing Configurer, in order.
func (r *Registry) Configurers() []Configurer {
	var result []Configurer
	for _, p := range r.List() {
		if c, ok := p.(Configurer); ok {
			result = append(result, c)
		}
	}
	return result
}

// FilesCollectors returns registered plugins implementing FilesCollector, in order.
func (r *Registry) FilesCollectors() []FilesCollector {
	var result []FilesCollector
	for _, p := range r.List() {
		if f, ok := p.(FilesCollector); ok {
			result = append(result, f)
		}
	}
	return result
}

// ServeHooks returns registered plugins implementing ServeHook, in order.
func (r *Registry) ServeHooks() []ServeHook {
	var result []ServeHook
	for _, p := range r.List() {
		if s, ok := p.(ServeHook); ok {
			result = append(result, s)
		}
	}
	return result
}
