package tools

import (
	"fmt"
	"sync"
)

// Registry holds the fixed tool set. Registration happens once at startup;
// afterwards the registry is effectively immutable and safe for concurrent
// reads. List preserves registration order so tool schemas are always
// presented to the reasoning service in a stable order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Tool),
	}
}

// Register adds a tool. Names are unique across the registry.
func (r *Registry) Register(tool Tool) error {
	name := tool.GetName()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.entries[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.entries[name]
	return tool, exists
}

// List returns the schemas of all tools in registration order.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.entries[name].GetInfo())
	}
	return infos
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
