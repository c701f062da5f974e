package bgtl

import (
	"sort"
	"sync"
)

// Registry holds the templates compiled from a Bundle, keyed by name. A
// watching Bundle swaps in recompiled templates, so lookups take a lock.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func newRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Template returns the template of the given name, or nil.
func (r *Registry) Template(name string) *Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[name]
}

// Names returns the sorted template names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names = make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders the named template.
func (r *Registry) Render(name string, context interface{}) (string, error) {
	var t = r.Template(name)
	if t == nil {
		return "", &NotFoundError{name}
	}
	return t.Render(context)
}

// replace swaps in the templates of other.
func (r *Registry) replace(other *Registry) {
	other.mu.RLock()
	var templates = other.templates
	other.mu.RUnlock()
	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()
}

// NotFoundError is returned when rendering a template the registry lacks.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "bgtl: template " + e.Name + " not found"
}
