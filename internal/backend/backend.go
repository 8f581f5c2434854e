// Package backend defines the contract between the compiler and the code
// generators that turn a compiled page into target source.
package backend

import (
	"fmt"
	"sort"
	"sync"

	"demomark/internal/emit"
)

// Page is one compiled document bound to a component name.
type Page struct {
	Name   string
	Source string // document path, for generated headers
	Meta   map[string]string
	Body   emit.Body
	Demos  []emit.DemoEntry
}

// Options carries the generator settings a project may override.
type Options struct {
	Package    string // Go package of generated files
	ViewImport string // import path of the view API
}

// Backend generates one output file per page.
type Backend interface {
	Name() string
	Ext() string
	Generate(page Page) ([]byte, error)
}

// Factory builds a backend for a set of options.
type Factory func(opts Options) Backend

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a backend available under name. Registering a name twice
// panics.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	registry[name] = f
}

// Lookup returns the backend registered under name.
func Lookup(name string, opts Options) (Backend, error) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, Names())
	}
	return f(opts), nil
}

// Names lists registered backends, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Title returns the page's display title: meta "title", else the name.
func (p Page) Title() string {
	if t := p.Meta["title"]; t != "" {
		return t
	}
	return p.Name
}
