package visitor

import (
	"fmt"
	"sort"

	"github.com/psh-go/psh/ast"
)

// Kind distinguishes a Step that rewrites the tree from one that only
// collects data over it, mirroring visitor_pipeline.py's
// 'transformer'/'analyzer' type tag (computed there via
// issubclass(visitor_class, ASTTransformer)).
type Kind string

const (
	KindAnalyzer    Kind = "analyzer"
	KindTransformer Kind = "transformer"
)

// Outcome is what running a Step produces: a rewritten tree for a
// transformer step, or an opaque report/issue value for an analyzer
// step, mirroring the get_report/get_metrics/issues duck-typing
// VisitorPipeline.run performs on whatever the visitor exposes.
type Outcome struct {
	Kind   Kind
	AST    *ast.TopLevel
	Report any
}

// Step is one pipeline-addressable unit of work over a parsed script.
type Step interface {
	Kind() Kind
	Run(top *ast.TopLevel) Outcome
}

// Factory builds a fresh Step instance, the Go analogue of registering
// a visitor *class* rather than a shared instance.
type Factory func() Step

type registryEntry struct {
	factory     Factory
	description string
	category    string
}

// Registry is a named catalogue of Step factories, grounded on
// VisitorRegistry.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a named factory. Re-registering an existing name is an
// error, mirroring VisitorRegistry.register's ValueError.
func (r *Registry) Register(name string, factory Factory, description, category string) error {
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("visitor %q is already registered", name)
	}
	if category == "" {
		category = "general"
	}
	r.entries[name] = registryEntry{factory: factory, description: description, category: category}
	return nil
}

// Get looks up a factory by name.
func (r *Registry) Get(name string) (Factory, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("no visitor registered with name %q", name)
	}
	return e.factory, nil
}

// Info describes one registered entry, mirroring list_visitors' dicts.
type Info struct {
	Name        string
	Description string
	Category    string
	Kind        Kind
}

// List returns registered entries, optionally filtered by category,
// sorted by (category, name) like list_visitors.
func (r *Registry) List(category string) []Info {
	var out []Info
	for name, e := range r.entries {
		if category != "" && e.category != category {
			continue
		}
		out = append(out, Info{
			Name:        name,
			Description: e.description,
			Category:    e.category,
			Kind:        e.factory().Kind(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories returns the sorted set of distinct categories in use.
func (r *Registry) Categories() []string {
	seen := map[string]bool{}
	for _, e := range r.entries {
		seen[e.category] = true
	}
	var out []string
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
