package module

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// Metadata describes a module for listing and logging.
type Metadata struct {
	// Name is the identifier used to select the module on the CLI.
	Name string

	// Version is the module's own version string.
	Version string

	// Description is a one-line summary shown in module listings.
	Description string

	// Author credits the module's author.
	Author string

	// Category groups modules in listings (e.g. "security").
	Category string
}

// Result holds a module's structured findings, keyed by finding name.
type Result map[string]any

// Module is the contract for post-crawl analysis. Modules run after the
// crawl completes and see the full aggregate result.
//
// Design decision: an interface rather than function types because modules
// carry configuration state (output directories) and Metadata serves
// listings and logging, the same reasoning as the crawl's other pluggable
// seams.
type Module interface {
	// Metadata returns the module's descriptive metadata.
	Metadata() Metadata

	// Run executes the module against the completed crawl. A failing
	// module returns an error; it must not panic and must not mutate the
	// crawl data.
	Run(ctx context.Context, crawl *model.CrawlContext) (Result, error)
}

// Registry holds the available modules and runs a selection of them in
// sequence with per-module fault containment.
type Registry struct {
	modules map[string]Module
	order   []string
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger modules report through.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty module registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		modules: make(map[string]Module),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a module under its metadata name. Re-registering a name
// replaces the previous module.
func (r *Registry) Register(m Module) {
	name := m.Metadata().Name
	if _, exists := r.modules[name]; !exists {
		r.order = append(r.order, name)
	}
	r.modules[name] = m
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Lookup returns the module registered under the name.
func (r *Registry) Lookup(name string) (Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Run executes the named modules in the order given and returns their
// results keyed by module name. A failing or panicking module is logged
// and skipped; one bad module never blocks the others. An unknown name
// is an error since it signals a CLI typo rather than a runtime fault.
func (r *Registry) Run(ctx context.Context, names []string, crawl *model.CrawlContext) (map[string]Result, error) {
	for _, name := range names {
		if _, ok := r.modules[name]; !ok {
			return nil, fmt.Errorf("unknown module %q (available: %v)", name, r.Names())
		}
	}

	results := make(map[string]Result)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("module run cancelled", "module", name, "reason", err)
			return results, err
		}

		result, err := r.runOne(ctx, r.modules[name], crawl)
		if err != nil {
			r.logger.Error("module failed", "module", name, "error", err)
			continue
		}
		results[name] = result
	}
	return results, nil
}

// runOne executes a single module, converting a panic into an error.
func (r *Registry) runOne(ctx context.Context, m Module, crawl *model.CrawlContext) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("module panic: %v", rec)
		}
	}()

	meta := m.Metadata()
	r.logger.Info("running module",
		"module", meta.Name,
		"version", meta.Version,
		"category", meta.Category)
	return m.Run(ctx, crawl)
}

// sortedKeys returns a map's keys in sorted order, shared by the modules
// for deterministic output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
