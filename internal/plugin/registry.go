package plugin

import (
	"context"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
)

// Registry manages plugin registration and execution order.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name already exists.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return errors.InternalError("cannot register nil plugin").Build()
	}

	metadata := p.Metadata()
	if err := metadata.Validate(); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid plugin metadata").Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[metadata.Name]; exists {
		return errors.ValidationError("plugin already registered").
			WithContext("plugin", metadata.String()).Build()
	}
	r.plugins[metadata.Name] = p
	return nil
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, errors.NewError(errors.CategoryNotFound, "plugin not found").
			WithContext("plugin", name).Build()
	}
	return p, nil
}

// Has checks if a plugin with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[name]
	return ok
}

// List returns all registered plugins sorted by order, then name.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	result := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		result = append(result, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b Plugin) int {
		ma, mb := a.Metadata(), b.Metadata()
		if ma.Order != mb.Order {
			return ma.Order - mb.Order
		}
		switch {
		case ma.Name < mb.Name:
			return -1
		case ma.Name > mb.Name:
			return 1
		}
		return 0
	})
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// InitAll initializes every plugin in order. It stops at the first failure.
func (r *Registry) InitAll(pctx *PluginContext) error {
	for _, p := range r.List() {
		name := p.Metadata().Name
		if err := p.Init(pctx); err != nil {
			return NewPluginError(name, "init", err)
		}
		pctx.Logger.Debug("Plugin initialized", logfields.Plugin(name))
	}
	return nil
}

// ExecuteAll runs every plugin in order. Each plugin is a build stage for
// metrics. It stops at the first failure or when ctx is canceled.
func (r *Registry) ExecuteAll(ctx context.Context, pctx *PluginContext) error {
	rec := metrics.OrNoop(pctx.Recorder)
	for _, p := range r.List() {
		name := p.Metadata().Name
		if err := ctx.Err(); err != nil {
			rec.IncStageResult(name, metrics.ResultCanceled)
			return err
		}

		start := time.Now()
		err := p.Execute(ctx, pctx)
		elapsed := time.Since(start)
		rec.ObserveStageDuration(name, elapsed)

		if err != nil {
			result := metrics.ResultFatal
			if ctx.Err() != nil {
				result = metrics.ResultCanceled
			}
			rec.IncStageResult(name, result)
			pctx.Logger.Error("Plugin failed", logfields.Plugin(name), logfields.Error(err))
			return NewPluginError(name, "execute", err)
		}
		rec.IncStageResult(name, metrics.ResultSuccess)
		pctx.Logger.Debug("Plugin finished", logfields.Plugin(name),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	}
	return nil
}
