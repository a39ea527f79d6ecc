package strategy

import (
	"sort"
	"sync"

	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/utils"
)

// Factory creates a new strategy instance with default parameters.
type Factory func() Strategy

// Registry resolves strategies by name. Every lookup returns a fresh instance so parallel
// runs never share strategy state.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		mu:        sync.RWMutex{},
	}
}

// NewDefaultRegistry returns a registry holding the reference strategies.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(NewRSIReversal)
	_ = registry.Register(NewBollingerReversion)

	return registry
}

func (r *Registry) Register(factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory().Name()
	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// Get creates the named strategy.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", name)
	}

	return factory(), nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ParamsSchema returns the JSON schema of a strategy's parameters. Strategies without
// parameters have an empty schema.
func (r *Registry) ParamsSchema(name string) (string, error) {
	s, err := r.Get(name)
	if err != nil {
		return "", err
	}

	configurable, ok := s.(Configurable)
	if !ok {
		return "{}", nil
	}

	return utils.SchemaJSON(configurable.Params(), name, "Parameters of the "+name+" strategy")
}
