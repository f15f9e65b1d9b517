package hostapi

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Registry holds the factories of all available host APIs
type Registry interface {
	Register(factory Factory) error
	Get(name string) (Factory, bool)
	// List returns the registered factories sorted by name
	List() []Factory
	// CreateSet instantiates the named APIs for one guest
	CreateSet(ctx context.Context, apis []string, config Config) (Set, error)
}

type defaultRegistry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() Registry {
	return &defaultRegistry{
		factories: make(map[string]Factory),
	}
}

func (r *defaultRegistry) Register(factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.Name()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("host API factory %s already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *defaultRegistry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	return factory, ok
}

func (r *defaultRegistry) List() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make([]Factory, 0, len(r.factories))
	for _, factory := range r.factories {
		factories = append(factories, factory)
	}
	sort.Slice(factories, func(i, j int) bool {
		return factories[i].Name() < factories[j].Name()
	})
	return factories
}

func (r *defaultRegistry) CreateSet(ctx context.Context, apis []string, config Config) (Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config = config.withDefaults()
	instances := make(map[string]API, len(apis))

	for _, apiName := range apis {
		factory, ok := r.factories[apiName]
		if !ok {
			closeAll(instances)
			return nil, fmt.Errorf("host API %s not found", apiName)
		}

		api, err := factory.Create(ctx, config)
		if err != nil {
			closeAll(instances)
			return nil, fmt.Errorf("failed to create %s: %w", apiName, err)
		}

		instances[apiName] = api
	}

	return newSet(instances, config), nil
}

func closeAll(apis map[string]API) {
	for _, api := range apis {
		if closer, ok := api.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
