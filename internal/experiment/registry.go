package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/integrators"
)

// IntegratorFactory builds a fresh integrator. Integrators keep scratch
// buffers, so every run gets its own instance.
type IntegratorFactory func(cfg dynamo.Config) dynamo.Integrator

type Registry struct {
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]IntegratorFactory),
	}

	r.integrators["rk45"] = func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK45(cfg) }
	r.integrators["rk4"] = func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK4(cfg) }

	return r
}

func (r *Registry) Register(name string, f IntegratorFactory) {
	r.integrators[name] = f
}

func (r *Registry) GetIntegrator(name string, cfg dynamo.Config) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrInvalidInput, name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
