package router

import (
	"fmt"
	"log"
	"sort"
)

// Registry holds the process-wide set of tool services. It is populated
// once at startup and treated as read-only afterwards, so any number of
// concurrent dispatches may share it without locking.
type Registry struct {
	services map[string]Service
	order    []string
	sealed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// Register adds a service under its descriptor name. Re-registration under
// an existing name replaces the prior entry. Register panics after Seal:
// the routing hot path assumes an immutable registry.
func (rg *Registry) Register(svc Service) {
	if rg.sealed {
		panic("router: Register called on sealed registry")
	}
	name := svc.Descriptor().Name
	if _, exists := rg.services[name]; !exists {
		rg.order = append(rg.order, name)
	}
	rg.services[name] = svc
	log.Printf("📋 Registered tool service: %s (enabled=%v)", name, svc.Descriptor().Enabled)
}

// Seal marks initialization complete. After Seal the registry is immutable.
func (rg *Registry) Seal() { rg.sealed = true }

// Enabled returns the enabled services in registration order.
func (rg *Registry) Enabled() []Service {
	out := make([]Service, 0, len(rg.order))
	for _, name := range rg.order {
		svc := rg.services[name]
		if svc.Descriptor().Enabled {
			out = append(out, svc)
		}
	}
	return out
}

// All returns every registered service in registration order, including
// disabled ones. Used by the admin surface and the MCP server.
func (rg *Registry) All() []Service {
	out := make([]Service, 0, len(rg.order))
	for _, name := range rg.order {
		out = append(out, rg.services[name])
	}
	return out
}

// Get looks a service up by name.
func (rg *Registry) Get(name string) (Service, error) {
	svc, ok := rg.services[name]
	if !ok {
		return nil, fmt.Errorf("service %q not registered", name)
	}
	return svc, nil
}

// Len returns the number of registered services.
func (rg *Registry) Len() int { return len(rg.services) }

// Names returns the sorted registered names.
func (rg *Registry) Names() []string {
	names := make([]string, 0, len(rg.order))
	names = append(names, rg.order...)
	sort.Strings(names)
	return names
}
