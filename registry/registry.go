// Package registry holds named configuration for a process and guards the
// one-time setup of its global configuration.
//
// A Registry replaces ambient process state: bootstrap code creates one and
// passes it to everything that registers or resolves configuration, so tests
// can run against isolated instances in parallel.
//
// Typical usage:
//
//	reg := registry.New()
//	err := registry.Initialize(reg.Guard(), "app", registry.Configure(func(o *options.GlobalOptions) {
//	    o.UseLogger = true
//	}))
//	...
//	_, err = registry.Register(reg.Store(), "Users", registry.Configure(func(o *options.ContainerOptions) {
//	    o.UseLogger = false
//	}))
package registry

// Registry is the process-lifetime context: one store and the guard over it.
type Registry struct {
	store *Store
	guard *Guard
}

func New() *Registry {
	s := NewStore()
	return &Registry{store: s, guard: NewGuard(s)}
}

func (r *Registry) Store() *Store { return r.store }
func (r *Registry) Guard() *Guard { return r.guard }
