package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

// Factory builds an instance, resolving its dependencies through r.
type Factory func(r Resolver) (any, error)

// Descriptor is one registration: a capability served by an implementation
// with a lifetime.
type Descriptor struct {
	Capability     reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime
	// OptionsName is the registry slot holding the implementation's options,
	// if any were registered with it.
	OptionsName string
	Factory     Factory
}

// RegisterOption customizes a registration.
type RegisterOption struct {
	apply func(s *registry.Store, d *Descriptor) error
}

// WithOptions registers per-service options alongside the descriptor, named
// after the implementation type unless the options name themselves.
func WithOptions[O options.Options](build registry.Builder[O]) RegisterOption {
	return RegisterOption{apply: func(s *registry.Store, d *Descriptor) error {
		name, err := registry.Register(s, registry.TypeName(d.Implementation), build)
		if err != nil {
			return err
		}
		d.OptionsName = name
		return nil
	}}
}

// Collection accumulates service descriptors. Every registration first makes
// sure global configuration is settled, then validates the type relationship.
type Collection struct {
	mu          sync.Mutex
	reg         *registry.Registry
	descriptors []Descriptor
	logger      *slog.Logger
}

func NewCollection(reg *registry.Registry, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = discardLogger()
	}
	return &Collection{reg: reg, logger: logger}
}

// Registry returns the registry registrations are recorded in.
func (c *Collection) Registry() *registry.Registry { return c.reg }

// Add registers a descriptor whose capability must satisfy Service.
func (c *Collection) Add(d Descriptor, opts ...RegisterOption) error {
	return c.add(d, serviceMarker, opts)
}

// AddContainerDescriptor registers a descriptor whose capability must satisfy
// ServiceContainer.
func (c *Collection) AddContainerDescriptor(d Descriptor, opts ...RegisterOption) error {
	return c.add(d, containerMarker, opts)
}

// Descriptors returns a copy of the registrations in order.
func (c *Collection) Descriptors() []Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Descriptor(nil), c.descriptors...)
}

func (c *Collection) add(d Descriptor, marker reflect.Type, opts []RegisterOption) error {
	if err := c.reg.Guard().EnsureInitialized(); err != nil {
		return fmt.Errorf("ensure global configuration: %w", err)
	}
	if err := Validate(marker, d.Capability, d.Implementation); err != nil {
		return err
	}
	if d.Factory == nil {
		return fmt.Errorf("register %s: nil factory", d.Capability)
	}
	for _, o := range opts {
		if err := o.apply(c.reg.Store(), &d); err != nil {
			return fmt.Errorf("register %s options: %w", d.Implementation, err)
		}
	}

	c.mu.Lock()
	c.descriptors = append(c.descriptors, d)
	c.mu.Unlock()

	c.logger.Debug("service registered",
		"capability", d.Capability.String(),
		"implementation", d.Implementation.String(),
		"lifetime", d.Lifetime.String(),
		"options", d.OptionsName,
	)
	return nil
}

// AddTransient registers I as a transient implementation of C.
func AddTransient[C Service, I any](c *Collection, f func(Resolver) (I, error), opts ...RegisterOption) error {
	return c.add(descriptorFor[C](Transient, f), serviceMarker, opts)
}

// AddScoped registers I as a scoped implementation of C.
func AddScoped[C Service, I any](c *Collection, f func(Resolver) (I, error), opts ...RegisterOption) error {
	return c.add(descriptorFor[C](Scoped, f), serviceMarker, opts)
}

// AddSingleton registers I as a singleton implementation of C.
func AddSingleton[C Service, I any](c *Collection, f func(Resolver) (I, error), opts ...RegisterOption) error {
	return c.add(descriptorFor[C](Singleton, f), serviceMarker, opts)
}

// AddContainer registers a keyed service container. Containers are always
// singletons.
func AddContainer[C ServiceContainer, I any](c *Collection, f func(Resolver) (I, error), opts ...RegisterOption) error {
	return c.add(descriptorFor[C](Singleton, f), containerMarker, opts)
}

func descriptorFor[C any, I any](lt Lifetime, f func(Resolver) (I, error)) Descriptor {
	d := Descriptor{
		Capability:     reflect.TypeFor[C](),
		Implementation: reflect.TypeFor[I](),
		Lifetime:       lt,
	}
	if f != nil {
		d.Factory = func(r Resolver) (any, error) {
			v, err := f(r)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return d
}
