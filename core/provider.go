package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/skekre98/servicekit/registry"
)

// Resolver is handed to factories and used by Resolve. It is implemented by
// Provider and Scope.
type Resolver interface {
	ScopeID() string
	resolve(t reflect.Type) (any, error)
}

// Provider resolves instances from a built Collection. It owns singletons and
// a root scope.
type Provider struct {
	byType map[reflect.Type]Descriptor
	logger *slog.Logger

	mu         sync.Mutex
	singletons map[reflect.Type]any
	owned      []any
	closed     bool

	root *Scope
}

// Build freezes the current registrations into a Provider. When a capability
// is registered more than once the last registration wins.
func (c *Collection) Build() *Provider {
	p := &Provider{
		byType:     make(map[reflect.Type]Descriptor),
		logger:     c.logger,
		singletons: make(map[reflect.Type]any),
	}
	for _, d := range c.Descriptors() {
		p.byType[d.Capability] = d
	}
	p.root = p.newScope()
	return p
}

func (p *Provider) ScopeID() string { return p.root.id }

func (p *Provider) resolve(t reflect.Type) (any, error) { return p.root.resolve(t) }

// NewScope opens a child scope. Scoped instances resolved through it live
// until it is closed.
func (p *Provider) NewScope() *Scope {
	s := p.newScope()
	p.logger.Debug("scope opened", "scope", s.id)
	return s
}

func (p *Provider) newScope() *Scope {
	return &Scope{
		id:        uuid.NewString(),
		p:         p,
		instances: make(map[reflect.Type]any),
	}
}

// Close closes the root scope and then every singleton implementing io.Closer,
// newest first. It is idempotent.
func (p *Provider) Close() error {
	rootErr := p.root.Close()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return rootErr
	}
	p.closed = true
	owned := p.owned
	p.owned = nil
	p.singletons = nil
	p.mu.Unlock()

	return errors.Join(rootErr, closeAll(owned))
}

func (p *Provider) singleton(d Descriptor, chain []reflect.Type) (any, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrScopeClosed
	}
	if v, ok := p.singletons[d.Capability]; ok {
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()

	// Built outside the lock so the factory can resolve other singletons.
	v, err := p.root.build(d, chain)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = closeAll([]any{v})
		return nil, ErrScopeClosed
	}
	if existing, ok := p.singletons[d.Capability]; ok {
		_ = closeAll([]any{v})
		return existing, nil
	}
	p.singletons[d.Capability] = v
	p.owned = append(p.owned, v)
	return v, nil
}

// Scope caches scoped instances and owns every closable transient or scoped
// instance it built.
type Scope struct {
	id string
	p  *Provider

	mu        sync.Mutex
	instances map[reflect.Type]any
	owned     []any
	closed    bool
}

func (s *Scope) ScopeID() string { return s.id }

func (s *Scope) resolve(t reflect.Type) (any, error) { return s.resolveChain(t, nil) }

func (s *Scope) resolveChain(t reflect.Type, chain []reflect.Type) (any, error) {
	if slices.Contains(chain, t) {
		names := make([]string, 0, len(chain)+1)
		for _, c := range chain {
			names = append(names, c.String())
		}
		return nil, &CircularDependencyError{Chain: append(names, t.String())}
	}
	d, ok := s.p.byType[t]
	if !ok {
		return nil, &ServiceNotRegisteredError{Type: t.String()}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScopeClosed
	}
	if v, ok := s.instances[t]; ok && d.Lifetime == Scoped {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	switch d.Lifetime {
	case Singleton:
		return s.p.singleton(d, chain)
	case Scoped, Transient:
		v, err := s.build(d, chain)
		if err != nil {
			return nil, err
		}
		return s.keep(d, v)
	default:
		return nil, fmt.Errorf("resolve %s: unknown lifetime %d", t, d.Lifetime)
	}
}

// keep records v in the scope, preferring an instance cached concurrently.
func (s *Scope) keep(d Descriptor, v any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		_ = closeAll([]any{v})
		return nil, ErrScopeClosed
	}
	if d.Lifetime == Scoped {
		if existing, ok := s.instances[d.Capability]; ok {
			_ = closeAll([]any{v})
			return existing, nil
		}
		s.instances[d.Capability] = v
	}
	if _, ok := v.(io.Closer); ok {
		s.owned = append(s.owned, v)
	}
	return v, nil
}

func (s *Scope) build(d Descriptor, chain []reflect.Type) (any, error) {
	r := &chainResolver{scope: s, chain: append(slices.Clone(chain), d.Capability)}
	v, err := d.Factory(r)
	if err != nil {
		return nil, &InitializationError{Type: d.Capability.String(), Err: err}
	}
	if v == nil {
		return nil, &InitializationError{Type: d.Capability.String(), Err: errors.New("factory returned nil")}
	}
	return v, nil
}

// Close closes owned instances newest first and marks the scope unusable.
// It is idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	owned := s.owned
	s.owned = nil
	s.instances = nil
	s.mu.Unlock()

	s.p.logger.Debug("scope closed", "scope", s.id, "owned", len(owned))
	return closeAll(owned)
}

type chainResolver struct {
	scope *Scope
	chain []reflect.Type
}

func (r *chainResolver) ScopeID() string { return r.scope.id }

func (r *chainResolver) resolve(t reflect.Type) (any, error) {
	return r.scope.resolveChain(t, r.chain)
}

// Resolve returns the instance registered for capability C.
func Resolve[C any](r Resolver) (C, error) {
	var zero C
	t := reflect.TypeFor[C]()
	v, err := r.resolve(t)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(C)
	if !ok {
		return zero, &TypeMismatchError{Expected: t.String(), Got: reflect.TypeOf(v).String()}
	}
	return typed, nil
}

// MustResolve panics when Resolve fails.
func MustResolve[C any](r Resolver) C {
	v, err := Resolve[C](r)
	if err != nil {
		panic(fmt.Errorf("core: resolve %s: %w", registry.TypeName(reflect.TypeFor[C]()), err))
	}
	return v
}

func closeAll(owned []any) error {
	var errs []error
	for i := len(owned) - 1; i >= 0; i-- {
		if c, ok := owned[i].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
