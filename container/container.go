// Package container provides a keyed, concurrency-safe store of services that
// reports every operation through a configurable logging policy.
package container

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/skekre98/servicekit/core"
	"github.com/skekre98/servicekit/logging"
	"github.com/skekre98/servicekit/metrics"
	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

// Value is the constraint on stored services. Interface types satisfy it.
type Value interface {
	comparable
	core.Service
}

type settings struct {
	name     string
	recorder *metrics.Recorder
}

// Option customizes a container at construction.
type Option func(*settings)

// WithName overrides the default "<Value type>Container" name. The name is
// also the slot options.ContainerOptions are looked up under.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithRecorder counts every action and tracks the entry count.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// Container maps keys to services.
type Container[K cmp.Ordered, V Value] struct {
	name      string
	useLogger bool
	policy    logging.Policy
	logger    *slog.Logger
	recorder  *metrics.Recorder

	mu      sync.RWMutex
	entries map[K]V
	closed  bool
}

var _ core.ServiceContainer = (*Container[string, core.Service])(nil)

// New builds a container. Global configuration is settled first; the
// container's own options are then read from reg under its name. Without
// registered options the global UseLogger flag and logging.DefaultPolicy
// apply.
func New[K cmp.Ordered, V Value](reg *registry.Registry, logger *slog.Logger, opts ...Option) (*Container[K, V], error) {
	if err := reg.Guard().EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("ensure global configuration: %w", err)
	}

	s := settings{name: registry.TypeName(reflect.TypeFor[V]()) + "Container"}
	for _, o := range opts {
		o(&s)
	}

	c := &Container[K, V]{
		name:     s.name,
		policy:   logging.DefaultPolicy(),
		logger:   logger,
		recorder: s.recorder,
		entries:  make(map[K]V),
	}

	cfg, err := registry.Resolve[options.ContainerOptions](reg.Store(), s.name)
	var nf *registry.ConfigurationNotFoundError
	switch {
	case err == nil:
		c.useLogger = cfg.UseLogger
		c.policy = cfg.Logging
	case errors.As(err, &nf):
		global, err := reg.Guard().Global()
		if err != nil {
			return nil, fmt.Errorf("resolve global configuration: %w", err)
		}
		c.useLogger = global.LoggerEnabled()
	default:
		return nil, err
	}

	if err := core.CheckLogger(logger, c.useLogger, s.name); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the container name.
func (c *Container[K, V]) Name() string { return c.name }

func (c *Container[K, V]) ContainerName() string { return c.name }

// UseLogger reports whether operations emit log events.
func (c *Container[K, V]) UseLogger() bool { return c.useLogger }

// Add stores v under k. It returns false when k is already present or the
// container is closed.
func (c *Container[K, V]) Add(k K, v V) bool {
	c.mu.Lock()
	_, exists := c.entries[k]
	ok := !exists && !c.closed
	if ok {
		c.entries[k] = v
	}
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		c.recorder.SetEntries(c.name, n)
	}
	c.LogAction(ok, logging.ActionAdd, "key", k)
	return ok
}

// AnyByKey reports whether k is present.
func (c *Container[K, V]) AnyByKey(k K) bool {
	c.mu.RLock()
	_, ok := c.entries[k]
	c.mu.RUnlock()

	c.LogAction(ok, logging.ActionAny, "key", k)
	return ok
}

// AnyByValue reports whether any entry holds v. Services whose dynamic type
// cannot be compared with == are compared by deep equality.
func (c *Container[K, V]) AnyByValue(v V) bool {
	ok := c.containsValue(v)

	var zero V
	name := "<nil>"
	if v != zero {
		name = v.ServiceName()
	}
	c.LogAction(ok, logging.ActionAny, "value", name)
	return ok
}

// Get returns the service stored under k. A nil service stored under k is
// reported as absent.
func (c *Container[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[k]
	c.mu.RUnlock()

	var zero V
	ok = ok && v != zero
	c.LogAction(ok, logging.ActionGet, "key", k)
	return v, ok
}

// Remove deletes k and reports whether it was present.
func (c *Container[K, V]) Remove(k K) bool {
	c.mu.Lock()
	_, ok := c.entries[k]
	if ok {
		delete(c.entries, k)
	}
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		c.recorder.SetEntries(c.name, n)
	}
	c.LogAction(ok, logging.ActionRemove, "key", k)
	return ok
}

func (c *Container[K, V]) containsValue(v V) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if sameValue(e, v) {
			return true
		}
	}
	return false
}

// sameValue is == when both operands can be compared and deep equality
// otherwise, so a service holding a slice or map never makes it panic.
func sameValue[V comparable](a, b V) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return reflect.DeepEqual(any(a), any(b))
	}
	return a == b
}

// Count returns the number of entries. It is never logged.
func (c *Container[K, V]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the keys in ascending order.
func (c *Container[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// Close drops every entry, closing the ones that implement io.Closer in key
// order. Later calls return nil and Add fails from then on.
func (c *Container[K, V]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	entries := c.entries
	c.entries = make(map[K]V)
	c.mu.Unlock()

	var errs []error
	for _, k := range slices.Sorted(maps.Keys(entries)) {
		if cl, ok := any(entries[k]).(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %v: %w", k, err))
			}
		}
	}
	c.recorder.Forget(c.name)
	if c.useLogger {
		c.logger.Debug("container closed", "container", c.name, "entries", len(entries))
	}
	return errors.Join(errs...)
}

// LogAction emits the policy message for action and its outcome. Metrics are
// recorded even when logging is off.
func (c *Container[K, V]) LogAction(success bool, action logging.Action, args ...any) {
	outcome := logging.OutcomeOf(success)
	c.recorder.Observe(c.name, action.String(), outcome.String())

	if !c.useLogger {
		return
	}
	msg, ok := c.policy.Resolve(action, outcome)
	if !ok || msg.Template == "" {
		return
	}
	attrs := append([]any{
		"container", c.name,
		"action", action.String(),
		"success", success,
	}, args...)
	c.logger.Log(context.Background(), msg.Level, c.policy.Format(msg.Template, c.name), attrs...)
}
