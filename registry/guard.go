package registry

import (
	"errors"
	"reflect"
	"sync"

	"github.com/skekre98/servicekit/options"
)

var globalType = reflect.TypeFor[options.Global]()

// Guard is the one-shot state machine protecting global configuration setup.
// It moves from uninitialized to initialized exactly once and never back.
type Guard struct {
	mu          sync.Mutex
	store       *Store
	initialized bool
	activeName  string
	activeType  reflect.Type
}

func NewGuard(s *Store) *Guard {
	return &Guard{store: s}
}

// Initialized reports whether global configuration has been set up.
func (g *Guard) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initialized
}

// ActiveName returns the slot name holding the active global configuration,
// or "" before initialization.
func (g *Guard) ActiveName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeName
}

// CheckSafeToRegister fails with *AlreadyInitializedError once the guard has
// been advanced, and with *UnsafeInitializationOrderError if a global
// configuration slot is already present while it has not.
func (g *Guard) CheckSafeToRegister() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.store.mu.RLock()
	defer g.store.mu.RUnlock()
	return g.checkLocked()
}

// checkLocked requires g.mu and at least a read lock on the store.
func (g *Guard) checkLocked() error {
	if g.initialized {
		return &AlreadyInitializedError{Active: g.activeName}
	}
	for _, slot := range g.store.slots {
		if slot.Type.Implements(globalType) {
			return &UnsafeInitializationOrderError{Type: TypeName(slot.Type), Name: slot.Name}
		}
	}
	return nil
}

// Initialize registers the global configuration and advances the guard. The
// safety check, the store insert and the state transition are atomic with
// respect to other registrations; on failure nothing changes. The builder runs
// before the guard is locked and may read the guard and the store.
func Initialize[T options.Global](g *Guard, name string, build Builder[T]) error {
	if g.Initialized() {
		return &AlreadyInitializedError{Active: g.ActiveName()}
	}
	slot, err := buildSlot(g.store, name, build)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.insert(slot, g.checkLocked); err != nil {
		return err
	}

	g.initialized = true
	g.activeName = slot.Name
	g.activeType = slot.Type
	return nil
}

// EnsureInitialized performs the default setup (logging enabled) if nothing
// has initialized the guard yet. It is a no-op afterwards.
func (g *Guard) EnsureInitialized() error {
	if g.Initialized() {
		return nil
	}
	err := Initialize(g, "", Configure(func(o *options.GlobalOptions) {
		o.UseLogger = true
	}))
	var already *AlreadyInitializedError
	if errors.As(err, &already) {
		// a concurrent caller got there first
		return nil
	}
	return err
}

// Global resolves the active global configuration through the recorded name.
func (g *Guard) Global() (options.Global, error) {
	g.mu.Lock()
	ok, typ, name := g.initialized, g.activeType, g.activeName
	g.mu.Unlock()
	if !ok {
		return nil, ErrNotInitialized
	}

	v, err := g.store.lookup(typ, name)
	if err != nil {
		return nil, err
	}
	return v.(options.Global), nil
}
