package registry

import (
	"reflect"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/skekre98/servicekit/options"
)

// Builder populates a freshly defaulted configuration value.
type Builder[T any] func(*T) error

// Configure adapts a mutator that cannot fail into a Builder.
func Configure[T any](fn func(*T)) Builder[T] {
	return func(o *T) error {
		if fn != nil {
			fn(o)
		}
		return nil
	}
}

// Slot is one named, typed configuration value.
type Slot struct {
	Type  reflect.Type
	Name  string
	Value any
}

type slotKey struct {
	typ  reflect.Type
	name string
}

// Store maps (type, name) pairs to configuration slots. Slots are write-once:
// a pair can be registered a single time and is never replaced.
type Store struct {
	mu        sync.RWMutex
	slots     map[slotKey]Slot
	validator *validator.Validate
}

func NewStore() *Store {
	return &Store{
		slots:     make(map[slotKey]Slot),
		validator: validator.New(),
	}
}

// Register builds a T and stores it. The name is taken from the value's
// OptionName when set, then from name, then from the type name. The resolved
// name is returned.
//
// Register fails with *DuplicateConfigurationError when the slot exists and
// with *InvalidConfigurationError when the builder or struct validation
// fails. The store is untouched on failure.
func Register[T any](s *Store, name string, build Builder[T]) (string, error) {
	slot, err := buildSlot(s, name, build)
	if err != nil {
		return "", err
	}
	if err := s.insert(slot, nil); err != nil {
		return "", err
	}
	return slot.Name, nil
}

// MustRegister panics on registration error. Useful from init() blocks.
func MustRegister[T any](s *Store, name string, build Builder[T]) string {
	n, err := Register(s, name, build)
	if err != nil {
		panic(err)
	}
	return n
}

// Resolve returns a copy of the value registered for (T, name). An empty name
// means the type name.
func Resolve[T any](s *Store, name string) (T, error) {
	typ := reflect.TypeFor[T]()
	if name == "" {
		name = TypeName(typ)
	}
	v, err := s.lookup(typ, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// ResolveDefault resolves the slot registered for T without an explicit name.
func ResolveDefault[T any](s *Store) (T, error) {
	return Resolve[T](s, "")
}

// Has reports whether a slot exists for (typ, name).
func (s *Store) Has(typ reflect.Type, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[slotKey{typ: typ, name: name}]
	return ok
}

// Len returns the number of slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// Slots returns a snapshot ordered by type name, then slot name.
func (s *Store) Slots() []Slot {
	s.mu.RLock()
	out := make([]Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := TypeName(out[i].Type), TypeName(out[j].Type)
		if ti != tj {
			return ti < tj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) lookup(typ reflect.Type, name string) (any, error) {
	s.mu.RLock()
	slot, ok := s.slots[slotKey{typ: typ, name: name}]
	s.mu.RUnlock()
	if !ok {
		return nil, &ConfigurationNotFoundError{Type: TypeName(typ), Name: name}
	}
	return slot.Value, nil
}

// insert stores slot under the write lock. precheck, when non-nil, runs under
// the same lock before the duplicate check.
func (s *Store) insert(slot Slot, precheck func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if precheck != nil {
		if err := precheck(); err != nil {
			return err
		}
	}
	key := slotKey{typ: slot.Type, name: slot.Name}
	if _, exists := s.slots[key]; exists {
		return &DuplicateConfigurationError{Type: TypeName(slot.Type), Name: slot.Name}
	}
	s.slots[key] = slot
	return nil
}

// buildSlot runs the builder outside any lock so builders may read the store.
func buildSlot[T any](s *Store, name string, build Builder[T]) (Slot, error) {
	typ := reflect.TypeFor[T]()
	v := new(T)
	if d, ok := any(v).(options.Defaulter); ok {
		d.SetDefaults()
	}
	if build != nil {
		if err := build(v); err != nil {
			return Slot{}, &InvalidConfigurationError{Type: TypeName(typ), Name: name, Err: err}
		}
	}

	resolved := resolveName(typ, name, *v)
	if reflect.Indirect(reflect.ValueOf(v)).Kind() == reflect.Struct {
		if err := s.validator.Struct(v); err != nil {
			return Slot{}, &InvalidConfigurationError{Type: TypeName(typ), Name: resolved, Err: err}
		}
	}
	return Slot{Type: typ, Name: resolved, Value: *v}, nil
}

func resolveName(typ reflect.Type, name string, v any) string {
	if named, ok := v.(options.Options); ok {
		if n := named.OptionName(); n != "" {
			return n
		}
	}
	if name != "" {
		return name
	}
	return TypeName(typ)
}

// TypeName returns the bare name of typ, looking through pointers.
func TypeName(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if n := typ.Name(); n != "" {
		return n
	}
	return typ.String()
}
