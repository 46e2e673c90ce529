package pico

import (
	"reflect"
	"sync"

	"github.com/junioryono/pico/internal/reflection"
)

// ComponentAdapter produces instances of one component and reports its
// dependencies. Adapters are owned by exactly one container once registered.
type ComponentAdapter interface {
	// Key returns the key the component is registered under.
	Key() any

	// Implementation returns the concrete type of the instances produced.
	Implementation() reflect.Type

	// Instance returns an instance of the component, resolving its
	// dependencies from c.
	Instance(c Container) (any, error)

	// Verify checks that every dependency of the component can be satisfied by c.
	Verify(c Container) error

	// Container returns the container the adapter is registered in.
	Container() Container

	// SetContainer is called by the container on registration.
	SetContainer(c Container)
}

// baseAdapter holds the state shared by all adapters.
type baseAdapter struct {
	key  any
	impl reflect.Type

	mu        sync.RWMutex
	container Container
}

func newBaseAdapter(key any, impl reflect.Type) (*baseAdapter, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if impl == nil {
		return nil, RegistrationError{Key: key, Cause: ErrImplementationNil}
	}
	if !reflection.IsConcrete(impl) {
		return nil, NotConcreteError{Implementation: impl}
	}
	if t, ok := key.(reflect.Type); ok && !impl.AssignableTo(t) {
		return nil, AssignabilityError{Key: t, Implementation: impl}
	}

	return &baseAdapter{key: key, impl: impl}, nil
}

func checkKey(key any) error {
	if key == nil {
		return RegistrationError{Cause: ErrKeyNil}
	}
	if !reflect.TypeOf(key).Comparable() {
		return RegistrationError{Key: reflect.TypeOf(key), Cause: ErrKeyNotComparable}
	}
	return nil
}

func (a *baseAdapter) Key() any {
	return a.key
}

func (a *baseAdapter) Implementation() reflect.Type {
	return a.impl
}

func (a *baseAdapter) Container() Container {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.container
}

func (a *baseAdapter) SetContainer(c Container) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.container = c
}

// InstanceAdapter always returns the instance it was created with.
type InstanceAdapter struct {
	*baseAdapter
	instance any
}

var _ ComponentAdapter = (*InstanceAdapter)(nil)

// NewInstanceAdapter creates an adapter for an already constructed instance.
func NewInstanceAdapter(key, instance any) (*InstanceAdapter, error) {
	if instance == nil {
		return nil, RegistrationError{Key: key, Cause: ErrInstanceNil}
	}

	base, err := newBaseAdapter(key, reflect.TypeOf(instance))
	if err != nil {
		return nil, err
	}

	return &InstanceAdapter{baseAdapter: base, instance: instance}, nil
}

func (a *InstanceAdapter) Instance(Container) (any, error) {
	return a.instance, nil
}

func (a *InstanceAdapter) Verify(Container) error {
	return nil
}
