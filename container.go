package pico

import (
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Container resolves components and drives their lifecycle.
type Container interface {
	// ID returns the unique identifier of this container instance.
	ID() string

	// Instance returns the component registered under key in this container
	// or one of its ancestors.
	Instance(key any) (any, error)

	// InstanceOfType returns the single component assignable to t.
	InstanceOfType(t reflect.Type) (any, error)

	// Instances instantiates every local component and returns them in
	// instantiation order.
	Instances() ([]any, error)

	// InstancesOfType instantiates every local component assignable to t and
	// returns them in instantiation order.
	InstancesOfType(t reflect.Type) ([]any, error)

	// Adapter returns the adapter registered under key in this container or
	// one of its ancestors, or nil.
	Adapter(key any) ComponentAdapter

	// AdapterOfType returns the adapter for t, or nil when nothing matches.
	// It fails when more than one local adapter is assignable to t.
	AdapterOfType(t reflect.Type) (ComponentAdapter, error)

	// Adapters returns the local adapters in registration order.
	Adapters() []ComponentAdapter

	// AdaptersOfType returns the local adapters assignable to t.
	AdaptersOfType(t reflect.Type) []ComponentAdapter

	// Parent returns the parent container, or nil.
	Parent() Container

	// Verify checks that every local component can be satisfied.
	Verify() error

	Start() error
	Stop() error
	Dispose() error
}

// MutableContainer is a Container that accepts registrations and children.
type MutableContainer interface {
	Container

	RegisterComponentImplementation(key, impl any, params ...Parameter) (ComponentAdapter, error)
	RegisterImplementation(impl any) (ComponentAdapter, error)
	RegisterComponentInstance(key, instance any) (ComponentAdapter, error)
	RegisterInstance(instance any) (ComponentAdapter, error)
	RegisterComponent(adapter ComponentAdapter) (ComponentAdapter, error)
	UnregisterComponent(key any) ComponentAdapter
	UnregisterComponentByInstance(instance any) (ComponentAdapter, error)

	MakeChildContainer() MutableContainer
	AddChildContainer(child Container) bool
	RemoveChildContainer(child Container) bool
}

type containerState int

const (
	stateCreated containerState = iota
	stateStarted
	stateStopped
	stateDisposed
)

// DefaultContainer is the standard MutableContainer.
//
// Registration and lookup are safe for concurrent use. Lifecycle operations
// are serialized per container.
type DefaultContainer struct {
	id        string
	parent    Container
	factory   ComponentAdapterFactory
	lifecycle LifecycleManager
	monitor   ComponentMonitor

	mu       sync.RWMutex
	adapters []ComponentAdapter
	keyed    map[any]ComponentAdapter
	ordered  []ComponentAdapter
	children []Container

	lifecycleMu sync.Mutex
	state       containerState
}

var _ MutableContainer = (*DefaultContainer)(nil)

// New creates an empty container.
func New(opts ...ContainerOption) *DefaultContainer {
	options := newContainerOptions(opts)

	return &DefaultContainer{
		id:        uuid.NewString(),
		parent:    options.parent,
		factory:   options.factory,
		lifecycle: options.lifecycle,
		monitor:   options.monitor,
		keyed:     make(map[any]ComponentAdapter),
	}
}

// NewCaching creates a container whose implementations are always cached.
// A nil delegate means constructor injection.
func NewCaching(delegate ComponentAdapterFactory, opts ...ContainerOption) *DefaultContainer {
	return New(append(slices.Clone(opts), WithFactory(NewCachingFactory(delegate)))...)
}

func (c *DefaultContainer) ID() string {
	return c.id
}

func (c *DefaultContainer) Parent() Container {
	return c.parent
}

// ========================================
// Registration
// ========================================

// RegisterComponent registers adapter under its own key.
func (c *DefaultContainer) RegisterComponent(adapter ComponentAdapter) (ComponentAdapter, error) {
	if adapter == nil {
		return nil, RegistrationError{Cause: ErrAdapterNil}
	}

	key := adapter.Key()
	if err := checkKey(key); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.keyed[key]; exists {
		c.mu.Unlock()
		return nil, DuplicateKeyError{Key: key}
	}
	c.adapters = append(c.adapters, adapter)
	c.keyed[key] = adapter
	c.mu.Unlock()

	adapter.SetContainer(c)
	return adapter, nil
}

// RegisterComponentImplementation registers impl under key using the
// container's adapter factory. impl is a constructor function, an
// *Implementation or a reflect.Type.
func (c *DefaultContainer) RegisterComponentImplementation(key, impl any, params ...Parameter) (ComponentAdapter, error) {
	adapter, err := c.factory.CreateComponentAdapter(key, impl, params)
	if err != nil {
		return nil, err
	}
	return c.RegisterComponent(adapter)
}

// RegisterImplementation registers impl keyed by the type it produces.
func (c *DefaultContainer) RegisterImplementation(impl any) (ComponentAdapter, error) {
	implementation, err := asImplementation(impl)
	if err != nil {
		return nil, registrationFailure(nil, err)
	}
	return c.RegisterComponentImplementation(implementation.Type(), implementation)
}

// RegisterComponentInstance registers a pre-built instance under key.
func (c *DefaultContainer) RegisterComponentInstance(key, instance any) (ComponentAdapter, error) {
	if self, ok := instance.(*DefaultContainer); ok && self == c {
		return nil, RegistrationError{Key: key, Cause: ErrSelfRegistration}
	}

	adapter, err := NewInstanceAdapter(key, instance)
	if err != nil {
		return nil, err
	}
	return c.RegisterComponent(adapter)
}

// RegisterInstance registers a pre-built instance keyed by its dynamic type.
func (c *DefaultContainer) RegisterInstance(instance any) (ComponentAdapter, error) {
	if instance == nil {
		return nil, RegistrationError{Cause: ErrInstanceNil}
	}
	return c.RegisterComponentInstance(reflect.TypeOf(instance), instance)
}

// UnregisterComponent removes the adapter registered under key and returns
// it, or nil if key is not registered locally.
func (c *DefaultContainer) UnregisterComponent(key any) ComponentAdapter {
	if checkKey(key) != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	adapter, ok := c.keyed[key]
	if !ok {
		return nil
	}

	delete(c.keyed, key)
	c.adapters = removeAdapter(c.adapters, adapter)
	c.ordered = removeAdapter(c.ordered, adapter)
	return adapter
}

// UnregisterComponentByInstance removes the local component whose instance
// is instance. Components are instantiated as needed to compare them.
func (c *DefaultContainer) UnregisterComponentByInstance(instance any) (ComponentAdapter, error) {
	for _, adapter := range c.Adapters() {
		current, err := c.localInstance(adapter)
		if err != nil {
			return nil, err
		}
		if sameInstance(current, instance) {
			return c.UnregisterComponent(adapter.Key()), nil
		}
	}
	return nil, nil
}

// ========================================
// Lookup
// ========================================

func (c *DefaultContainer) Adapter(key any) ComponentAdapter {
	if checkKey(key) != nil {
		return nil
	}

	c.mu.RLock()
	adapter := c.keyed[key]
	c.mu.RUnlock()

	if adapter == nil && c.parent != nil {
		return c.parent.Adapter(key)
	}
	return adapter
}

func (c *DefaultContainer) AdapterOfType(t reflect.Type) (ComponentAdapter, error) {
	if t == nil {
		return nil, nil
	}
	if byKey := c.Adapter(t); byKey != nil {
		return byKey, nil
	}

	found := c.AdaptersOfType(t)
	switch len(found) {
	case 0:
		if c.parent != nil {
			return c.parent.AdapterOfType(t)
		}
		return nil, nil
	case 1:
		return found[0], nil
	default:
		candidates := make([]reflect.Type, len(found))
		for i, a := range found {
			candidates[i] = a.Implementation()
		}
		return nil, AmbiguousResolutionError{AmbiguousType: t, Candidates: candidates}
	}
}

func (c *DefaultContainer) Adapters() []ComponentAdapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.adapters)
}

func (c *DefaultContainer) AdaptersOfType(t reflect.Type) []ComponentAdapter {
	found := make([]ComponentAdapter, 0)
	if t == nil {
		return found
	}
	for _, a := range c.Adapters() {
		if a.Implementation().AssignableTo(t) {
			found = append(found, a)
		}
	}
	return found
}

// ========================================
// Instantiation
// ========================================

func (c *DefaultContainer) Instance(key any) (any, error) {
	adapter := c.Adapter(key)
	if adapter == nil {
		return nil, ComponentNotFoundError{Key: key}
	}
	return c.instanceFrom(adapter)
}

func (c *DefaultContainer) InstanceOfType(t reflect.Type) (any, error) {
	adapter, err := c.AdapterOfType(t)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, ComponentNotFoundError{Key: t}
	}
	return c.instanceFrom(adapter)
}

func (c *DefaultContainer) Instances() ([]any, error) {
	return c.instancesOf(c.Adapters())
}

func (c *DefaultContainer) InstancesOfType(t reflect.Type) ([]any, error) {
	return c.instancesOf(c.AdaptersOfType(t))
}

// instancesOf instantiates adapters and returns their instances in
// instantiation order.
func (c *DefaultContainer) instancesOf(adapters []ComponentAdapter) ([]any, error) {
	instances := make(map[ComponentAdapter]any, len(adapters))
	for _, adapter := range adapters {
		instance, err := c.localInstance(adapter)
		if err != nil {
			return nil, err
		}
		instances[adapter] = instance
	}

	c.mu.RLock()
	ordered := slices.Clone(c.ordered)
	c.mu.RUnlock()

	result := make([]any, 0, len(instances))
	for _, adapter := range ordered {
		if instance, ok := instances[adapter]; ok {
			result = append(result, instance)
		}
	}
	return result, nil
}

// instanceFrom builds adapter's instance in the container owning it. Adapters
// of ancestors are resolved by the ancestor so their dependencies never come
// from this container.
func (c *DefaultContainer) instanceFrom(adapter ComponentAdapter) (any, error) {
	if c.isLocal(adapter) {
		return c.localInstance(adapter)
	}
	if c.parent != nil {
		return c.parent.Instance(adapter.Key())
	}
	return nil, ComponentNotFoundError{Key: adapter.Key()}
}

func (c *DefaultContainer) localInstance(adapter ComponentAdapter) (any, error) {
	instance, err := adapter.Instance(c)
	if err != nil {
		return nil, err
	}
	c.addOrderedAdapter(adapter)
	return instance, nil
}

func (c *DefaultContainer) isLocal(adapter ComponentAdapter) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyed[adapter.Key()] == adapter
}

// addOrderedAdapter records the first successful instantiation of a local adapter.
func (c *DefaultContainer) addOrderedAdapter(adapter ComponentAdapter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keyed[adapter.Key()] != adapter || slices.Contains(c.ordered, adapter) {
		return
	}
	c.ordered = append(c.ordered, adapter)
}

// Verify verifies every local adapter and reports all failures.
func (c *DefaultContainer) Verify() error {
	var errs []error
	for _, adapter := range c.Adapters() {
		if err := adapter.Verify(c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return VerificationError{Errors: errs}
	}
	return nil
}

// ========================================
// Children
// ========================================

// MakeChildContainer creates a child sharing this container's factory,
// lifecycle manager and monitor, and attaches it.
func (c *DefaultContainer) MakeChildContainer() MutableContainer {
	child := New(
		WithParent(c),
		WithFactory(c.factory),
		WithLifecycleManager(c.lifecycle),
		WithMonitor(c.monitor),
	)
	c.AddChildContainer(child)
	return child
}

// AddChildContainer attaches child so lifecycle calls cascade to it.
// It reports false if child is already attached.
func (c *DefaultContainer) AddChildContainer(child Container) bool {
	if child == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.children, child) {
		return false
	}
	c.children = append(c.children, child)
	return true
}

// RemoveChildContainer detaches child. The child keeps its parent.
func (c *DefaultContainer) RemoveChildContainer(child Container) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.children, child)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	return true
}

func (c *DefaultContainer) childContainers() []Container {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.children)
}

// ========================================
// Lifecycle
// ========================================

// Start starts this container's components and then each attached child.
func (c *DefaultContainer) Start() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	switch c.state {
	case stateDisposed:
		return StateError{Operation: "start", Cause: ErrDisposed}
	case stateStarted:
		return StateError{Operation: "start", Cause: ErrAlreadyStarted}
	}

	if err := c.lifecycle.Start(c); err != nil {
		return err
	}
	c.state = stateStarted

	for _, child := range c.childContainers() {
		if err := child.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops each attached child and then this container's components.
func (c *DefaultContainer) Stop() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	switch c.state {
	case stateDisposed:
		return StateError{Operation: "stop", Cause: ErrDisposed}
	case stateCreated, stateStopped:
		return StateError{Operation: "stop", Cause: ErrNotStarted}
	}

	var errs []error
	for _, child := range c.childContainers() {
		if err := child.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.lifecycle.Stop(c); err != nil {
		errs = append(errs, err)
	}
	c.state = stateStopped

	return lifecycleFailure("stop", errs)
}

// Dispose disposes each attached child and then this container's components.
// A disposed container cannot be started, stopped or disposed again.
func (c *DefaultContainer) Dispose() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.state == stateDisposed {
		return StateError{Operation: "dispose", Cause: ErrDisposed}
	}

	var errs []error
	for _, child := range c.childContainers() {
		if err := child.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.lifecycle.Dispose(c); err != nil {
		errs = append(errs, err)
	}
	c.state = stateDisposed

	return lifecycleFailure("dispose", errs)
}

func removeAdapter(adapters []ComponentAdapter, adapter ComponentAdapter) []ComponentAdapter {
	if i := slices.Index(adapters, adapter); i >= 0 {
		return slices.Delete(adapters, i, i+1)
	}
	return adapters
}

// sameInstance compares instances by identity for reference kinds and by
// equality for comparable values.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ta.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}

	if !ta.Comparable() {
		return false
	}
	return a == b
}
