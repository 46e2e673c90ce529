package pico

import (
	"reflect"
	"sync"
)

// DecoratingAdapter forwards every call to a wrapped adapter. Embed it to
// decorate only some of the behavior.
type DecoratingAdapter struct {
	delegate ComponentAdapter
}

var _ ComponentAdapter = (*DecoratingAdapter)(nil)

// NewDecoratingAdapter wraps delegate.
func NewDecoratingAdapter(delegate ComponentAdapter) *DecoratingAdapter {
	return &DecoratingAdapter{delegate: delegate}
}

// Delegate returns the wrapped adapter.
func (a *DecoratingAdapter) Delegate() ComponentAdapter {
	return a.delegate
}

func (a *DecoratingAdapter) Key() any {
	return a.delegate.Key()
}

func (a *DecoratingAdapter) Implementation() reflect.Type {
	return a.delegate.Implementation()
}

func (a *DecoratingAdapter) Instance(c Container) (any, error) {
	return a.delegate.Instance(c)
}

func (a *DecoratingAdapter) Verify(c Container) error {
	return a.delegate.Verify(c)
}

func (a *DecoratingAdapter) Container() Container {
	return a.delegate.Container()
}

func (a *DecoratingAdapter) SetContainer(c Container) {
	a.delegate.SetContainer(c)
}

// CachingAdapter keeps the first instance its delegate produces and returns
// it on every later call. Failed instantiations are not cached. No lock is
// held while the delegate runs, so concurrent first calls may each build an
// instance; only the first one stored is ever returned. The others are
// dropped without being stopped or disposed, so components implementing
// Startable or Disposable that are resolved concurrently should be
// registered through NewSynchronizedFactory.
type CachingAdapter struct {
	*DecoratingAdapter

	mu       sync.Mutex
	instance any
	cached   bool
}

var _ ComponentAdapter = (*CachingAdapter)(nil)

// NewCachingAdapter wraps delegate with instance caching.
func NewCachingAdapter(delegate ComponentAdapter) *CachingAdapter {
	return &CachingAdapter{DecoratingAdapter: NewDecoratingAdapter(delegate)}
}

func (a *CachingAdapter) Instance(c Container) (any, error) {
	a.mu.Lock()
	if a.cached {
		instance := a.instance
		a.mu.Unlock()
		return instance, nil
	}
	a.mu.Unlock()

	instance, err := a.delegate.Instance(c)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.cached {
		a.instance, a.cached = instance, true
	}
	return a.instance, nil
}

// Reset drops the cached instance.
func (a *CachingAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instance, a.cached = nil, false
}

// SynchronizedAdapter serializes calls to its delegate across goroutines.
// The lock is reentrant, so a dependency cycle on one goroutine is still
// reported as a CyclicDependencyError.
type SynchronizedAdapter struct {
	*DecoratingAdapter
	lock *reentrantMutex
}

var _ ComponentAdapter = (*SynchronizedAdapter)(nil)

// NewSynchronizedAdapter wraps delegate with a reentrant lock.
func NewSynchronizedAdapter(delegate ComponentAdapter) *SynchronizedAdapter {
	return &SynchronizedAdapter{DecoratingAdapter: NewDecoratingAdapter(delegate), lock: newReentrantMutex()}
}

func (a *SynchronizedAdapter) Instance(c Container) (any, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.delegate.Instance(c)
}

func (a *SynchronizedAdapter) Verify(c Container) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.delegate.Verify(c)
}
