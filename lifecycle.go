package pico

import (
	"runtime/debug"
	"time"
)

// Startable components are started and stopped with their container.
type Startable interface {
	Start() error
	Stop() error
}

// Disposable components release their resources when the container is disposed.
type Disposable interface {
	Dispose() error
}

var (
	startableType  = TypeOf[Startable]()
	disposableType = TypeOf[Disposable]()
)

// LifecycleManager drives the lifecycle methods of a container's own
// components. Child containers are handled by the container itself.
type LifecycleManager interface {
	Start(c Container) error
	Stop(c Container) error
	Dispose(c Container) error
}

// DefaultLifecycleManager starts components in instantiation order and
// stops and disposes them in reverse. Start stops at the first failure;
// Stop and Dispose visit every component and report all failures.
type DefaultLifecycleManager struct {
	monitor ComponentMonitor
}

var _ LifecycleManager = (*DefaultLifecycleManager)(nil)

// NewDefaultLifecycleManager creates a lifecycle manager reporting to monitor.
func NewDefaultLifecycleManager(monitor ComponentMonitor) *DefaultLifecycleManager {
	if monitor == nil {
		monitor = NullMonitor{}
	}
	return &DefaultLifecycleManager{monitor: monitor}
}

// Start instantiates every Startable component and starts it.
func (m *DefaultLifecycleManager) Start(c Container) error {
	instances, err := c.InstancesOfType(startableType)
	if err != nil {
		return err
	}

	for _, instance := range instances {
		if err := m.invoke("Start", instance, instance.(Startable).Start); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every Startable component in reverse order.
func (m *DefaultLifecycleManager) Stop(c Container) error {
	instances, err := c.InstancesOfType(startableType)
	if err != nil {
		return err
	}

	var errs []error
	for i := len(instances) - 1; i >= 0; i-- {
		if err := m.invoke("Stop", instances[i], instances[i].(Startable).Stop); err != nil {
			errs = append(errs, err)
		}
	}
	return lifecycleFailure("stop", errs)
}

// Dispose disposes every Disposable component in reverse order.
func (m *DefaultLifecycleManager) Dispose(c Container) error {
	instances, err := c.InstancesOfType(disposableType)
	if err != nil {
		return err
	}

	var errs []error
	for i := len(instances) - 1; i >= 0; i-- {
		if err := m.invoke("Dispose", instances[i], instances[i].(Disposable).Dispose); err != nil {
			errs = append(errs, err)
		}
	}
	return lifecycleFailure("dispose", errs)
}

func (m *DefaultLifecycleManager) invoke(method string, instance any, fn func() error) (err error) {
	m.monitor.Invoking(method, instance)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil {
			err = InvocationError{Method: method, Instance: instance, Cause: err}
			m.monitor.InvocationFailed(method, instance, err)
			return
		}
		m.monitor.Invoked(method, instance, time.Since(start))
	}()

	return fn()
}

// lifecycleFailure flattens errs into a single LifecycleError, or nil.
func lifecycleFailure(operation string, errs []error) error {
	var flat []error
	for _, err := range errs {
		if le, ok := err.(LifecycleError); ok {
			flat = append(flat, le.Errors...)
			continue
		}
		flat = append(flat, err)
	}

	if len(flat) == 0 {
		return nil
	}
	return LifecycleError{Operation: operation, Errors: flat}
}
