package pico

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/junioryono/pico/internal/reflection"
)

// SetterInjectionAdapter instantiates a component with its zero-argument
// constructor and then injects dependencies through SetXxx methods.
//
// Each parameter is matched to the first not yet matched setter it can
// resolve. With no explicit parameters every setter gets a DefaultParameter.
// Setter injection needs a pointer or struct implementation.
type SetterInjectionAdapter struct {
	*baseAdapter

	ctor    *Constructor
	setters []reflection.Setter
	params  []Parameter
	monitor ComponentMonitor

	instantiationGuard *cyclicGuard
	verificationGuard  *cyclicGuard
}

var _ ComponentAdapter = (*SetterInjectionAdapter)(nil)

// NewSetterInjectionAdapter creates a setter injection adapter for impl,
// which may be a constructor function, an *Implementation or a reflect.Type.
// A zero-argument constructor is used when impl declares one; otherwise the
// zero value of the implementation type is allocated.
func NewSetterInjectionAdapter(key, impl any, params []Parameter, opts ...AdapterOption) (*SetterInjectionAdapter, error) {
	implementation, err := asImplementation(impl)
	if err != nil {
		return nil, registrationFailure(key, err)
	}

	base, err := newBaseAdapter(key, implementation.Type())
	if err != nil {
		return nil, err
	}

	t := implementation.Type()
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Struct {
		return nil, RegistrationError{Key: key, Cause: fmt.Errorf("setter injection needs a struct or pointer type, got %s", formatType(t))}
	}

	var ctor *Constructor
	for _, c := range implementation.Constructors() {
		if c.Arity() == 0 {
			ctor = c
			break
		}
	}
	if ctor == nil {
		ctor = reflection.ZeroConstructor(t)
	}

	options := newAdapterOptions(opts)

	return &SetterInjectionAdapter{
		baseAdapter:        base,
		ctor:               ctor,
		setters:            reflection.Default().Setters(t),
		params:             params,
		monitor:            options.monitor,
		instantiationGuard: newCyclicGuard(),
		verificationGuard:  newCyclicGuard(),
	}, nil
}

// Instance creates the component and calls every setter.
func (a *SetterInjectionAdapter) Instance(c Container) (any, error) {
	return a.instantiationGuard.observe(a.impl, func() (any, error) {
		matching, err := a.matchingParameters(c)
		if err != nil {
			return nil, err
		}

		return a.instantiate(c, matching)
	})
}

// Verify checks that every setter can be satisfied.
func (a *SetterInjectionAdapter) Verify(c Container) error {
	_, err := a.verificationGuard.observe(a.impl, func() (any, error) {
		matching, err := a.matchingParameters(c)
		if err != nil {
			return nil, err
		}
		for i, p := range matching {
			if err := p.Verify(c, a, a.setters[i].Param); err != nil {
				return nil, attachComponent(err, a.impl)
			}
		}
		return nil, nil
	})
	return err
}

// matchingParameters returns the parameter for each setter, indexed like the setters.
func (a *SetterInjectionAdapter) matchingParameters(c Container) ([]Parameter, error) {
	params := a.params
	if params == nil {
		params = make([]Parameter, len(a.setters))
		for i := range params {
			params[i] = DefaultParameter
		}
	}

	matching := make([]Parameter, len(a.setters))
	var nonMatching []int

	for i, p := range params {
		matched := false
		for j, s := range a.setters {
			if matching[j] != nil {
				continue
			}
			ok, err := p.IsResolvable(c, a, s.Param)
			if err != nil {
				return nil, attachComponent(err, a.impl)
			}
			if ok {
				matching[j] = p
				matched = true
				break
			}
		}
		if !matched {
			nonMatching = append(nonMatching, i)
		}
	}

	var unsatisfiable []reflect.Type
	for j, p := range matching {
		if p == nil {
			unsatisfiable = append(unsatisfiable, a.setters[j].Param)
		}
	}

	if len(unsatisfiable) > 0 {
		return nil, UnsatisfiableDependenciesError{Adapter: a, Dependencies: unsatisfiable}
	}
	if len(nonMatching) > 0 {
		return nil, InitializationError{
			Implementation: a.impl,
			Reason:         fmt.Sprintf("parameters at positions %v do not match any setter", nonMatching),
		}
	}

	return matching, nil
}

func (a *SetterInjectionAdapter) instantiate(c Container, matching []Parameter) (instance any, err error) {
	member := a.ctor.String()
	a.monitor.Instantiating(a.ctor)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = InvocationTargetError{
				Implementation: a.impl,
				Member:         member,
				Cause:          PanicError{Value: r, Stack: debug.Stack()},
			}
		}
		if err != nil {
			instance = nil
			a.monitor.InstantiationFailed(a.ctor, err)
		}
	}()

	v, err := a.ctor.Call(nil)
	if err != nil {
		return nil, InvocationTargetError{Implementation: a.impl, Member: member, Cause: err}
	}

	// Struct implementations are populated through a pointer and copied out.
	recv := v
	if a.impl.Kind() == reflect.Struct {
		recv = reflect.New(a.impl)
		recv.Elem().Set(v)
	}

	for i, s := range a.setters {
		arg, err := matching[i].ResolveInstance(c, a, s.Param)
		if err != nil {
			return nil, attachComponent(err, a.impl)
		}

		member = s.Name
		a.monitor.Invoking(s.Name, recv.Interface())
		invokeStart := time.Now()
		if err := s.Invoke(recv, reflection.ValueFor(arg, s.Param)); err != nil {
			a.monitor.InvocationFailed(s.Name, recv.Interface(), err)
			return nil, InvocationTargetError{Implementation: a.impl, Member: s.Name, Cause: err}
		}
		a.monitor.Invoked(s.Name, recv.Interface(), time.Since(invokeStart))
	}

	if a.impl.Kind() == reflect.Struct {
		instance = recv.Elem().Interface()
	} else {
		instance = recv.Interface()
	}
	a.monitor.Instantiated(a.ctor, instance, time.Since(start))
	return instance, nil
}
