package pico

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"time"

	"github.com/junioryono/pico/internal/reflection"
)

// ConstructorInjectionAdapter instantiates a component through the greediest
// of its constructors that the container can satisfy. It creates a new
// instance on every call; wrap it in a CachingAdapter for a shared instance.
type ConstructorInjectionAdapter struct {
	*baseAdapter

	ctors   []*Constructor
	params  []Parameter
	monitor ComponentMonitor

	instantiationGuard *cyclicGuard
	verificationGuard  *cyclicGuard
}

var _ ComponentAdapter = (*ConstructorInjectionAdapter)(nil)

// NewConstructorInjectionAdapter creates an adapter for impl, which may be a
// constructor function, an *Implementation or a reflect.Type.
//
// With no params every constructor is a candidate and each argument is
// resolved with DefaultParameter. With explicit params only constructors of
// exactly len(params) arguments are considered.
func NewConstructorInjectionAdapter(key, impl any, params []Parameter, opts ...AdapterOption) (*ConstructorInjectionAdapter, error) {
	implementation, err := asImplementation(impl)
	if err != nil {
		return nil, registrationFailure(key, err)
	}

	base, err := newBaseAdapter(key, implementation.Type())
	if err != nil {
		return nil, err
	}

	options := newAdapterOptions(opts)

	return &ConstructorInjectionAdapter{
		baseAdapter:        base,
		ctors:              implementation.Constructors(),
		params:             params,
		monitor:            options.monitor,
		instantiationGuard: newCyclicGuard(),
		verificationGuard:  newCyclicGuard(),
	}, nil
}

// Constructors returns the constructors available to the adapter.
func (a *ConstructorInjectionAdapter) Constructors() []*Constructor {
	return a.ctors
}

// Instance builds a new instance using the greediest satisfiable constructor.
func (a *ConstructorInjectionAdapter) Instance(c Container) (any, error) {
	return a.instantiationGuard.observe(a.impl, func() (any, error) {
		ctor, params, err := a.greediestSatisfiableConstructor(c)
		if err != nil {
			return nil, err
		}

		args := make([]reflect.Value, ctor.Arity())
		for i, p := range params {
			v, err := p.ResolveInstance(c, a, ctor.Params[i])
			if err != nil {
				return nil, a.withComponent(err)
			}
			args[i] = reflection.ValueFor(v, ctor.Params[i])
		}

		return a.invoke(ctor, args)
	})
}

// Verify checks that the greediest satisfiable constructor and all its
// transitive dependencies can be resolved.
func (a *ConstructorInjectionAdapter) Verify(c Container) error {
	_, err := a.verificationGuard.observe(a.impl, func() (any, error) {
		ctor, params, err := a.greediestSatisfiableConstructor(c)
		if err != nil {
			return nil, err
		}
		for i, p := range params {
			if err := p.Verify(c, a, ctor.Params[i]); err != nil {
				return nil, a.withComponent(err)
			}
		}
		return nil, nil
	})
	return err
}

// candidates returns the constructors eligible for selection, greediest first.
func (a *ConstructorInjectionAdapter) candidates() []*Constructor {
	if a.params != nil {
		matching := make([]*Constructor, 0, len(a.ctors))
		for _, ctor := range a.ctors {
			if ctor.Arity() == len(a.params) {
				matching = append(matching, ctor)
			}
		}
		return matching
	}

	sorted := slices.Clone(a.ctors)
	slices.SortStableFunc(sorted, func(x, y *Constructor) int {
		return y.Arity() - x.Arity()
	})
	return sorted
}

func (a *ConstructorInjectionAdapter) parametersFor(ctor *Constructor) []Parameter {
	if a.params != nil {
		return a.params
	}
	params := make([]Parameter, ctor.Arity())
	for i := range params {
		params[i] = DefaultParameter
	}
	return params
}

func (a *ConstructorInjectionAdapter) greediestSatisfiableConstructor(c Container) (*Constructor, []Parameter, error) {
	candidates := a.candidates()
	if len(candidates) == 0 {
		return nil, nil, InitializationError{
			Implementation: a.impl,
			Reason:         fmt.Sprintf("no constructor accepts %d parameters", len(a.params)),
		}
	}

	var (
		greediest       *Constructor
		greediestParams []Parameter
		conflicts       []*Constructor
		unsatisfiable   []reflect.Type
	)

	for _, ctor := range candidates {
		if greediest != nil && ctor.Arity() < greediest.Arity() {
			break
		}

		params := a.parametersFor(ctor)
		failed := false
		for i, p := range params {
			ok, err := p.IsResolvable(c, a, ctor.Params[i])
			if err != nil {
				return nil, nil, a.withComponent(err)
			}
			if !ok {
				failed = true
				if !slices.Contains(unsatisfiable, ctor.Params[i]) {
					unsatisfiable = append(unsatisfiable, ctor.Params[i])
				}
			}
		}
		if failed {
			continue
		}

		if greediest == nil {
			greediest, greediestParams = ctor, params
		} else {
			conflicts = append(conflicts, ctor)
		}
	}

	if len(conflicts) > 0 {
		return nil, nil, TooManySatisfiableConstructorsError{
			Implementation: a.impl,
			Constructors:   append([]*Constructor{greediest}, conflicts...),
		}
	}
	if greediest == nil {
		return nil, nil, UnsatisfiableDependenciesError{Adapter: a, Dependencies: unsatisfiable}
	}

	return greediest, greediestParams, nil
}

func (a *ConstructorInjectionAdapter) invoke(ctor *Constructor, args []reflect.Value) (instance any, err error) {
	a.monitor.Instantiating(ctor)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = InvocationTargetError{
				Implementation: a.impl,
				Member:         ctor.String(),
				Cause:          PanicError{Value: r, Stack: debug.Stack()},
			}
		}
		if err != nil {
			instance = nil
			a.monitor.InstantiationFailed(ctor, err)
		}
	}()

	v, callErr := ctor.Call(args)
	if callErr != nil {
		return nil, InvocationTargetError{Implementation: a.impl, Member: ctor.String(), Cause: callErr}
	}

	instance = v.Interface()
	a.monitor.Instantiated(ctor, instance, time.Since(start))
	return instance, nil
}

// withComponent names the requesting implementation in ambiguity errors.
func (a *ConstructorInjectionAdapter) withComponent(err error) error {
	return attachComponent(err, a.impl)
}

func attachComponent(err error, impl reflect.Type) error {
	var ambiguous AmbiguousResolutionError
	if errors.As(err, &ambiguous) && ambiguous.Component == nil {
		ambiguous.Component = impl
		return ambiguous
	}
	return err
}

func registrationFailure(key any, err error) error {
	var notConcrete NotConcreteError
	if errors.As(err, &notConcrete) {
		return notConcrete
	}
	return RegistrationError{Key: key, Cause: err}
}
