package pico

import (
	"fmt"
	"reflect"

	"github.com/junioryono/pico/internal/reflection"
)

// Constructor describes one constructor function of an implementation.
type Constructor = reflection.Constructor

// Implementation describes a concrete component type together with the
// constructor functions that can produce it. Constructors keep the order in
// which they were declared.
//
//	pico.Implement(NewServer, NewServerWithConfig)
type Implementation struct {
	typ   reflect.Type
	ctors []*Constructor
	err   error
}

// Implement builds an Implementation from constructor functions. Every
// constructor must return the same concrete type, optionally followed by an
// error. Invalid constructors are reported when the implementation is registered.
func Implement(constructors ...any) *Implementation {
	impl := &Implementation{ctors: make([]*Constructor, 0, len(constructors))}
	if len(constructors) == 0 {
		impl.err = ErrNoConstructors
		return impl
	}

	for _, fn := range constructors {
		ctor, err := reflection.Default().Constructor(fn)
		if err != nil {
			impl.err = err
			return impl
		}

		if impl.typ == nil {
			impl.typ = ctor.Result
		} else if ctor.Result != impl.typ {
			impl.err = fmt.Errorf("%w: %s returns %s, expected %s",
				ErrConstructorMismatch, ctor, formatType(ctor.Result), formatType(impl.typ))
			return impl
		}

		impl.ctors = append(impl.ctors, ctor)
	}

	return impl
}

// ImplementType builds an Implementation whose only constructor allocates
// the zero value of t.
func ImplementType(t reflect.Type) *Implementation {
	if t == nil {
		return &Implementation{err: ErrImplementationNil}
	}
	return &Implementation{typ: t, ctors: []*Constructor{reflection.ZeroConstructor(t)}}
}

// Type returns the concrete type produced by the constructors.
func (i *Implementation) Type() reflect.Type {
	return i.typ
}

// Constructors returns the constructors in declaration order.
func (i *Implementation) Constructors() []*Constructor {
	return i.ctors
}

func (i *Implementation) validate() error {
	if i.err != nil {
		return i.err
	}
	if !reflection.IsConcrete(i.typ) {
		return NotConcreteError{Implementation: i.typ}
	}
	return nil
}

// asImplementation normalizes the implementation forms accepted at
// registration: *Implementation, constructor function or reflect.Type.
func asImplementation(v any) (*Implementation, error) {
	switch impl := v.(type) {
	case nil:
		return nil, ErrImplementationNil
	case *Implementation:
		if impl == nil {
			return nil, ErrImplementationNil
		}
		return impl, impl.validate()
	case reflect.Type:
		if impl.Kind() == reflect.Interface {
			return nil, NotConcreteError{Implementation: impl}
		}
		return ImplementType(impl), nil
	default:
		if reflect.TypeOf(v).Kind() != reflect.Func {
			return nil, fmt.Errorf("unsupported implementation %T: expected constructor, *pico.Implementation or reflect.Type", v)
		}
		i := Implement(v)
		return i, i.validate()
	}
}
