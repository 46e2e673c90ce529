package pico

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		err     error
		message string
	}{
		{ErrDuplicateKey, "duplicate component key"},
		{ErrKeyNil, "component key cannot be nil"},
		{ErrKeyNotComparable, "component key must be comparable"},
		{ErrInstanceNil, "component instance cannot be nil"},
		{ErrImplementationNil, "component implementation cannot be nil"},
		{ErrAdapterNil, "component adapter cannot be nil"},
		{ErrSelfRegistration, "container cannot be registered in itself"},
		{ErrNoConstructors, "implementation declares no constructors"},
		{ErrConstructorMismatch, "constructor result does not match implementation"},
		{ErrComponentNotFound, "component not found"},
		{ErrAlreadyStarted, "container already started"},
		{ErrNotStarted, "container not started"},
		{ErrDisposed, "container already disposed"},
	}

	for _, tt := range sentinelErrors {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestErrorMessages(t *testing.T) {
	svcType := reflect.TypeOf(&TService{})
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "duplicate key",
			err:  DuplicateKeyError{Key: "k"},
			want: `duplicate component key: "k" is already registered`,
		},
		{
			name: "not found by type",
			err:  ComponentNotFoundError{Key: svcType},
			want: "component not found: *TService",
		},
		{
			name: "not found by int key",
			err:  ComponentNotFoundError{Key: 7},
			want: "component not found: 7",
		},
		{
			name: "not concrete",
			err:  NotConcreteError{Implementation: TypeOf[TInterface]()},
			want: "TInterface is not a concrete type and cannot be instantiated",
		},
		{
			name: "registration without key",
			err:  RegistrationError{Cause: ErrKeyNil},
			want: "registration failed: component key cannot be nil",
		},
		{
			name: "registration with key",
			err:  RegistrationError{Key: "k", Cause: ErrInstanceNil},
			want: `registration of "k" failed: component instance cannot be nil`,
		},
		{
			name: "cycle",
			err:  CyclicDependencyError{Chain: []reflect.Type{reflect.TypeOf(&cycD{}), reflect.TypeOf(&cycE{}), reflect.TypeOf(&cycD{})}},
			want: "cyclic dependency detected: *cycD -> *cycE -> *cycD",
		},
		{
			name: "introspection",
			err:  IntrospectionError{Expected: svcType, Actual: reflect.TypeOf(""), Reason: "constant is not assignable"},
			want: "cannot use string as *TService: constant is not assignable",
		},
		{
			name: "introspection without reason",
			err:  IntrospectionError{Expected: svcType, Actual: reflect.TypeOf(0)},
			want: "cannot use int as *TService",
		},
		{
			name: "initialization",
			err:  InitializationError{Implementation: svcType, Reason: "no constructor accepts 3 parameters"},
			want: "cannot initialize *TService: no constructor accepts 3 parameters",
		},
		{
			name: "initialization with cause",
			err:  InitializationError{Implementation: svcType, Reason: "bad", Cause: boom},
			want: "cannot initialize *TService: bad: boom",
		},
		{
			name: "invocation target",
			err:  InvocationTargetError{Implementation: svcType, Member: "pico.NewTService()", Cause: boom},
			want: "*TService failed in pico.NewTService(): boom",
		},
		{
			name: "panic",
			err:  PanicError{Value: "oops"},
			want: "panic: oops",
		},
		{
			name: "state",
			err:  StateError{Operation: "start", Cause: ErrDisposed},
			want: "cannot start: container already disposed",
		},
		{
			name: "invocation",
			err:  InvocationError{Method: "Stop", Instance: &TService{}, Cause: boom},
			want: "*TService.Stop failed: boom",
		},
		{
			name: "single lifecycle failure",
			err:  LifecycleError{Operation: "stop", Errors: []error{boom}},
			want: "stop failed: boom",
		},
		{
			name: "several lifecycle failures",
			err:  LifecycleError{Operation: "dispose", Errors: []error{boom, ErrDisposed}},
			want: "dispose failed with 2 errors:\n  1. boom\n  2. container already disposed",
		},
		{
			name: "single verification failure",
			err:  VerificationError{Errors: []error{boom}},
			want: "verification failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorMessages_Guidance(t *testing.T) {
	svcType := reflect.TypeOf(&TService{})

	t.Run("unsatisfiable", func(t *testing.T) {
		err := UnsatisfiableDependenciesError{Dependencies: []reflect.Type{svcType, reflect.TypeOf([]Fish{})}}
		assert.Contains(t, err.Error(), "<nil> has unsatisfiable dependencies: [*TService, []Fish]")
		assert.Contains(t, err.Error(), "To resolve this:")
	})

	t.Run("ambiguous lookup", func(t *testing.T) {
		err := AmbiguousResolutionError{
			AmbiguousType: TypeOf[TInterface](),
			Candidates:    []reflect.Type{svcType, reflect.TypeOf(&TOther{})},
		}
		assert.Contains(t, err.Error(), "lookup of TInterface is ambiguous, but 2 components match: [*TService, *TOther]")
		assert.Contains(t, err.Error(), "pico.ComponentKey")
	})

	t.Run("assignability", func(t *testing.T) {
		err := AssignabilityError{Key: TypeOf[TInterface](), Implementation: reflect.TypeOf(&TDependency{})}
		assert.Contains(t, err.Error(), "*TDependency is not assignable to TInterface")
	})

	t.Run("too many constructors", func(t *testing.T) {
		ctors := multiImplementation().Constructors()
		err := TooManySatisfiableConstructorsError{Implementation: reflect.TypeOf(&Multi{}), Constructors: ctors[1:3]}
		assert.Contains(t, err.Error(), "*Multi has 2 satisfiable constructors of the same arity")
		assert.Contains(t, err.Error(), "newMultiOneTwo")
		assert.Contains(t, err.Error(), "newMultiTwoOne")
	})

	t.Run("panic with stack", func(t *testing.T) {
		err := PanicError{Value: "oops", Stack: []byte("goroutine 1")}
		assert.Contains(t, err.Error(), "Stack trace:\ngoroutine 1")
	})
}

func TestErrorUnwrapping(t *testing.T) {
	boom := errors.New("boom")

	t.Run("sentinels", func(t *testing.T) {
		assert.ErrorIs(t, DuplicateKeyError{Key: "k"}, ErrDuplicateKey)
		assert.ErrorIs(t, ComponentNotFoundError{Key: "k"}, ErrComponentNotFound)
		assert.ErrorIs(t, StateError{Operation: "stop", Cause: ErrNotStarted}, ErrNotStarted)
		assert.ErrorIs(t, RegistrationError{Cause: ErrKeyNil}, ErrKeyNil)
	})

	t.Run("causes", func(t *testing.T) {
		assert.ErrorIs(t, InitializationError{Cause: boom}, boom)
		assert.ErrorIs(t, InvocationTargetError{Cause: boom}, boom)
		assert.ErrorIs(t, InvocationError{Cause: boom}, boom)
		assert.ErrorIs(t, PanicError{Value: boom}, boom)
		assert.Nil(t, PanicError{Value: "not an error"}.Unwrap())
	})

	t.Run("aggregates", func(t *testing.T) {
		cyclic := CyclicDependencyError{Chain: []reflect.Type{reflect.TypeOf(&cycD{})}}
		err := VerificationError{Errors: []error{boom, cyclic}}
		assert.ErrorIs(t, err, boom)
		assert.True(t, IsCyclicDependency(err))

		lifecycle := LifecycleError{Operation: "stop", Errors: []error{InvocationError{Cause: boom}}}
		assert.ErrorIs(t, lifecycle, boom)
	})

	t.Run("helpers", func(t *testing.T) {
		assert.True(t, IsNotFound(ComponentNotFoundError{Key: "k"}))
		assert.False(t, IsNotFound(boom))
		assert.True(t, IsUnsatisfiable(UnsatisfiableDependenciesError{}))
		assert.True(t, IsAmbiguous(AmbiguousResolutionError{}))
		assert.False(t, IsCyclicDependency(nil))
	})
}

func TestFormatType(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{nil, "<nil>"},
		{reflect.TypeOf(&TService{}), "*TService"},
		{reflect.TypeOf(TService{}), "TService"},
		{reflect.TypeOf([]TService{}), "[]TService"},
		{reflect.TypeOf(map[string]int{}), "map[string]int"},
		{reflect.TypeOf(0), "int"},
		{TypeOf[TInterface](), "TInterface"},
		{reflect.TypeOf(func(int) error { return nil }), "func(int) error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, formatType(tt.typ))
		})
	}
}
