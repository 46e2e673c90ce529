package pico

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.
// Match them with errors.Is.

var (
	// Registration errors.
	ErrDuplicateKey        = errors.New("duplicate component key")
	ErrKeyNil              = errors.New("component key cannot be nil")
	ErrKeyNotComparable    = errors.New("component key must be comparable")
	ErrInstanceNil         = errors.New("component instance cannot be nil")
	ErrImplementationNil   = errors.New("component implementation cannot be nil")
	ErrAdapterNil          = errors.New("component adapter cannot be nil")
	ErrSelfRegistration    = errors.New("container cannot be registered in itself")
	ErrNoConstructors      = errors.New("implementation declares no constructors")
	ErrConstructorMismatch = errors.New("constructor result does not match implementation")

	// Resolution errors.
	ErrComponentNotFound = errors.New("component not found")

	// Lifecycle errors.
	ErrAlreadyStarted = errors.New("container already started")
	ErrNotStarted     = errors.New("container not started")
	ErrDisposed       = errors.New("container already disposed")
)

var (
	_ error = DuplicateKeyError{}
	_ error = AssignabilityError{}
	_ error = NotConcreteError{}
	_ error = RegistrationError{}
	_ error = ComponentNotFoundError{}
	_ error = UnsatisfiableDependenciesError{}
	_ error = AmbiguousResolutionError{}
	_ error = TooManySatisfiableConstructorsError{}
	_ error = CyclicDependencyError{}
	_ error = IntrospectionError{}
	_ error = InitializationError{}
	_ error = InvocationTargetError{}
	_ error = PanicError{}
	_ error = VerificationError{}
	_ error = StateError{}
	_ error = InvocationError{}
	_ error = LifecycleError{}
)

// ========================================
// Registration Errors
// ========================================

// DuplicateKeyError indicates a key is already registered in the container.
type DuplicateKeyError struct {
	Key any
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate component key: %s is already registered", formatKey(e.Key))
}

func (e DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// AssignabilityError indicates the implementation cannot be assigned to the type used as its key.
type AssignabilityError struct {
	Key            reflect.Type
	Implementation reflect.Type
}

func (e AssignabilityError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s is not assignable to %s\n\n", formatType(e.Implementation), formatType(e.Key)))
	b.WriteString("To resolve this:\n")
	b.WriteString(fmt.Sprintf("  • Make %s implement %s\n", formatType(e.Implementation), formatType(e.Key)))
	b.WriteString("  • Register the component under a non-type key\n")
	return b.String()
}

// NotConcreteError indicates an interface type was given as a component implementation.
type NotConcreteError struct {
	Implementation reflect.Type
}

func (e NotConcreteError) Error() string {
	return fmt.Sprintf("%s is not a concrete type and cannot be instantiated", formatType(e.Implementation))
}

// RegistrationError wraps errors that prevent a component from being registered.
type RegistrationError struct {
	Key   any
	Cause error
}

func (e RegistrationError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("registration failed: %v", e.Cause)
	}
	return fmt.Sprintf("registration of %s failed: %v", formatKey(e.Key), e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// ========================================
// Resolution Errors
// ========================================

// ComponentNotFoundError indicates no adapter is registered for a key in the container chain.
type ComponentNotFoundError struct {
	Key any
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component not found: %s", formatKey(e.Key))
}

func (e ComponentNotFoundError) Unwrap() error {
	return ErrComponentNotFound
}

// UnsatisfiableDependenciesError indicates no constructor or setter set of a
// component could be fully resolved.
type UnsatisfiableDependenciesError struct {
	Adapter      ComponentAdapter
	Dependencies []reflect.Type
}

func (e UnsatisfiableDependenciesError) Error() string {
	var impl reflect.Type
	if e.Adapter != nil {
		impl = e.Adapter.Implementation()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s has unsatisfiable dependencies: [%s]\n\n",
		formatType(impl), formatTypes(e.Dependencies)))
	b.WriteString("To resolve this:\n")
	b.WriteString("  • Register components for the missing types\n")
	b.WriteString("  • Pass explicit parameters when registering the component\n")
	return b.String()
}

// AmbiguousResolutionError indicates a type matched more than one component.
type AmbiguousResolutionError struct {
	Component     reflect.Type
	AmbiguousType reflect.Type
	Candidates    []reflect.Type
}

func (e AmbiguousResolutionError) Error() string {
	var b strings.Builder
	if e.Component != nil {
		b.WriteString(fmt.Sprintf("%s needs a %s, ", formatType(e.Component), formatType(e.AmbiguousType)))
	} else {
		b.WriteString(fmt.Sprintf("lookup of %s is ambiguous, ", formatType(e.AmbiguousType)))
	}
	b.WriteString(fmt.Sprintf("but %d components match: [%s]\n\n", len(e.Candidates), formatTypes(e.Candidates)))
	b.WriteString("To resolve this:\n")
	b.WriteString("  • Use pico.ComponentKey to select a specific component\n")
	b.WriteString("  • Register only one component assignable to the type\n")
	return b.String()
}

// TooManySatisfiableConstructorsError indicates several constructors of the
// greatest satisfiable arity could be used.
type TooManySatisfiableConstructorsError struct {
	Implementation reflect.Type
	Constructors   []*Constructor
}

func (e TooManySatisfiableConstructorsError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s has %d satisfiable constructors of the same arity:\n",
		formatType(e.Implementation), len(e.Constructors)))
	for _, c := range e.Constructors {
		b.WriteString(fmt.Sprintf("  • %s\n", c))
	}
	b.WriteString("\nPass explicit parameters to choose one.\n")
	return b.String()
}

// CyclicDependencyError indicates a component depends on itself, directly or
// transitively. Chain lists the implementations from the outermost request
// to the repeated one.
type CyclicDependencyError struct {
	Chain []reflect.Type
}

func (e CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		parts[i] = formatType(t)
	}
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(parts, " -> "))
}

// IntrospectionError indicates a value cannot be used for the requested type.
type IntrospectionError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Reason   string
}

func (e IntrospectionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot use %s as %s: %s", formatType(e.Actual), formatType(e.Expected), e.Reason)
	}
	return fmt.Sprintf("cannot use %s as %s", formatType(e.Actual), formatType(e.Expected))
}

// ========================================
// Instantiation Errors
// ========================================

// InitializationError indicates the container itself could not build a component.
type InitializationError struct {
	Implementation reflect.Type
	Reason         string
	Cause          error
}

func (e InitializationError) Error() string {
	msg := fmt.Sprintf("cannot initialize %s: %s", formatType(e.Implementation), e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e InitializationError) Unwrap() error {
	return e.Cause
}

// InvocationTargetError indicates component code failed, either by returning an
// error or by panicking. Member names the constructor or setter invoked.
type InvocationTargetError struct {
	Implementation reflect.Type
	Member         string
	Cause          error
}

func (e InvocationTargetError) Error() string {
	return fmt.Sprintf("%s failed in %s: %v", formatType(e.Implementation), e.Member, e.Cause)
}

func (e InvocationTargetError) Unwrap() error {
	return e.Cause
}

// PanicError captures a recovered panic and its stack trace.
type PanicError struct {
	Value any
	Stack []byte
}

func (e PanicError) Error() string {
	if len(e.Stack) == 0 {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic: %v\n\nStack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// VerificationError aggregates every failure found by Container.Verify.
type VerificationError struct {
	Errors []error
}

func (e VerificationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("verification failed: %v", e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("verification failed with %d errors:", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e VerificationError) Unwrap() []error {
	return e.Errors
}

// ========================================
// Lifecycle Errors
// ========================================

// StateError indicates a lifecycle operation is not allowed in the container's current state.
type StateError struct {
	Operation string
	Cause     error
}

func (e StateError) Error() string {
	return fmt.Sprintf("cannot %s: %v", e.Operation, e.Cause)
}

func (e StateError) Unwrap() error {
	return e.Cause
}

// InvocationError indicates a lifecycle method of a component failed.
type InvocationError struct {
	Method   string
	Instance any
	Cause    error
}

func (e InvocationError) Error() string {
	return fmt.Sprintf("%s.%s failed: %v", formatType(reflect.TypeOf(e.Instance)), e.Method, e.Cause)
}

func (e InvocationError) Unwrap() error {
	return e.Cause
}

// LifecycleError aggregates lifecycle failures of several components.
type LifecycleError struct {
	Operation string
	Errors    []error
}

func (e LifecycleError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s failed with %d errors:", e.Operation, len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e LifecycleError) Unwrap() []error {
	return e.Errors
}

// ========================================
// Helpers
// ========================================

// IsNotFound reports whether err means a component could not be found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrComponentNotFound)
}

// IsCyclicDependency reports whether err contains a CyclicDependencyError.
func IsCyclicDependency(err error) bool {
	var e CyclicDependencyError
	return errors.As(err, &e)
}

// IsUnsatisfiable reports whether err contains an UnsatisfiableDependenciesError.
func IsUnsatisfiable(err error) bool {
	var e UnsatisfiableDependenciesError
	return errors.As(err, &e)
}

// IsAmbiguous reports whether err contains an AmbiguousResolutionError.
func IsAmbiguous(err error) bool {
	var e AmbiguousResolutionError
	return errors.As(err, &e)
}

func formatKey(key any) string {
	if t, ok := key.(reflect.Type); ok {
		return formatType(t)
	}
	if s, ok := key.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", key)
}

func formatTypes(types []reflect.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = formatType(t)
	}
	return strings.Join(parts, ", ")
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		// *Type instead of *package.Type
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Map:
		keyStr := t.Key().Name()
		if keyStr == "" {
			keyStr = t.Key().String()
		}
		elemStr := t.Elem().Name()
		if elemStr == "" {
			elemStr = t.Elem().String()
		}
		return "map[" + keyStr + "]" + elemStr
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
