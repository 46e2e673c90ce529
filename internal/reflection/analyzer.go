package reflection

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Analyzer performs reflection-based analysis of constructors and setter methods.
// It caches analysis results per function signature and per implementation type.
type Analyzer struct {
	mu         sync.RWMutex
	signatures map[reflect.Type]*signature
	setters    map[reflect.Type][]Setter
}

// signature is the cached, value-independent part of a constructor analysis.
type signature struct {
	params         []reflect.Type
	result         reflect.Type
	hasErrorReturn bool
}

// Constructor describes a single constructor function of an implementation.
type Constructor struct {
	Func           reflect.Value
	Name           string
	Params         []reflect.Type
	Result         reflect.Type
	HasErrorReturn bool
}

// Setter describes a single-argument SetXxx method used for setter injection.
type Setter struct {
	Name           string
	Param          reflect.Type
	HasErrorReturn bool

	method reflect.Method
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		signatures: make(map[reflect.Type]*signature),
		setters:    make(map[reflect.Type][]Setter),
	}
}

var defaultAnalyzer = New()

// Default returns the process-wide analyzer.
func Default() *Analyzer {
	return defaultAnalyzer
}

// Constructor analyzes fn, which must be a function returning exactly one
// value optionally followed by an error.
func (a *Analyzer) Constructor(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", val.Type())
	}
	if val.IsNil() {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	sig, err := a.signature(val.Type())
	if err != nil {
		return nil, err
	}

	return &Constructor{
		Func:           val,
		Name:           funcName(val),
		Params:         sig.params,
		Result:         sig.result,
		HasErrorReturn: sig.hasErrorReturn,
	}, nil
}

func (a *Analyzer) signature(fnType reflect.Type) (*signature, error) {
	a.mu.RLock()
	cached, ok := a.signatures[fnType]
	a.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor %v cannot be variadic", fnType)
	}

	sig := &signature{}
	switch fnType.NumOut() {
	case 1:
		sig.result = fnType.Out(0)
	case 2:
		if fnType.Out(1) != errType {
			return nil, fmt.Errorf("constructor %v: second return value must be error", fnType)
		}
		sig.result = fnType.Out(0)
		sig.hasErrorReturn = true
	default:
		return nil, fmt.Errorf("constructor %v must return one value and an optional error", fnType)
	}

	if sig.result == errType {
		return nil, fmt.Errorf("constructor %v cannot return only an error", fnType)
	}

	sig.params = make([]reflect.Type, fnType.NumIn())
	for i := range sig.params {
		sig.params[i] = fnType.In(i)
	}

	a.mu.Lock()
	a.signatures[fnType] = sig
	a.mu.Unlock()

	return sig, nil
}

// ZeroConstructor returns a no-argument constructor allocating the zero value of t.
// Pointer types yield a pointer to a freshly allocated element.
func ZeroConstructor(t reflect.Type) *Constructor {
	fnType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		if t.Kind() == reflect.Pointer {
			return []reflect.Value{reflect.New(t.Elem())}
		}
		return []reflect.Value{reflect.New(t).Elem()}
	})

	return &Constructor{
		Func:   fn,
		Name:   "new(" + t.String() + ")",
		Params: []reflect.Type{},
		Result: t,
	}
}

// Arity returns the number of parameters.
func (c *Constructor) Arity() int {
	return len(c.Params)
}

// Call invokes the constructor. The returned error is the constructor's own
// error return; panics are not recovered here.
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	out := c.Func.Call(args)
	if c.HasErrorReturn && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

func (c *Constructor) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(params, ", "))
}

// Setters returns the setter methods available on t, in method order.
// Struct types are inspected through their pointer type so that pointer
// receivers are included.
func (a *Analyzer) Setters(t reflect.Type) []Setter {
	a.mu.RLock()
	cached, ok := a.setters[t]
	a.mu.RUnlock()
	if ok {
		return cached
	}

	recv := t
	if t.Kind() == reflect.Struct {
		recv = reflect.PointerTo(t)
	}

	setters := make([]Setter, 0)
	for i := 0; i < recv.NumMethod(); i++ {
		m := recv.Method(i)
		if !isSetter(m) {
			continue
		}
		setters = append(setters, Setter{
			Name:           m.Name,
			Param:          m.Type.In(1),
			HasErrorReturn: m.Type.NumOut() == 1,
			method:         m,
		})
	}

	a.mu.Lock()
	a.setters[t] = setters
	a.mu.Unlock()

	return setters
}

// isSetter reports whether m looks like SetXxx(v) or SetXxx(v) error.
func isSetter(m reflect.Method) bool {
	if len(m.Name) <= 3 || !strings.HasPrefix(m.Name, "Set") {
		return false
	}
	// In(0) is the receiver.
	if m.Type.NumIn() != 2 || m.Type.IsVariadic() {
		return false
	}
	switch m.Type.NumOut() {
	case 0:
		return true
	case 1:
		return m.Type.Out(0) == errType
	default:
		return false
	}
}

// Invoke calls the setter on recv with arg.
func (s Setter) Invoke(recv, arg reflect.Value) error {
	out := s.method.Func.Call([]reflect.Value{recv, arg})
	if s.HasErrorReturn && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// IsConcrete reports whether t can be instantiated, i.e. is not an interface.
func IsConcrete(t reflect.Type) bool {
	return t != nil && t.Kind() != reflect.Interface
}

// IsNillable reports whether the zero value of t is nil.
func IsNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// ValueFor converts v into a reflect.Value usable as an argument of type t.
func ValueFor(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

func funcName(val reflect.Value) string {
	f := runtime.FuncForPC(val.Pointer())
	if f == nil {
		return val.Type().String()
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
