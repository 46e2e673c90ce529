package pico

import (
	"reflect"

	"github.com/junioryono/pico/internal/reflection"
)

// Parameter resolves one constructor argument or setter value.
//
// adapter is the component requesting the value. It is never resolved as its
// own dependency. expected is the declared parameter type.
type Parameter interface {
	// ResolveInstance returns the value to pass for expected.
	ResolveInstance(c Container, adapter ComponentAdapter, expected reflect.Type) (any, error)

	// IsResolvable reports whether ResolveInstance can produce a value.
	// Ambiguous lookups are returned as errors.
	IsResolvable(c Container, adapter ComponentAdapter, expected reflect.Type) (bool, error)

	// Verify checks that the value and all its transitive dependencies can be resolved.
	Verify(c Container, adapter ComponentAdapter, expected reflect.Type) error
}

// NoParameters selects a component's zero-argument constructor.
// Passing no parameters at all lets the container pick the greediest
// satisfiable constructor instead.
var NoParameters = []Parameter{}

// DefaultParameter resolves a dependency by its type, falling back to a
// non-empty collection for slice and map types.
var DefaultParameter Parameter = &ComponentParameter{collection: NewCollectionParameter(nil, nil, false)}

// ========================================
// Constant
// ========================================

// ConstantParameter always resolves to a fixed value.
type ConstantParameter struct {
	value any
}

var _ Parameter = (*ConstantParameter)(nil)

// Constant returns a parameter resolving to v.
func Constant(v any) *ConstantParameter {
	return &ConstantParameter{value: v}
}

// Value returns the constant.
func (p *ConstantParameter) Value() any {
	return p.value
}

func (p *ConstantParameter) ResolveInstance(_ Container, _ ComponentAdapter, _ reflect.Type) (any, error) {
	return p.value, nil
}

func (p *ConstantParameter) IsResolvable(c Container, adapter ComponentAdapter, expected reflect.Type) (bool, error) {
	return p.Verify(c, adapter, expected) == nil, nil
}

func (p *ConstantParameter) Verify(_ Container, _ ComponentAdapter, expected reflect.Type) error {
	if p.value == nil {
		if reflection.IsNillable(expected) {
			return nil
		}
		return IntrospectionError{Expected: expected, Reason: "nil constant"}
	}

	actual := reflect.TypeOf(p.value)
	if !actual.AssignableTo(expected) {
		return IntrospectionError{Expected: expected, Actual: actual, Reason: "constant is not assignable"}
	}
	return nil
}

// ========================================
// Component
// ========================================

// ComponentParameter resolves a dependency from the container, either by an
// explicit key or by type. When a collection is configured it is tried
// after the single-component lookup fails.
type ComponentParameter struct {
	key        any
	collection *CollectionParameter
}

var _ Parameter = (*ComponentParameter)(nil)

// ComponentKey returns a parameter resolving the component registered under key.
func ComponentKey(key any) *ComponentParameter {
	return &ComponentParameter{key: key}
}

// Collection returns a parameter resolving by type with a collection
// fallback. allowEmpty permits resolving to an empty collection.
func Collection(allowEmpty bool) *ComponentParameter {
	return &ComponentParameter{collection: NewCollectionParameter(nil, nil, allowEmpty)}
}

// CollectionOf is like Collection but only gathers components whose key is
// assignable to keyType and whose implementation is assignable to valueType.
// A nil type means no restriction.
func CollectionOf(keyType, valueType reflect.Type, allowEmpty bool) *ComponentParameter {
	return &ComponentParameter{collection: NewCollectionParameter(keyType, valueType, allowEmpty)}
}

func (p *ComponentParameter) ResolveInstance(c Container, adapter ComponentAdapter, expected reflect.Type) (any, error) {
	target, err := p.targetAdapter(c, expected, adapter)
	if err != nil {
		return nil, err
	}
	if target != nil {
		return registrant(c, target).Instance(target.Key())
	}

	if p.collection != nil {
		ok, err := p.collection.IsResolvable(c, adapter, expected)
		if err != nil {
			return nil, err
		}
		if ok {
			return p.collection.ResolveInstance(c, adapter, expected)
		}
	}

	if p.key != nil {
		return nil, ComponentNotFoundError{Key: p.key}
	}
	return nil, ComponentNotFoundError{Key: expected}
}

func (p *ComponentParameter) IsResolvable(c Container, adapter ComponentAdapter, expected reflect.Type) (bool, error) {
	target, err := p.targetAdapter(c, expected, adapter)
	if err != nil {
		return false, err
	}
	if target != nil {
		return true, nil
	}
	if p.collection != nil {
		return p.collection.IsResolvable(c, adapter, expected)
	}
	return false, nil
}

func (p *ComponentParameter) Verify(c Container, adapter ComponentAdapter, expected reflect.Type) error {
	target, err := p.targetAdapter(c, expected, adapter)
	if err != nil {
		return err
	}
	if target != nil {
		return target.Verify(registrant(c, target))
	}
	if p.collection != nil && isCollectionType(expected) {
		return p.collection.Verify(c, adapter, expected)
	}
	return UnsatisfiableDependenciesError{Adapter: adapter, Dependencies: []reflect.Type{expected}}
}

// targetAdapter finds the adapter providing expected. A nil adapter with a
// nil error means nothing matched.
func (p *ComponentParameter) targetAdapter(c Container, expected reflect.Type, exclude ComponentAdapter) (ComponentAdapter, error) {
	if p.key != nil {
		target := c.Adapter(p.key)
		if target == nil || !target.Implementation().AssignableTo(expected) {
			return nil, nil
		}
		return target, nil
	}

	if exclude == nil {
		return c.AdapterOfType(expected)
	}

	excludeKey := exclude.Key()
	if byKey := c.Adapter(expected); byKey != nil && byKey.Key() != excludeKey {
		return byKey, nil
	}

	found := make([]ComponentAdapter, 0)
	for _, a := range c.AdaptersOfType(expected) {
		if a.Key() != excludeKey {
			found = append(found, a)
		}
	}

	switch len(found) {
	case 0:
		if parent := c.Parent(); parent != nil {
			return parent.AdapterOfType(expected)
		}
		return nil, nil
	case 1:
		return found[0], nil
	default:
		candidates := make([]reflect.Type, len(found))
		for i, a := range found {
			candidates[i] = a.Implementation()
		}
		return nil, AmbiguousResolutionError{AmbiguousType: expected, Candidates: candidates}
	}
}

// registrant returns the container in c's ancestry that registered adapter.
// A descendant may shadow the adapter's key with its own component.
func registrant(c Container, adapter ComponentAdapter) Container {
	key := adapter.Key()
	for owner := c; owner != nil; owner = owner.Parent() {
		if owner.Adapter(key) != adapter {
			continue
		}
		if parent := owner.Parent(); parent == nil || parent.Adapter(key) != adapter {
			return owner
		}
	}
	return c
}
