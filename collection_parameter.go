package pico

import (
	"reflect"

	"github.com/junioryono/pico/internal/reflection"
)

// CollectionParameter resolves slice and map parameters by gathering every
// matching component in the container chain. Components of a child shadow
// ancestor components registered under the same key. The requesting
// component is never part of its own collection.
//
// Slices are ordered ancestors first, then by local registration order.
// Maps are keyed by component key and only include components whose key is
// assignable to the map's key type.
type CollectionParameter struct {
	keyType    reflect.Type
	valueType  reflect.Type
	allowEmpty bool
}

var _ Parameter = (*CollectionParameter)(nil)

// NewCollectionParameter creates a collection parameter. A nil keyType or
// valueType means no restriction beyond the collection's own types.
func NewCollectionParameter(keyType, valueType reflect.Type, allowEmpty bool) *CollectionParameter {
	return &CollectionParameter{keyType: keyType, valueType: valueType, allowEmpty: allowEmpty}
}

func (p *CollectionParameter) ResolveInstance(c Container, adapter ComponentAdapter, expected reflect.Type) (any, error) {
	if !isCollectionType(expected) {
		return nil, IntrospectionError{Expected: expected, Reason: "not a collection type"}
	}

	matches, err := p.matchingAdapters(c, adapter, expected)
	if err != nil {
		return nil, err
	}

	if expected.Kind() == reflect.Map {
		result := reflect.MakeMapWithSize(expected, len(matches.keys))
		for _, key := range matches.keys {
			instance, err := registrant(c, matches.adapters[key]).Instance(key)
			if err != nil {
				return nil, err
			}
			result.SetMapIndex(reflect.ValueOf(key), reflection.ValueFor(instance, expected.Elem()))
		}
		return result.Interface(), nil
	}

	result := reflect.MakeSlice(expected, 0, len(matches.keys))
	for _, key := range matches.keys {
		instance, err := registrant(c, matches.adapters[key]).Instance(key)
		if err != nil {
			return nil, err
		}
		result = reflect.Append(result, reflection.ValueFor(instance, expected.Elem()))
	}
	return result.Interface(), nil
}

func (p *CollectionParameter) IsResolvable(c Container, adapter ComponentAdapter, expected reflect.Type) (bool, error) {
	if !isCollectionType(expected) {
		return false, nil
	}
	if p.allowEmpty {
		return true, nil
	}

	matches, err := p.matchingAdapters(c, adapter, expected)
	if err != nil {
		return false, err
	}
	return len(matches.keys) > 0, nil
}

func (p *CollectionParameter) Verify(c Container, adapter ComponentAdapter, expected reflect.Type) error {
	if !isCollectionType(expected) {
		return IntrospectionError{Expected: expected, Reason: "not a collection type"}
	}

	matches, err := p.matchingAdapters(c, adapter, expected)
	if err != nil {
		return err
	}
	if len(matches.keys) == 0 && !p.allowEmpty {
		return UnsatisfiableDependenciesError{Adapter: adapter, Dependencies: []reflect.Type{p.elementType(expected)}}
	}

	for _, key := range matches.keys {
		a := matches.adapters[key]
		if err := a.Verify(registrant(c, a)); err != nil {
			return err
		}
	}
	return nil
}

func (p *CollectionParameter) elementType(expected reflect.Type) reflect.Type {
	if p.valueType != nil {
		return p.valueType
	}
	return expected.Elem()
}

func (p *CollectionParameter) accepts(key any, expected reflect.Type) bool {
	keyType := reflect.TypeOf(key)
	if p.keyType != nil && !keyType.AssignableTo(p.keyType) {
		return false
	}
	if expected.Kind() == reflect.Map && !keyType.AssignableTo(expected.Key()) {
		return false
	}
	return true
}

// matchingAdapters collects the adapters for expected in c and its ancestors.
func (p *CollectionParameter) matchingAdapters(c Container, exclude ComponentAdapter, expected reflect.Type) (*orderedAdapters, error) {
	elem := p.elementType(expected)
	if !elem.AssignableTo(expected.Elem()) {
		return nil, IntrospectionError{Expected: expected.Elem(), Actual: elem, Reason: "collection value type is not assignable"}
	}

	matches := newOrderedAdapters()
	if parent := c.Parent(); parent != nil {
		inherited, err := p.matchingAdapters(parent, exclude, expected)
		if err != nil {
			return nil, err
		}
		matches = inherited
	}

	for _, a := range c.Adapters() {
		matches.remove(a.Key())
	}

	for _, a := range c.AdaptersOfType(elem) {
		key := a.Key()
		if exclude != nil && key == exclude.Key() {
			continue
		}
		if p.accepts(key, expected) {
			matches.put(key, a)
		}
	}

	return matches, nil
}

func isCollectionType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Map
}

// orderedAdapters is a key-to-adapter map that remembers insertion order.
type orderedAdapters struct {
	keys     []any
	adapters map[any]ComponentAdapter
}

func newOrderedAdapters() *orderedAdapters {
	return &orderedAdapters{adapters: make(map[any]ComponentAdapter)}
}

func (m *orderedAdapters) put(key any, a ComponentAdapter) {
	if _, ok := m.adapters[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.adapters[key] = a
}

func (m *orderedAdapters) remove(key any) {
	if _, ok := m.adapters[key]; !ok {
		return
	}
	delete(m.adapters, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return
		}
	}
}
