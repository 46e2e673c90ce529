package pico

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type of T. Use it to build type keys for interfaces.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Get is a generic helper function that resolves the single component assignable to T.
func Get[T any](c Container) (T, error) {
	var zero T

	instance, err := c.InstanceOfType(TypeOf[T]())
	if err != nil {
		return zero, err
	}

	return assertInstance[T](instance)
}

// GetKeyed is a generic helper function that resolves the component registered under key as T.
func GetKeyed[T any](c Container, key any) (T, error) {
	var zero T

	instance, err := c.Instance(key)
	if err != nil {
		return zero, err
	}

	return assertInstance[T](instance)
}

// GetAll resolves every local component assignable to T in instantiation order.
func GetAll[T any](c Container) ([]T, error) {
	instances, err := c.InstancesOfType(TypeOf[T]())
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(instances))
	for i, instance := range instances {
		result, ok := instance.(T)
		if !ok {
			return nil, fmt.Errorf("type assertion failed for item %d: expected %T, got %T",
				i, *new(T), instance)
		}
		results = append(results, result)
	}

	return results, nil
}

// MustGet resolves a component and panics on error.
func MustGet[T any](c Container) T {
	result, err := Get[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatType(TypeOf[T]()), err))
	}
	return result
}

// MustGetKeyed resolves a keyed component and panics on error.
func MustGetKeyed[T any](c Container, key any) T {
	result, err := GetKeyed[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s (key: %v): %v", formatType(TypeOf[T]()), key, err))
	}
	return result
}

func assertInstance[T any](instance any) (T, error) {
	var zero T
	if instance == nil {
		return zero, nil
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed: expected %s, got %T", formatType(TypeOf[T]()), instance)
	}
	return result, nil
}
