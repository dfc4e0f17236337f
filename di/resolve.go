package di

import (
	"fmt"
	"reflect"
)

// Get resolves name and asserts its value to T. Errors from the read are
// returned unchanged; a value of another type yields a *TypeError.
//
// Example:
//
//	fs, err := di.Get[afero.Fs](c, "fileSystem")
//	if err != nil {
//	    return nil, err
//	}
func Get[T any](c *Context, name string) (T, error) {
	var zero T
	instance, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	return assert[T](name, instance)
}

// MustGet resolves name with type safety and panics on any error.
func MustGet[T any](c *Context, name string) T {
	result, err := Get[T](c, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return result
}

// TryGet resolves name, returning the zero value and false on any error.
// Use this when a dependency is optional.
func TryGet[T any](c *Context, name string) (T, bool) {
	result, err := Get[T](c, name)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// Provide adapts a typed constructor to a Factory.
func Provide[T any](fn func(c *Context) (T, error)) Factory {
	return func(c *Context) (any, error) {
		v, err := fn(c)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Value returns a Factory that always produces v.
func Value[T any](v T) Factory {
	return func(*Context) (any, error) {
		return v, nil
	}
}

func assert[T any](name string, instance any) (T, error) {
	var zero T
	if result, ok := instance.(T); ok {
		return result, nil
	}
	want := reflect.TypeFor[T]()
	if instance == nil && nilable(want) {
		return zero, nil
	}
	return zero, &TypeError{Name: name, Got: instance, Want: want}
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
