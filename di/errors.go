package di

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotFound matches every *LookupError via errors.Is.
var ErrNotFound = errors.New("di: dependency not found")

// errFactoryPanicked is reported to observers when a factory panics.
var errFactoryPanicked = errors.New("di: factory panicked")

// LookupError reports a read of a name that has neither a factory nor a
// substitution. It is returned at the moment of the read, never at build time.
type LookupError struct {
	Name string
	// Requester is the factory whose body performed the read, empty when the
	// read came from outside any factory.
	Requester string
}

func (e *LookupError) Error() string {
	if e.Requester != "" {
		return fmt.Sprintf("di: no factory or substitution for %q (read by %q)", e.Name, e.Requester)
	}
	return fmt.Sprintf("di: no factory or substitution for %q", e.Name)
}

func (e *LookupError) Is(target error) bool { return target == ErrNotFound }

// TypeError reports a typed read whose value has a different dynamic type.
type TypeError struct {
	Name string
	Got  any
	Want reflect.Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("di: component %s is %T, expected %s", e.Name, e.Got, e.Want)
}
