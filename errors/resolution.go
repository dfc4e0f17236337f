package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/depdep/di"
)

// FromResolution classifies an error returned while resolving an object
// graph. The original error is kept as Cause, so errors.Is and errors.As
// still reach it. AppErrors pass through unchanged; nil stays nil.
func FromResolution(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	var lookupErr *di.LookupError
	if stderrors.As(err, &lookupErr) {
		appErr := New(ErrCodeUnknownDependency,
			fmt.Sprintf("No factory or substitution provides %q.", lookupErr.Name),
			http.StatusInternalServerError).
			WithDetail("dependency", lookupErr.Name).
			WithCause(err)
		if lookupErr.Requester != "" {
			appErr.WithDetail("requester", lookupErr.Requester)
		}
		return appErr
	}

	var typeErr *di.TypeError
	if stderrors.As(err, &typeErr) {
		return New(ErrCodeTypeMismatch,
			fmt.Sprintf("Dependency %q has type %T, expected %s.", typeErr.Name, typeErr.Got, typeErr.Want),
			http.StatusInternalServerError).
			WithDetail("dependency", typeErr.Name).
			WithCause(err)
	}

	return New(ErrCodeFactoryFailed, "A factory failed while building the application.",
		http.StatusInternalServerError).WithCause(err)
}
