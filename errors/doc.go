// Package errors provides structured error types for depdep services.
// It implements an application error with machine-readable codes, HTTP
// status mapping, retryable detection, and classification of dependency
// resolution failures.
package errors
