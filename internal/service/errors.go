package service

import (
	"errors"
	"fmt"
)

// ErrMissingDependency is returned by constructors given a nil dependency.
var ErrMissingDependency = errors.New("missing service dependency")

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	// Service is the service name, e.g. "scholar".
	Service string
	// Operation is the failed operation, e.g. "start_exam".
	Operation string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err; it returns nil for a nil err.
func NewServiceError(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
