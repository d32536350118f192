package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskmanager-api/internal/store"
)

var (
	// ErrSessionNotFound indicates that no user holds the token being revoked.
	ErrSessionNotFound = fmt.Errorf("%w: session", store.ErrNotFound)

	// ErrMissingOwner indicates a task operation was attempted without an owner.
	ErrMissingOwner = errors.New("task owner is required")
)

// ServiceError wraps unexpected failures with the operation that produced
// them. Expected conditions are returned as sentinels instead.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newUserServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "user", Operation: operation, Message: message, Err: err}
}

func newTaskServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "task", Operation: operation, Message: message, Err: err}
}
