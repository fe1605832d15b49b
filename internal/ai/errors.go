package ai

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for external AI call failures. ServiceError wraps one
// of these so callers can match with errors.Is while still seeing provider
// detail.
var (
	ErrAuthFailed         = errors.New("auth failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrModelLoading       = errors.New("model loading")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ServiceError describes a failed call to an external AI endpoint.
type ServiceError struct {
	Provider  string
	Status    int
	Message   string
	Kind      error
	Retryable bool
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: http status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Kind }

// NewServiceError classifies an HTTP failure from provider by status code.
func NewServiceError(provider string, statusCode int, message string) *ServiceError {
	err := &ServiceError{Provider: provider, Status: statusCode, Message: message}
	switch {
	case statusCode == 401 || statusCode == 403:
		err.Kind = ErrAuthFailed
	case statusCode == 429:
		err.Kind = ErrRateLimited
		err.Retryable = true
	case statusCode == 413:
		err.Kind = ErrPayloadTooLarge
	case statusCode >= 500:
		err.Kind = ErrServiceUnavailable
		err.Retryable = true
	}
	return err
}

// IsRetryable reports whether the error represents a transient condition.
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return errors.Is(err, ErrModelLoading)
}
