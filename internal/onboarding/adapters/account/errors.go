package account

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes account service failures.
type ErrorCategory string

const (
	// ErrorTimeout indicates the service took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates a non-JSON or malformed response.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates a missing, expired or rejected credential.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the service is unavailable, or the circuit is open.
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorRejected indicates the service refused the request (4xx or success:false).
	ErrorRejected ErrorCategory = "rejected"

	// ErrorInternal indicates an unexpected local failure.
	ErrorInternal ErrorCategory = "internal"
)

// ServiceError is a failed account service call. Body holds the raw response
// so operators can see what the service actually said.
type ServiceError struct {
	Category   ErrorCategory
	Operation  string
	StatusCode int
	Message    string
	Body       string
	Underlying error
	Retryable  bool
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("account service %s [%s]", e.Operation, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Underlying
}

func newServiceError(category ErrorCategory, op string, status int, message, body string, underlying error) *ServiceError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited
	return &ServiceError{
		Category:   category,
		Operation:  op,
		StatusCode: status,
		Message:    message,
		Body:       body,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is a transient account service failure.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to ErrorInternal.
func GetCategory(err error) ErrorCategory {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ErrorInternal
}

// ErrCircuitOpen is the underlying cause when calls are short-circuited.
var ErrCircuitOpen = errors.New("account service circuit open")
