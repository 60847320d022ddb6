// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError means the operation completed without error.
	CategoryNoError Category = iota
	// CategoryUnauthenticated The caller has no valid session.
	CategoryUnauthenticated
	// CategoryNotAuthorized The caller's roles or claims do not satisfy the
	// mutation's declared requirement.
	CategoryNotAuthorized
	// CategoryVerificationFailed The challenge response was rejected by the
	// ledger-side verifier. The caller may retry with a corrected code and a
	// fresh challenge.
	CategoryVerificationFailed
	// CategoryVerificationMalformed The portal returned a challenge missing its
	// secret or salt, or no challenge at all. Never retried automatically.
	CategoryVerificationMalformed
	// CategoryTransactionReverted The transaction was mined but reverted.
	CategoryTransactionReverted
	// CategoryTransactionTimeout No receipt appeared within the mining deadline.
	CategoryTransactionTimeout
	// CategoryIndexTimeout The expected record did not appear in the indexed
	// read model within the retry budget.
	CategoryIndexTimeout
	// CategoryServiceUnavailable A dependent service is unreachable; safe to
	// retry at a higher layer.
	CategoryServiceUnavailable
	// CategoryDataError The client sent invalid data in the request.
	CategoryDataError
	// CategoryGeneralError The service failed in an unexpected way.
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryUnauthenticated:
		return "CategoryUnauthenticated"
	case CategoryNotAuthorized:
		return "CategoryNotAuthorized"
	case CategoryVerificationFailed:
		return "CategoryVerificationFailed"
	case CategoryVerificationMalformed:
		return "CategoryVerificationMalformed"
	case CategoryTransactionReverted:
		return "CategoryTransactionReverted"
	case CategoryTransactionTimeout:
		return "CategoryTransactionTimeout"
	case CategoryIndexTimeout:
		return "CategoryIndexTimeout"
	case CategoryServiceUnavailable:
		return "CategoryServiceUnavailable"
	case CategoryDataError:
		return "CategoryDataError"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific type that
// is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
	// Meta carries structured diagnostic data (attempt counts, elapsed time,
	// block numbers). Secrets and user-supplied codes must never be put here.
	Meta map[string]any
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// WithMeta attaches a diagnostic key/value pair and returns the error.
func (err *ServiceError) WithMeta(key string, value any) *ServiceError {
	if err.Meta == nil {
		err.Meta = make(map[string]any)
	}
	err.Meta[key] = value
	return err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// Meta returns the diagnostic metadata of a ServiceError, or nil.
func Meta(err error) map[string]any {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Meta
	}
	return nil
}

// IsRetryable reports whether the error is transient from the caller's point
// of view. Local validation failures and definitive outcomes are not.
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch svcErr.Category {
	case CategoryServiceUnavailable, CategoryTransactionTimeout, CategoryIndexTimeout:
		return true
	default:
		return false
	}
}

// GeneralError returns a general service error
// this error message sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// UnauthenticatedError returns an error with category CategoryUnauthenticated
func UnauthenticatedError(err error, message string) error {
	if err == nil {
		err = errors.New("unauthenticated: " + message)
	}
	return &ServiceError{
		Category: CategoryUnauthenticated,
		Message:  message,
		Err:      err,
	}
}

// NotAuthorizedError returns an error with category CategoryNotAuthorized.
// The unmet requirement is attached as metadata for diagnostics.
func NotAuthorizedError(err error, message, requirement string) error {
	if err == nil {
		err = errors.New("not authorized: " + message)
	}
	svcErr := &ServiceError{
		Category: CategoryNotAuthorized,
		Message:  message,
		Err:      err,
	}
	return svcErr.WithMeta("requirement", requirement)
}

// VerificationFailedError returns an error with category CategoryVerificationFailed
func VerificationFailedError(err error, message string) error {
	if err == nil {
		err = errors.New("verification failed: " + message)
	}
	return &ServiceError{
		Category: CategoryVerificationFailed,
		Message:  message,
		Err:      err,
	}
}

// MalformedChallengeError returns an error with category CategoryVerificationMalformed
func MalformedChallengeError(err error, message string) error {
	if err == nil {
		err = errors.New("malformed challenge: " + message)
	}
	return &ServiceError{
		Category: CategoryVerificationMalformed,
		Message:  message,
		Err:      err,
	}
}

// RevertedError returns an error with category CategoryTransactionReverted
func RevertedError(err error, message string) *ServiceError {
	if err == nil {
		err = errors.New("transaction reverted: " + message)
	}
	return &ServiceError{
		Category: CategoryTransactionReverted,
		Message:  message,
		Err:      err,
	}
}

// TransactionTimeoutError returns an error with category CategoryTransactionTimeout
func TransactionTimeoutError(err error, message string) *ServiceError {
	if err == nil {
		err = errors.New("transaction timeout: " + message)
	}
	return &ServiceError{
		Category: CategoryTransactionTimeout,
		Message:  message,
		Err:      err,
	}
}

// IndexTimeoutError returns an error with category CategoryIndexTimeout
func IndexTimeoutError(err error, message string) *ServiceError {
	if err == nil {
		err = errors.New("index timeout: " + message)
	}
	return &ServiceError{
		Category: CategoryIndexTimeout,
		Message:  message,
		Err:      err,
	}
}

// UnavailableError returns an error with category CategoryServiceUnavailable
func UnavailableError(err error, message string) error {
	if err == nil {
		err = errors.New("service unavailable: " + message)
	}
	return &ServiceError{
		Category: CategoryServiceUnavailable,
		Message:  message,
		Err:      err,
	}
}

// BadRequestError returns an error with category CategoryDataError
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request: " + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryUnauthenticated:
		return http.StatusUnauthorized
	case CategoryNotAuthorized, CategoryVerificationFailed:
		return http.StatusForbidden
	case CategoryVerificationMalformed:
		return http.StatusBadGateway
	case CategoryTransactionReverted:
		return http.StatusUnprocessableEntity
	case CategoryTransactionTimeout, CategoryIndexTimeout:
		return http.StatusGatewayTimeout
	case CategoryServiceUnavailable:
		return http.StatusServiceUnavailable
	case CategoryDataError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
