package broker

import (
	"errors"
	"fmt"
)

// Category classifies a broker API failure into the closed set the agent
// layer folds back into the model's context.
type Category string

const (
	CategoryAuthFailed   Category = "AUTH_FAILED"
	CategoryRateLimited  Category = "RATE_LIMITED"
	CategoryMarketClosed Category = "MARKET_CLOSED"
	CategoryNotFound     Category = "NOT_FOUND"
	CategoryUnknown      Category = "UNKNOWN"
)

// APIError is the uniform failure shape for all broker operations.
type APIError struct {
	Category Category
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("broker: %s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("broker: %s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a classified broker error.
func NewAPIError(category Category, message string, err error) *APIError {
	return &APIError{Category: category, Message: message, Err: err}
}

// CategoryOf extracts the failure category from an error chain.
// Errors that did not originate from the broker classify as UNKNOWN.
func CategoryOf(err error) Category {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return CategoryUnknown
}
