package catalog

import (
	"fmt"
)

// ErrorClass represents a classification of catalog API failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a catalog API failure with classification context.
// Requests are never retried here; the error propagates unchanged and
// any retry is the caller's decision.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Endpoint   string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error on %s: %v", e.Class, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("catalog %s error on %s (status %d)", e.Class, e.Endpoint, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
