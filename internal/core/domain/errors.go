package domain

import (
	"fmt"
	"net/http"
)

// A NetworkError reports a failed request or a non-success status.
type NetworkError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error: %d %s", e.StatusCode, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the same request may succeed later.
func (e *NetworkError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// A ParseError reports a response body that is not a product array.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
