package render

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by an Entry when the URL matches no route.
var ErrNotFound = errors.New("render: no matching route")

// Error is a failed render.
type Error struct {
	// Code is the HTTP status the failure maps to.
	Code int

	// URL is the request URI that was being rendered.
	URL string

	// Err is the underlying failure.
	Err error

	// Stack is the goroutine stack captured when the failure was recorded.
	Stack []byte
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying failure.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for e.
func (e *Error) StatusCode() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// StatusCode maps any render error to an HTTP status: 404 for ErrNotFound,
// the carried code for a *Error, 500 otherwise.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode()
	}
	return http.StatusInternalServerError
}

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
