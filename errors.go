package intelinfo

import (
	"errors"
	"fmt"
)

// RequestError is returned when the server responds with a non-2xx status.
// Body carries the raw response text so callers can surface the server's
// explanation.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Body)
}

// NewRequestError constructs a RequestError from a status code and body text.
func NewRequestError(status int, body string) *RequestError {
	return &RequestError{Status: status, Body: body}
}

// NetworkError is returned when a request never produced an HTTP response,
// such as a refused connection or DNS failure. BaseURL names the origin that
// was unreachable.
type NetworkError struct {
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to reach %s: %v", e.BaseURL, e.Err)
}

// Unwrap allows errors.Is / errors.As to reach the transport cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError constructs a NetworkError wrapping a transport failure.
func NewNetworkError(baseURL string, err error) *NetworkError {
	return &NetworkError{BaseURL: baseURL, Err: err}
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == status
}
