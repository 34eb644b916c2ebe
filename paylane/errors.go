package paylane

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownOperation is returned by Do when the operation name is not in the table.
var ErrUnknownOperation = errors.New("unknown operation")

// ServerConnectionError means no HTTP response was obtained from the API server.
type ServerConnectionError struct {
	BaseURL string
	Err     error
}

func (e *ServerConnectionError) Error() string {
	return fmt.Sprintf("API Server at: %s seems to be away", e.BaseURL)
}

func (e *ServerConnectionError) Unwrap() error {
	return e.Err
}

// HTTPCallError is returned when the API answers with one of the status codes
// listed in httpErrorStatuses.
type HTTPCallError struct {
	StatusCode int
	Reason     string
}

func (e *HTTPCallError) Error() string {
	return fmt.Sprintf("API responded with an error: [%d] %d %s", e.StatusCode, e.StatusCode, e.Reason)
}

// httpErrorStatuses are the only status codes treated as failures at the
// transport layer. Everything else is decoded and judged by its body.
var httpErrorStatuses = map[int]struct{}{
	http.StatusBadRequest:          {},
	http.StatusUnauthorized:        {},
	http.StatusInternalServerError: {},
	http.StatusNotImplemented:      {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

func newHTTPCallError(statusCode int) (*HTTPCallError, bool) {
	if _, ok := httpErrorStatuses[statusCode]; !ok {
		return nil, false
	}
	return &HTTPCallError{
		StatusCode: statusCode,
		Reason:     http.StatusText(statusCode),
	}, true
}

func IsServerConnectionError(err error) (*ServerConnectionError, bool) {
	var connErr *ServerConnectionError
	ok := errors.As(err, &connErr)
	return connErr, ok
}

func IsHTTPCallError(err error) (*HTTPCallError, bool) {
	var callErr *HTTPCallError
	ok := errors.As(err, &callErr)
	return callErr, ok
}
