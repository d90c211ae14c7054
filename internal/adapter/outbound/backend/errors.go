package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrAPI is matched by every *APIError: the backend answered with a non-success status.
	ErrAPI = errors.New("api error")

	// ErrTransport is matched by every *TransportError: no response was received.
	ErrTransport = errors.New("transport error")

	// ErrUnsupportedMethod is returned for methods other than GET and POST.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	// Method is the HTTP method of the failed call.
	Method string
	// Path is the endpoint path, including any query string.
	Path string
	// StatusCode is the HTTP status code.
	StatusCode int
	// StatusText is the reason phrase (e.g. "Not Found").
	StatusText string
	// Body is the response body text; empty when it could not be read.
	Body string
}

// Error returns a message embedding method, path, status and body.
func (e *APIError) Error() string {
	return fmt.Sprintf("API %s %s failed: %d %s %s", e.Method, e.Path, e.StatusCode, e.StatusText, e.Body)
}

// Is supports errors.Is(err, ErrAPI).
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// TransportError is returned when the request never reached the backend or
// the response never arrived. It carries no status code.
type TransportError struct {
	Method string
	Path   string
	// Err is the underlying error from the HTTP client.
	Err error
}

// Error returns a human-readable description of the transport failure.
func (e *TransportError) Error() string {
	return fmt.Sprintf("API %s %s failed: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is(err, ErrTransport).
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError is returned when a response advertised as JSON does not parse.
type DecodeError struct {
	Method string
	Path   string
	Body   string
}

// Error returns a human-readable description of the decode failure.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("API %s %s returned invalid JSON: %q", e.Method, e.Path, truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
