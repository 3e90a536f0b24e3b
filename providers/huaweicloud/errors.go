package huaweicloud

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors for API operations.
var (
	// ErrUnauthorized indicates the provider rejected the signature or credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the addressed zone or record set does not exist.
	ErrNotFound = errors.New("not found")
)

// SigningInputError reports request fields that cannot be put into a
// canonical request.
type SigningInputError struct {
	Field  string
	Reason string
}

func (e *SigningInputError) Error() string {
	return fmt.Sprintf("signing input: %s: %s", e.Field, e.Reason)
}

// TransportError wraps connection, TLS and proxy failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is returned for responses outside [200,300).
// Body holds the raw response body for diagnostics.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is maps well-known status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized returns true if the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound returns true if the error indicates a missing zone or record set.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport returns true if err was caused by the HTTP exchange itself.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsSigningInput returns true if err was raised while building the signature.
func IsSigningInput(err error) bool {
	var se *SigningInputError
	return errors.As(err, &se)
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
