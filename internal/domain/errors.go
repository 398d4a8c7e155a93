package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsMissing signals an empty control login or password.
	ErrCredentialsMissing = errors.New("credentials missing")
	// ErrUpstream signals a failed CHAOS request (network, HTTP status or API error).
	ErrUpstream = errors.New("chaos api error")
	// ErrMalformedResponse signals a response body that is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoData signals a response without the requested command key.
	ErrNoData = errors.New("no data in response")
	// ErrServiceNotFound signals an unknown service ID.
	ErrServiceNotFound = errors.New("service not found")
	// ErrAttributeMissing signals a line attribute absent from the response.
	ErrAttributeMissing = errors.New("attribute missing")
	// ErrInvalidAttribute signals an attribute that cannot be parsed as a number.
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// StatusError is returned for non-2xx CHAOS responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http status %d", ErrUpstream.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: http status %d: %s", ErrUpstream.Error(), e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }
