package aaisp

import "github.com/kailas-cloud/aaisp/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCredentialsMissing = domain.ErrCredentialsMissing
	ErrUpstream           = domain.ErrUpstream
	ErrMalformedResponse  = domain.ErrMalformedResponse
	ErrNoData             = domain.ErrNoData
	ErrServiceNotFound    = domain.ErrServiceNotFound
	ErrAttributeMissing   = domain.ErrAttributeMissing
	ErrInvalidAttribute   = domain.ErrInvalidAttribute
)

// StatusError is returned (wrapped) when CHAOS answers with a non-2xx status.
// Use errors.As() to inspect the status code.
type StatusError = domain.StatusError
