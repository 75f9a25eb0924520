package annodex

import "github.com/annodex-io/annodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrAlreadyExists   = domain.ErrAlreadyExists
	ErrInvalidRole     = domain.ErrInvalidRole
	ErrInvalidPattern  = domain.ErrInvalidPattern
	ErrInvalidContext  = domain.ErrInvalidContext
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrInvalidDocument = domain.ErrInvalidDocument
	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrForbidden       = domain.ErrForbidden
	ErrKeyRestricted   = domain.ErrKeyRestricted
)
