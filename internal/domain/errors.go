package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRole signals an unknown role name or an attempt to store NONE.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidPattern signals a malformed email pattern.
	ErrInvalidPattern = errors.New("invalid email pattern")
	// ErrInvalidContext signals a malformed project identifier.
	ErrInvalidContext = errors.New("invalid context")
	// ErrInvalidRequest signals a malformed permission request payload.
	ErrInvalidRequest = errors.New("invalid permission request")
	// ErrInvalidDocument signals a malformed document.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrUnauthenticated signals an anonymous caller on an identity-requiring action.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden signals an insufficient role for the acting identity.
	ErrForbidden = errors.New("forbidden")
	// ErrKeyRestricted signals a sufficient identity clamped down by an API key scope.
	ErrKeyRestricted = errors.New("api key restricted")
)

// ForbiddenError wraps ErrForbidden with the acting identity and the context
// it was denied on. The identity is named so 403 responses can tell the
// caller who was evaluated ("GUEST" for anonymous callers).
type ForbiddenError struct {
	Identity string
	Context  string
	Needed   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s needs %s on %s", ErrForbidden.Error(), e.Identity, e.Needed, e.Context)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbidden creates a forbidden error for the given identity.
func NewForbidden(identity, context, needed string) error {
	return &ForbiddenError{Identity: identity, Context: context, Needed: needed}
}

// KeyRestrictedError wraps ErrKeyRestricted with the name of the API key
// whose scope blocked the call. Distinct from ForbiddenError so consumers
// can tell "your identity lacks access" apart from "your key is too narrow".
type KeyRestrictedError struct {
	KeyName string
	Context string
	Needed  string
}

func (e *KeyRestrictedError) Error() string {
	return fmt.Sprintf("%s: key %q is scoped below %s on %s", ErrKeyRestricted.Error(), e.KeyName, e.Needed, e.Context)
}

func (e *KeyRestrictedError) Unwrap() error { return ErrKeyRestricted }

// NewKeyRestricted creates a key-restricted error for the given key name.
func NewKeyRestricted(keyName, context, needed string) error {
	return &KeyRestrictedError{KeyName: keyName, Context: context, Needed: needed}
}
