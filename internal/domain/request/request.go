package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/annodex-io/annodex/internal/domain"
)

// Status is the approval state. pending is the only non-terminal state.
type Status string

const (
	// StatusPending awaits an administrator's decision.
	StatusPending Status = "pending"
	// StatusApproved is terminal; the side effect has been applied.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; no side effect.
	StatusRejected Status = "rejected"
)

// ParseStatus converts a status name to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, s)
	}
}

// Request is a user-submitted permission request. Its storage identity is
// (kind, email, project-or-empty): resubmitting the same triple replaces
// the prior pending request and refreshes the timestamp. The uuid is a
// secondary handle for transport.
type Request struct {
	id          string
	email       string
	submittedAt time.Time
	status      Status
	payload     Payload
}

// New creates a pending request for the given submitter.
func New(email string, payload Payload) (Request, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Request{}, domain.ErrUnauthenticated
	}
	if payload.Kind() == "" {
		return Request{}, fmt.Errorf("%w: missing payload", domain.ErrInvalidRequest)
	}
	return Request{
		id:          uuid.NewString(),
		email:       email,
		submittedAt: time.Now().UTC(),
		status:      StatusPending,
		payload:     payload,
	}, nil
}

// ReconstructRequest creates a Request without validation (storage hydration).
func ReconstructRequest(id, email string, submittedAt time.Time, status Status, payload Payload) Request {
	return Request{id: id, email: email, submittedAt: submittedAt, status: status, payload: payload}
}

// ID returns the transport handle.
func (r Request) ID() string { return r.id }

// Email returns the submitter's address.
func (r Request) Email() string { return r.email }

// SubmittedAt returns the (last) submission time.
func (r Request) SubmittedAt() time.Time { return r.submittedAt }

// Status returns the approval state.
func (r Request) Status() Status { return r.status }

// Payload returns the request variant.
func (r Request) Payload() Payload { return r.payload }

// Key returns the storage identity (kind, email, project-or-empty).
func (r Request) Key() string {
	return StorageKey(r.payload.Kind(), r.email, r.payload.Project())
}

// StorageKey builds the identity triple for a request.
func StorageKey(kind Kind, email, project string) string {
	return fmt.Sprintf("%s/%s/%s", kind, strings.ToLower(email), project)
}

// Resolved returns a copy in the given terminal status. Only pending
// requests can transition.
func (r Request) Resolved(status Status) (Request, error) {
	if r.status != StatusPending {
		return Request{}, fmt.Errorf("%w: request %s is already %s", domain.ErrInvalidRequest, r.id, r.status)
	}
	if status != StatusApproved && status != StatusRejected {
		return Request{}, fmt.Errorf("%w: cannot transition to %q", domain.ErrInvalidRequest, status)
	}
	r.status = status
	return r, nil
}
