// Package request handles the permission-request workflow: submission,
// cancellation, admin review and batch resolution. Approval applies the
// requested change; rejection only records the decision.
package request

import (
	"context"
	"fmt"

	"github.com/annodex-io/annodex/internal/domain"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
)

// Decision is one element of a batch resolution.
type Decision struct {
	ID     string
	Status domreq.Status
}

// Service handles the permission-request workflow.
type Service struct {
	store    Store
	rules    RuleStore
	projects Projects
	guard    Guard
}

// New creates a request workflow service.
func New(store Store, rules RuleStore, projects Projects, guard Guard) *Service {
	return &Service{store: store, rules: rules, projects: projects, guard: guard}
}

// Submit records a pending request for the caller. Resubmitting the same
// (kind, project) pair replaces the prior request and refreshes its
// timestamp. Anonymous callers cannot submit.
func (s *Service) Submit(ctx context.Context, u user.User, payload domreq.Payload) (domreq.Request, error) {
	req, err := domreq.New(u.Email(), payload)
	if err != nil {
		return domreq.Request{}, err
	}
	if err := s.store.Upsert(ctx, req); err != nil {
		return domreq.Request{}, fmt.Errorf("store request: %w", err)
	}
	return req, nil
}

// Cancel deletes a request. Only the submitter can cancel, and only while
// the request is still pending.
func (s *Service) Cancel(ctx context.Context, u user.User, id string) error {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if req.Email() != u.Email() || u.IsAnonymous() {
		return domain.NewForbidden(u.Identity(), req.Payload().Context(), "own request")
	}
	if req.Status() != domreq.StatusPending {
		return fmt.Errorf("%w: request %s is already %s", domain.ErrInvalidRequest, req.ID(), req.Status())
	}
	if err := s.store.Delete(ctx, req.Payload().Kind(), req.Email(), req.Payload().Project()); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// ListMine returns the caller's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, u user.User) ([]domreq.Request, error) {
	if u.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	reqs, err := s.store.ListByEmail(ctx, u.Email())
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

// ListAdminView returns the pending requests the caller is authorized to
// resolve. Authorization decisions are memoized per (context, role) pair
// within the call.
func (s *Service) ListAdminView(ctx context.Context, u user.User) ([]domreq.Request, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	type check struct {
		context string
		min     role.Role
	}
	decided := make(map[check]bool)

	visible := make([]domreq.Request, 0, len(pending))
	for _, req := range pending {
		c := check{context: req.Payload().Context(), min: neededRole(req.Payload().Kind())}
		allowed, ok := decided[c]
		if !ok {
			allowed, err = s.guard.Allowed(ctx, u, c.context, c.min)
			if err != nil {
				return nil, err
			}
			decided[c] = allowed
		}
		if allowed {
			visible = append(visible, req)
		}
	}
	return visible, nil
}

// Resolve decides a single request.
func (s *Service) Resolve(ctx context.Context, u user.User, id string, status domreq.Status) (domreq.Request, error) {
	resolved, err := s.ResolveBatch(ctx, u, []Decision{{ID: id, Status: status}})
	if err != nil {
		return domreq.Request{}, err
	}
	return resolved[0], nil
}

// ResolveBatch decides a list of requests. Every decision is authorized
// and validated before any side effect is applied, so an unauthorized
// element fails the whole batch untouched. A store failure partway
// through application can still leave earlier decisions applied; there is
// no cross-document transaction to roll them back.
func (s *Service) ResolveBatch(ctx context.Context, u user.User, decisions []Decision) ([]domreq.Request, error) {
	if len(decisions) == 0 {
		return []domreq.Request{}, nil
	}

	// Pre-check pass: load, validate the transition and authorize.
	resolved := make([]domreq.Request, len(decisions))
	for i, d := range decisions {
		req, err := s.store.GetByID(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("get request %s: %w", d.ID, err)
		}
		next, err := req.Resolved(d.Status)
		if err != nil {
			return nil, err
		}
		if err := s.guard.Require(ctx, u, req.Payload().Context(), neededRole(req.Payload().Kind())); err != nil {
			return nil, err
		}
		resolved[i] = next
	}

	// Apply pass: side effect on approval, then the status change.
	for i, req := range resolved {
		if req.Status() == domreq.StatusApproved {
			if err := s.apply(ctx, req); err != nil {
				return nil, fmt.Errorf("apply request %s: %w", req.ID(), err)
			}
		}
		if err := s.store.Upsert(ctx, req); err != nil {
			return nil, fmt.Errorf("store request %s: %w", req.ID(), err)
		}
		resolved[i] = req
	}

	return resolved, nil
}

// apply performs the approved request's side effect.
func (s *Service) apply(ctx context.Context, req domreq.Request) error {
	p := req.Payload()
	switch p.Kind() {
	case domreq.KindServerRole, domreq.KindProjectRole:
		pattern, err := role.ExactPattern(req.Email())
		if err != nil {
			return err
		}
		rule, err := role.New(pattern, p.Context(), p.Role())
		if err != nil {
			return err
		}
		// Put upserts: an existing rule for the pair is replaced.
		if err := s.rules.Put(ctx, rule); err != nil {
			return fmt.Errorf("grant role: %w", err)
		}
		return nil

	case domreq.KindCreateProject:
		proj, err := domproj.New(p.Project(), p.Name(), p.Description(), p.Folder())
		if err != nil {
			return err
		}
		if err := s.projects.CreateWithAdmin(ctx, proj, req.Email()); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidRequest, p.Kind())
	}
}

// neededRole is the role an approver must hold on the request's context:
// ADMIN for role grants, WRITER on the server for project creation.
func neededRole(kind domreq.Kind) role.Role {
	if kind == domreq.KindCreateProject {
		return role.Writer
	}
	return role.Admin
}
