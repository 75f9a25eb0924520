package annodex

import (
	"context"
	"fmt"
	"time"

	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
)

// RequestService drives the permission-request workflow.
type RequestService struct {
	svc        requestUseCase
	superadmin string
	obs        *observer
}

// Decision pairs a request id with its new status ("approved" or
// "rejected") for batch resolution.
type Decision struct {
	ID     string
	Status string
}

// SubmitServerRole asks for a role on the server context.
func (s *RequestService) SubmitServerRole(
	ctx context.Context, actor Actor, roleName string,
) (_ PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.submit", start, err) }()

	r, err := role.Parse(roleName)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	payload, err := domreq.NewServerRole(r)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	return s.submit(ctx, actor, payload)
}

// SubmitProjectRole asks for a role on a project.
func (s *RequestService) SubmitProjectRole(
	ctx context.Context, actor Actor, project, roleName string,
) (_ PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.submit", start, err) }()

	r, err := role.Parse(roleName)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	payload, err := domreq.NewProjectRole(project, r)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	return s.submit(ctx, actor, payload)
}

// SubmitCreateProject asks for a new project with the actor as ADMIN.
func (s *RequestService) SubmitCreateProject(
	ctx context.Context, actor Actor, id, name, description, folder string,
) (_ PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.submit", start, err) }()

	payload, err := domreq.NewCreateProject(id, name, description, folder)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	return s.submit(ctx, actor, payload)
}

func (s *RequestService) submit(
	ctx context.Context, actor Actor, payload domreq.Payload,
) (PermissionRequest, error) {
	req, err := s.svc.Submit(ctx, actor.toUser(s.superadmin), payload)
	if err != nil {
		return PermissionRequest{}, fmt.Errorf("submit request: %w", err)
	}
	return fromInternalRequest(req), nil
}

// Cancel deletes the actor's own pending request.
func (s *RequestService) Cancel(ctx context.Context, actor Actor, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.cancel", start, err) }()

	if err = s.svc.Cancel(ctx, actor.toUser(s.superadmin), id); err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}
	return nil
}

// Mine returns the actor's own requests, newest first.
func (s *RequestService) Mine(ctx context.Context, actor Actor) (_ []PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.mine", start, err) }()

	reqs, err := s.svc.ListMine(ctx, actor.toUser(s.superadmin))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return fromInternalRequests(reqs), nil
}

// AdminView returns the pending requests the actor may resolve.
func (s *RequestService) AdminView(ctx context.Context, actor Actor) (_ []PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.admin_view", start, err) }()

	reqs, err := s.svc.ListAdminView(ctx, actor.toUser(s.superadmin))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return fromInternalRequests(reqs), nil
}

// Resolve decides a batch of requests all-or-nothing: every decision is
// authorized before any side effect is applied.
func (s *RequestService) Resolve(
	ctx context.Context, actor Actor, decisions []Decision,
) (_ []PermissionRequest, err error) {
	start := time.Now()
	defer func() { s.obs.observe("requests.resolve", start, err) }()

	internal := make([]requestuc.Decision, len(decisions))
	for i, d := range decisions {
		status, perr := domreq.ParseStatus(d.Status)
		if perr != nil {
			return nil, fmt.Errorf("resolve requests: %w", perr)
		}
		internal[i] = requestuc.Decision{ID: d.ID, Status: status}
	}

	resolved, err := s.svc.ResolveBatch(ctx, actor.toUser(s.superadmin), internal)
	if err != nil {
		return nil, fmt.Errorf("resolve requests: %w", err)
	}
	return fromInternalRequests(resolved), nil
}
