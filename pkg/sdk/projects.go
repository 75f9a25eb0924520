package annodex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annodex-io/annodex/internal/domain"
)

// ProjectService manages projects.
type ProjectService struct {
	svc        projectUseCase
	superadmin string
	obs        *observer
}

// Create creates a project; the actor becomes its ADMIN.
func (s *ProjectService) Create(
	ctx context.Context, actor Actor, id, name, description, folder string,
) (_ ProjectInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("projects.create", start, err) }()

	p, err := s.svc.Create(ctx, actor.toUser(s.superadmin), id, name, description, folder)
	if err != nil {
		return ProjectInfo{}, fmt.Errorf("create project: %w", err)
	}
	return fromInternalProject(p), nil
}

// Ensure creates a project if it does not exist. If it already exists,
// returns its info.
func (s *ProjectService) Ensure(
	ctx context.Context, actor Actor, id, name, description, folder string,
) (_ ProjectInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("projects.ensure", start, err) }()

	p, err := s.svc.Create(ctx, actor.toUser(s.superadmin), id, name, description, folder)
	if err == nil {
		return fromInternalProject(p), nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return ProjectInfo{}, fmt.Errorf("ensure project: %w", err)
	}

	existing, err := s.svc.Get(ctx, actor.toUser(s.superadmin), id)
	if err != nil {
		return ProjectInfo{}, fmt.Errorf("ensure project: %w", err)
	}
	return fromInternalProject(existing), nil
}

// Get retrieves project metadata by id.
func (s *ProjectService) Get(
	ctx context.Context, actor Actor, id string,
) (_ ProjectInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("projects.get", start, err) }()

	p, err := s.svc.Get(ctx, actor.toUser(s.superadmin), id)
	if err != nil {
		return ProjectInfo{}, fmt.Errorf("get project: %w", err)
	}
	return fromInternalProject(p), nil
}

// List returns the projects the actor holds at least LISTER on.
func (s *ProjectService) List(ctx context.Context, actor Actor) (_ []ProjectInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("projects.list", start, err) }()

	projects, err := s.svc.List(ctx, actor.toUser(s.superadmin))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]ProjectInfo, len(projects))
	for i, p := range projects {
		out[i] = fromInternalProject(p)
	}
	return out, nil
}

// Delete removes a project with its documents and role rules.
func (s *ProjectService) Delete(ctx context.Context, actor Actor, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("projects.delete", start, err) }()

	if err = s.svc.Delete(ctx, actor.toUser(s.superadmin), id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
