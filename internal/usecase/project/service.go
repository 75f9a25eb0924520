// Package project handles project lifecycle: creation with the creator
// installed as ADMIN, access-filtered listing, and deletion cascading to
// the project's role rules.
package project

import (
	"context"
	"errors"
	"fmt"

	domproj "github.com/annodex-io/annodex/internal/domain/project"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Service handles project lifecycle operations.
type Service struct {
	repo     Repository
	rules    RuleStore
	guard    Guard
	resolver Resolver
}

// New creates a project service.
func New(repo Repository, rules RuleStore, guard Guard, res Resolver) *Service {
	return &Service{repo: repo, rules: rules, guard: guard, resolver: res}
}

// Create validates and stores a new project for the caller. Requires
// WRITER on the server context; the caller becomes the project's ADMIN.
func (s *Service) Create(ctx context.Context, u user.User, id, name, description, folder string) (domproj.Project, error) {
	p, err := domproj.New(id, name, description, folder)
	if err != nil {
		return domproj.Project{}, err
	}
	if err := s.guard.Require(ctx, u, role.ServerContext, role.Writer); err != nil {
		return domproj.Project{}, err
	}
	if err := s.CreateWithAdmin(ctx, p, u.Email()); err != nil {
		return domproj.Project{}, err
	}
	return p, nil
}

// CreateWithAdmin stores a project and installs adminEmail as its ADMIN.
// Callers are already authorized (direct creation or an approved
// create-project request). An empty adminEmail installs no rule.
func (s *Service) CreateWithAdmin(ctx context.Context, p domproj.Project, adminEmail string) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	if adminEmail == "" {
		return nil
	}

	pattern, err := role.ExactPattern(adminEmail)
	if err != nil {
		return err
	}
	adminRule, err := role.New(pattern, p.ID(), role.Admin)
	if err != nil {
		return err
	}

	// Admin install failed; remove the half-created project
	if err := s.rules.Put(ctx, adminRule); err != nil {
		cleanupErr := s.repo.Delete(ctx, p.ID())
		return errors.Join(fmt.Errorf("install project admin: %w", err), cleanupErr)
	}

	return nil
}

// Get retrieves a project. Requires LISTER on it.
func (s *Service) Get(ctx context.Context, u user.User, id string) (domproj.Project, error) {
	if err := s.guard.Require(ctx, u, id, role.Lister); err != nil {
		return domproj.Project{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns the projects the caller holds at least LISTER on, in one
// rule query across all projects.
func (s *Service) List(ctx context.Context, u user.User) ([]domproj.Project, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(all) == 0 {
		return []domproj.Project{}, nil
	}

	contexts := make([]string, len(all))
	for i, p := range all {
		contexts[i] = p.ID()
	}

	resolved, err := s.resolver.ResolveMany(ctx, u, contexts, resolver.Options{IncludeGlobalAdmin: true})
	if err != nil {
		return nil, fmt.Errorf("resolve project access: %w", err)
	}

	visible := make([]domproj.Project, 0, len(all))
	for _, p := range all {
		if resolved[p.ID()].Role().AtLeast(role.Lister) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// Delete removes a project, its documents and its role rules. Requires
// ADMIN on it.
func (s *Service) Delete(ctx context.Context, u user.User, id string) error {
	if err := s.guard.Require(ctx, u, id, role.Admin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := s.rules.DeleteContext(ctx, id); err != nil {
		return fmt.Errorf("cascade role rules: %w", err)
	}
	return nil
}
