// Package roles handles role-rule administration: granting, revoking and
// listing rules, and reporting the caller's own resolved role. Mutations
// require ADMIN on the targeted context.
package roles

import (
	"context"
	"fmt"

	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Service handles role-rule administration.
type Service struct {
	rules    RuleStore
	guard    Guard
	resolver Resolver
}

// New creates a roles service.
func New(rules RuleStore, guard Guard, res Resolver) *Service {
	return &Service{rules: rules, guard: guard, resolver: res}
}

// Grant creates a new rule, failing when the (pattern, context) pair
// already has one.
func (s *Service) Grant(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error) {
	rule, err := buildRule(pattern, context, r)
	if err != nil {
		return role.Rule{}, err
	}
	if err := s.guard.Require(ctx, u, context, role.Admin); err != nil {
		return role.Rule{}, err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return role.Rule{}, fmt.Errorf("create rule: %w", err)
	}
	return rule, nil
}

// Set creates or replaces the rule for the (pattern, context) pair.
func (s *Service) Set(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error) {
	rule, err := buildRule(pattern, context, r)
	if err != nil {
		return role.Rule{}, err
	}
	if err := s.guard.Require(ctx, u, context, role.Admin); err != nil {
		return role.Rule{}, err
	}
	if err := s.rules.Put(ctx, rule); err != nil {
		return role.Rule{}, fmt.Errorf("put rule: %w", err)
	}
	return rule, nil
}

// Revoke deletes the rule for the (pattern, context) pair. With
// ignoreMissing the revocation is idempotent.
func (s *Service) Revoke(ctx context.Context, u user.User, pattern, context string, ignoreMissing bool) error {
	p, err := role.ParsePattern(pattern)
	if err != nil {
		return err
	}
	if err := role.ValidateContext(context); err != nil {
		return err
	}
	if err := s.guard.Require(ctx, u, context, role.Admin); err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, p, context, ignoreMissing); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// ListContext returns the rules of one context, optionally only those at
// or above min. Project members at READER may inspect their project's
// rules; the server-wide listing stays ADMIN only.
func (s *Service) ListContext(ctx context.Context, u user.User, context string, min role.Role) ([]role.Rule, error) {
	if err := role.ValidateContext(context); err != nil {
		return nil, err
	}
	needed := role.Reader
	if role.IsServerContext(context) {
		needed = role.Admin
	}
	if err := s.guard.Require(ctx, u, context, needed); err != nil {
		return nil, err
	}
	rules, err := s.rules.List(ctx, role.Filter{Contexts: []string{context}, MinRole: min})
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// ResolveSelf reports the caller's own effective role on a context.
// Open to every caller.
func (s *Service) ResolveSelf(ctx context.Context, u user.User, context string) (role.Rule, error) {
	rule, err := s.resolver.Resolve(ctx, u, context, resolver.Options{IncludeGlobalAdmin: true})
	if err != nil {
		return role.Rule{}, fmt.Errorf("resolve self: %w", err)
	}
	return rule, nil
}

func buildRule(pattern, context string, r role.Role) (role.Rule, error) {
	p, err := role.ParsePattern(pattern)
	if err != nil {
		return role.Rule{}, err
	}
	return role.New(p, context, r)
}
