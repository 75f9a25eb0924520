package annodex

import (
	"context"
	"fmt"
	"time"

	"github.com/annodex-io/annodex/internal/domain/role"
)

// ServerContext is the context name for server-wide roles.
const ServerContext = role.ServerContext

// RoleService manages role rules and resolution.
type RoleService struct {
	svc        rolesUseCase
	superadmin string
	obs        *observer
}

// Grant creates a rule, failing with ErrAlreadyExists when the
// (pattern, context) pair already has one.
func (s *RoleService) Grant(
	ctx context.Context, actor Actor, pattern, context, roleName string,
) (_ RoleRule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("roles.grant", start, err) }()

	r, err := role.Parse(roleName)
	if err != nil {
		return RoleRule{}, fmt.Errorf("grant role: %w", err)
	}
	rule, err := s.svc.Grant(ctx, actor.toUser(s.superadmin), pattern, context, r)
	if err != nil {
		return RoleRule{}, fmt.Errorf("grant role: %w", err)
	}
	return fromInternalRule(rule), nil
}

// Set creates or replaces the rule for the (pattern, context) pair.
func (s *RoleService) Set(
	ctx context.Context, actor Actor, pattern, context, roleName string,
) (_ RoleRule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("roles.set", start, err) }()

	r, err := role.Parse(roleName)
	if err != nil {
		return RoleRule{}, fmt.Errorf("set role: %w", err)
	}
	rule, err := s.svc.Set(ctx, actor.toUser(s.superadmin), pattern, context, r)
	if err != nil {
		return RoleRule{}, fmt.Errorf("set role: %w", err)
	}
	return fromInternalRule(rule), nil
}

// Revoke deletes the rule for the (pattern, context) pair. With
// ignoreMissing the revocation is idempotent.
func (s *RoleService) Revoke(
	ctx context.Context, actor Actor, pattern, context string, ignoreMissing bool,
) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("roles.revoke", start, err) }()

	if err = s.svc.Revoke(ctx, actor.toUser(s.superadmin), pattern, context, ignoreMissing); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// List returns the rules of one context. minRole, when non-empty, keeps
// only rules at or above that level.
func (s *RoleService) List(
	ctx context.Context, actor Actor, context, minRole string,
) (_ []RoleRule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("roles.list", start, err) }()

	var min role.Role
	if minRole != "" {
		if min, err = role.Parse(minRole); err != nil {
			return nil, fmt.Errorf("list roles: %w", err)
		}
	}

	rules, err := s.svc.ListContext(ctx, actor.toUser(s.superadmin), context, min)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	out := make([]RoleRule, len(rules))
	for i, r := range rules {
		out[i] = fromInternalRule(r)
	}
	return out, nil
}

// Resolve reports the actor's own effective role on a context.
func (s *RoleService) Resolve(
	ctx context.Context, actor Actor, context string,
) (_ RoleRule, err error) {
	start := time.Now()
	defer func() { s.obs.observe("roles.resolve", start, err) }()

	rule, err := s.svc.ResolveSelf(ctx, actor.toUser(s.superadmin), context)
	if err != nil {
		return RoleRule{}, fmt.Errorf("resolve role: %w", err)
	}
	return fromInternalRule(rule), nil
}
