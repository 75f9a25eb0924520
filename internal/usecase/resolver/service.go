// Package resolver computes the role a caller holds on a context from the
// stored role rules, the caller's identity flags and the caller's API-key
// scope. Resolution never fails on "no access": it returns a NONE rule.
package resolver

import (
	"context"
	"fmt"

	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
)

// Options tune a single resolution.
type Options struct {
	// IncludeGlobalAdmin promotes a server ADMIN to ADMIN on any project
	// context. Server-context lookups ignore it.
	IncludeGlobalAdmin bool
	// SkipRestrictions reports the role the identity would hold without
	// its API-key ceilings. The guard uses this to tell a true permission
	// denial apart from a key-scope denial.
	SkipRestrictions bool
}

// Service resolves caller roles. It holds no cache: every resolution
// queries the store so role changes take effect immediately.
type Service struct {
	rules RuleStore
}

// New creates a resolver service.
func New(rules RuleStore) *Service {
	return &Service{rules: rules}
}

// Resolve computes the rule governing the caller on one context. It always
// returns a rule; when nothing matches, the rule carries role NONE.
func (s *Service) Resolve(ctx context.Context, u user.User, context string, opts Options) (role.Rule, error) {
	resolved, err := s.ResolveMany(ctx, u, []string{context}, opts)
	if err != nil {
		return role.Rule{}, err
	}
	return resolved[context], nil
}

// ResolveMany computes the caller's rule for each of the given contexts in
// a single store query. Used by listing endpoints that filter many
// projects by the caller's access.
func (s *Service) ResolveMany(ctx context.Context, u user.User, contexts []string, opts Options) (map[string]role.Rule, error) {
	for _, c := range contexts {
		if err := role.ValidateContext(c); err != nil {
			return nil, err
		}
	}

	out := make(map[string]role.Rule, len(contexts))

	// No-auth deployments and the recovery admin hold ADMIN everywhere,
	// before any store lookup.
	if u.AuthDisabled() || u.Superadmin() {
		for _, c := range contexts {
			out[c] = role.Reconstruct(selfPattern(u), c, role.Admin)
		}
		return out, nil
	}

	queried := contexts
	withServer := opts.IncludeGlobalAdmin && !containsServer(contexts)
	if withServer {
		queried = append(append([]string(nil), contexts...), role.ServerContext)
	}

	rules, err := s.rules.List(ctx, role.Filter{
		Patterns: role.CandidatesFor(u.Email()),
		Contexts: queried,
	})
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	best := make(map[string]role.Rule, len(queried))
	for _, r := range rules {
		cur, ok := best[r.Context()]
		if !ok || r.Pattern().Specificity() > cur.Pattern().Specificity() {
			best[r.Context()] = r
		}
	}

	globalAdmin := opts.IncludeGlobalAdmin && capGuestAdmin(best[role.ServerContext]).Role() == role.Admin

	for _, c := range contexts {
		resolved, ok := best[c]
		if !ok {
			resolved = role.NoAccess(c)
		}

		// The guest cap applies to the matched rule only. It runs before
		// the override so a server ADMIN lands as ADMIN even on projects
		// where the best match is a guest rule or no rule at all.
		resolved = capGuestAdmin(resolved)

		if globalAdmin && !role.IsServerContext(c) {
			resolved = resolved.WithRole(role.Admin)
		}

		if !opts.SkipRestrictions {
			if r := u.Restrictions(); r != nil {
				resolved = resolved.WithRole(r.Clamp(c, resolved.Role()))
			}
		}

		out[c] = resolved
	}

	return out, nil
}

// capGuestAdmin lowers a guest-matched ADMIN to WRITER. A guest rule
// never confers ADMIN on callers matched by it.
func capGuestAdmin(r role.Rule) role.Rule {
	if r.Role() == role.Admin && r.Pattern().Kind() == role.Guest {
		return r.WithRole(role.Writer)
	}
	return r
}

// selfPattern names the caller in short-circuit rules: the exact address
// when known, else the guest wildcard.
func selfPattern(u user.User) role.Pattern {
	if u.IsAnonymous() {
		return role.GuestPattern
	}
	p, err := role.ExactPattern(u.Email())
	if err != nil {
		return role.GuestPattern
	}
	return p
}

func containsServer(contexts []string) bool {
	for _, c := range contexts {
		if role.IsServerContext(c) {
			return true
		}
	}
	return false
}
