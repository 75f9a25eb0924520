// Package guard enforces minimum-role checks in front of every protected
// operation. A denial distinguishes "the identity lacks access" from "the
// identity would have access but its API key is scoped below it".
package guard

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Decision labels recorded on the authorization metric.
const (
	DecisionAllowed       = "allowed"
	DecisionForbidden     = "forbidden"
	DecisionKeyRestricted = "key_restricted"
)

// Service performs authorization checks. Checks always query the store
// fresh so a revoked role takes effect on the next call.
type Service struct {
	resolver  Resolver
	decisions *prometheus.CounterVec
}

// New creates a guard. decisions can be nil.
func New(r Resolver, decisions *prometheus.CounterVec) *Service {
	return &Service{resolver: r, decisions: decisions}
}

// Require succeeds when the caller holds at least min on the context.
// The effective (key-clamped) role is checked first; when it falls short,
// a second unclamped resolution decides which denial applies.
func (s *Service) Require(ctx context.Context, u user.User, context string, min role.Role) error {
	effective, err := s.resolver.Resolve(ctx, u, context, resolver.Options{IncludeGlobalAdmin: true})
	if err != nil {
		return err
	}
	if effective.Role().AtLeast(min) {
		s.count(DecisionAllowed)
		return nil
	}

	unrestricted, err := s.resolver.Resolve(ctx, u, context, resolver.Options{
		IncludeGlobalAdmin: true,
		SkipRestrictions:   true,
	})
	if err != nil {
		return err
	}
	if !unrestricted.Role().AtLeast(min) {
		s.count(DecisionForbidden)
		return domain.NewForbidden(u.Identity(), context, min.String())
	}

	s.count(DecisionKeyRestricted)
	return domain.NewKeyRestricted(keyName(u), context, min.String())
}

// RequireServer checks the caller's role on the server context.
func (s *Service) RequireServer(ctx context.Context, u user.User, min role.Role) error {
	return s.Require(ctx, u, role.ServerContext, min)
}

// Allowed reports whether Require would succeed, swallowing the denial.
// Store errors still surface.
func (s *Service) Allowed(ctx context.Context, u user.User, context string, min role.Role) (bool, error) {
	err := s.Require(ctx, u, context, min)
	switch {
	case err == nil:
		return true, nil
	case isDenial(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) count(decision string) {
	if s.decisions != nil {
		s.decisions.WithLabelValues(decision).Inc()
	}
}

func keyName(u user.User) string {
	if r := u.Restrictions(); r != nil {
		return r.KeyName()
	}
	return ""
}

func isDenial(err error) bool {
	return errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrKeyRestricted)
}
