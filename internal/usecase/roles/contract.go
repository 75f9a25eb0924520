package roles

import (
	"context"

	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// RuleStore defines the storage contract for role administration.
type RuleStore interface {
	Create(ctx context.Context, rule role.Rule) error
	Put(ctx context.Context, rule role.Rule) error
	Delete(ctx context.Context, pattern role.Pattern, context string, ignoreMissing bool) error
	List(ctx context.Context, f role.Filter) ([]role.Rule, error)
}

// Guard enforces minimum-role checks.
type Guard interface {
	Require(ctx context.Context, u user.User, context string, min role.Role) error
}

// Resolver computes the caller's own role.
type Resolver interface {
	Resolve(ctx context.Context, u user.User, context string, opts resolver.Options) (role.Rule, error)
}
