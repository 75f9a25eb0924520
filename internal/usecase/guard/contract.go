package guard

import (
	"context"

	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Resolver computes the caller's role on a context.
type Resolver interface {
	Resolve(ctx context.Context, u user.User, context string, opts resolver.Options) (role.Rule, error)
}
