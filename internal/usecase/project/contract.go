package project

import (
	"context"

	domproj "github.com/annodex-io/annodex/internal/domain/project"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Repository defines the storage contract for projects.
type Repository interface {
	Create(ctx context.Context, p domproj.Project) error
	Get(ctx context.Context, id string) (domproj.Project, error)
	List(ctx context.Context) ([]domproj.Project, error)
	Delete(ctx context.Context, id string) error
}

// RuleStore installs and cascades role rules on project lifecycle events.
type RuleStore interface {
	Put(ctx context.Context, rule role.Rule) error
	DeleteContext(ctx context.Context, context string) error
}

// Guard enforces minimum-role checks.
type Guard interface {
	Require(ctx context.Context, u user.User, context string, min role.Role) error
}

// Resolver computes the caller's role on many contexts at once.
type Resolver interface {
	ResolveMany(ctx context.Context, u user.User, contexts []string, opts resolver.Options) (map[string]role.Rule, error)
}
