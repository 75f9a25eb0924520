package request

import (
	"context"

	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
)

// Store defines the storage contract for permission requests.
type Store interface {
	Upsert(ctx context.Context, req domreq.Request) error
	GetByID(ctx context.Context, id string) (domreq.Request, error)
	Delete(ctx context.Context, kind domreq.Kind, email, project string) error
	ListByEmail(ctx context.Context, email string) ([]domreq.Request, error)
	ListPending(ctx context.Context) ([]domreq.Request, error)
}

// RuleStore applies approved role grants.
type RuleStore interface {
	Put(ctx context.Context, rule role.Rule) error
}

// Projects applies approved project creations.
type Projects interface {
	CreateWithAdmin(ctx context.Context, p domproj.Project, adminEmail string) error
}

// Guard enforces minimum-role checks.
type Guard interface {
	Require(ctx context.Context, u user.User, context string, min role.Role) error
	Allowed(ctx context.Context, u user.User, context string, min role.Role) (bool, error)
}
