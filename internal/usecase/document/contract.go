package document

import (
	"context"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, project string, doc domdoc.Document) (bool, error)
	Get(ctx context.Context, project, id string) (domdoc.Document, error)
	Delete(ctx context.Context, project, id string) error
	Search(ctx context.Context, project string, q docrepo.Query) ([]domdoc.Document, int, error)
	Count(ctx context.Context, project string) (int, error)
}

// Guard enforces minimum-role checks.
type Guard interface {
	Require(ctx context.Context, u user.User, context string, min role.Role) error
}

// Resolver computes the caller's effective role, deciding whether
// document text is withheld.
type Resolver interface {
	Resolve(ctx context.Context, u user.User, context string, opts resolver.Options) (role.Rule, error)
}
