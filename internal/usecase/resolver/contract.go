package resolver

import (
	"context"

	"github.com/annodex-io/annodex/internal/domain/role"
)

// RuleStore defines the storage contract for role resolution.
type RuleStore interface {
	List(ctx context.Context, f role.Filter) ([]role.Rule, error)
}
