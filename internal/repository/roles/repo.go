// Package roles implements the role store: one hash per role rule, indexed
// for filtered lookups by pattern set, context and minimum role level.
package roles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// IndexName is the FT index over role rule hashes.
const IndexName = "annodex:role-idx"

const keyPrefix = "annodex:role:"

// maxRules bounds a single List query. Role rules are administrative data;
// a context with more rules than this is a configuration error.
const maxRules = 10000

// store is the consumer interface for the role store (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the role store over the document store.
type Repo struct {
	store store
}

// New creates a role repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the FT index over rule hashes if it does not exist.
// Called once at startup before any query.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check role index: %w", err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag("context").
		Tag("pattern").
		Numeric("role_level").
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create role index: %w", err)
	}
	return nil
}

// Put creates or replaces the rule for its (pattern, context) pair.
func (r *Repo) Put(ctx context.Context, rule role.Rule) error {
	if err := r.store.HSet(ctx, ruleKey(rule.Context(), rule.Pattern()), ruleToHash(rule)); err != nil {
		return fmt.Errorf("hset rule %s/%s: %w", rule.Context(), rule.Pattern(), err)
	}
	return nil
}

// Create stores the rule, failing when the (pattern, context) pair already
// has one.
func (r *Repo) Create(ctx context.Context, rule role.Rule) error {
	key := ruleKey(rule.Context(), rule.Pattern())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check rule exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	if err := r.store.HSet(ctx, key, ruleToHash(rule)); err != nil {
		return fmt.Errorf("hset rule %s/%s: %w", rule.Context(), rule.Pattern(), err)
	}
	return nil
}

// Get retrieves the rule for a (pattern, context) pair.
func (r *Repo) Get(ctx context.Context, pattern role.Pattern, context string) (role.Rule, error) {
	m, err := r.store.HGetAll(ctx, ruleKey(context, pattern))
	if err != nil {
		return role.Rule{}, fmt.Errorf("hgetall rule %s/%s: %w", context, pattern, err)
	}
	if len(m) == 0 {
		return role.Rule{}, domain.ErrNotFound
	}
	return ruleFromHash(m)
}

// Delete removes the rule for a (pattern, context) pair. With
// ignoreMissing the delete is idempotent; otherwise a missing rule is
// domain.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, pattern role.Pattern, context string, ignoreMissing bool) error {
	key := ruleKey(context, pattern)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check rule exists: %w", err)
	}
	if !exists {
		if ignoreMissing {
			return nil
		}
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del rule %s/%s: %w", context, pattern, err)
	}
	return nil
}

// List returns all rules matching the filter, sorted by context then by
// descending pattern specificity. Filtering runs server-side via the FT
// index, including the minimum-role numeric range.
func (r *Repo) List(ctx context.Context, f role.Filter) ([]role.Rule, error) {
	res, err := r.store.SearchList(ctx, IndexName, buildQuery(f), 0, maxRules, nil)
	if err != nil {
		return nil, fmt.Errorf("search rules: %w", err)
	}

	rules := make([]role.Rule, 0, len(res.Entries))
	for _, e := range res.Entries {
		rule, err := ruleFromHash(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse rule %s: %w", e.Key, err)
		}
		rules = append(rules, rule)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Context() != rules[j].Context() {
			return rules[i].Context() < rules[j].Context()
		}
		return rules[i].Pattern().Specificity() > rules[j].Pattern().Specificity()
	})

	return rules, nil
}

// Count returns the number of rules matching the filter, without fetching
// them ("does any admin exist" checks).
func (r *Repo) Count(ctx context.Context, f role.Filter) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, buildQuery(f))
	if err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// DeleteContext removes every rule for a context (project deletion cascade).
func (r *Repo) DeleteContext(ctx context.Context, context string) error {
	keys, err := r.store.Scan(ctx, keyPrefix+context+":*")
	if err != nil {
		return fmt.Errorf("scan rules for %s: %w", context, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("del rules for %s: %w", context, err)
	}
	return nil
}

// buildQuery assembles the FT.SEARCH filter string for a Filter.
func buildQuery(f role.Filter) string {
	var parts []string

	if len(f.Contexts) > 0 {
		parts = append(parts, db.TagFilter("context", f.Contexts...))
	}
	if len(f.Patterns) > 0 {
		values := make([]string, len(f.Patterns))
		for i, p := range f.Patterns {
			values[i] = p.String()
		}
		parts = append(parts, db.TagFilter("pattern", values...))
	}
	if f.MinRole > role.None {
		parts = append(parts, db.NumericMinFilter("role_level", int(f.MinRole)))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// Key layout: annodex:role:{context}:{pattern}

func ruleKey(context string, pattern role.Pattern) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, context, pattern)
}
