// Package requests implements the permission-request store: one hash per
// request, keyed by the (kind, email, project) identity so resubmission
// overwrites in place.
package requests

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/request"
)

// IndexName is the FT index over permission-request hashes.
const IndexName = "annodex:request-idx"

const keyPrefix = "annodex:request:"

const maxRequests = 10000

// store is the consumer interface for the request store (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements the permission-request store over the document store.
type Repo struct {
	store store
}

// New creates a request repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the FT index over request hashes if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check request index: %w", err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag("id").
		Tag("email").
		Tag("status").
		Tag("kind").
		Tag("project").
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create request index: %w", err)
	}
	return nil
}

// Upsert stores the request under its identity key, replacing any prior
// request with the same (kind, email, project) triple.
func (r *Repo) Upsert(ctx context.Context, req request.Request) error {
	if err := r.store.HSet(ctx, keyPrefix+req.Key(), requestToHash(req)); err != nil {
		return fmt.Errorf("hset request %s: %w", req.Key(), err)
	}
	return nil
}

// Get retrieves a request by its identity triple.
func (r *Repo) Get(ctx context.Context, kind request.Kind, email, project string) (request.Request, error) {
	m, err := r.store.HGetAll(ctx, keyPrefix+request.StorageKey(kind, email, project))
	if err != nil {
		return request.Request{}, fmt.Errorf("hgetall request: %w", err)
	}
	if len(m) == 0 {
		return request.Request{}, domain.ErrNotFound
	}
	return requestFromHash(m)
}

// GetByID retrieves a request by its transport handle.
func (r *Repo) GetByID(ctx context.Context, id string) (request.Request, error) {
	res, err := r.store.SearchList(ctx, IndexName, db.TagFilter("id", id), 0, 1, nil)
	if err != nil {
		return request.Request{}, fmt.Errorf("search request %s: %w", id, err)
	}
	if len(res.Entries) == 0 {
		return request.Request{}, domain.ErrNotFound
	}
	return requestFromHash(res.Entries[0].Fields)
}

// Delete removes a request by its identity triple. Missing requests are
// domain.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, kind request.Kind, email, project string) error {
	key := keyPrefix + request.StorageKey(kind, email, project)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check request exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del request: %w", err)
	}
	return nil
}

// ListByEmail returns all requests submitted by the given address, newest
// first.
func (r *Repo) ListByEmail(ctx context.Context, email string) ([]request.Request, error) {
	return r.list(ctx, db.TagFilter("email", email))
}

// ListPending returns all pending requests, newest first. Authorization
// filtering happens in the workflow layer.
func (r *Repo) ListPending(ctx context.Context) ([]request.Request, error) {
	return r.list(ctx, db.TagFilter("status", string(request.StatusPending)))
}

func (r *Repo) list(ctx context.Context, query string) ([]request.Request, error) {
	res, err := r.store.SearchList(ctx, IndexName, query, 0, maxRequests, nil)
	if err != nil {
		return nil, fmt.Errorf("search requests: %w", err)
	}

	out := make([]request.Request, 0, len(res.Entries))
	for _, e := range res.Entries {
		req, err := requestFromHash(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse request %s: %w", e.Key, err)
		}
		out = append(out, req)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt().After(out[j].SubmittedAt())
	})

	return out, nil
}
