// Package project implements project persistence: a metadata hash per
// project plus the per-project document FT index lifecycle.
package project

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
)

// store is the consumer interface for projects (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/project.Repository.
type Repo struct {
	store store
}

// New creates a project repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a project: HSET metadata then FT.CREATE the document
// index. On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, p domproj.Project) error {
	key := metaKey(p.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	def := db.NewIndex(DocIndexName(p.ID())).
		Prefix(docPrefix(p.ID())).
		Text("title").
		Text("text").
		TagWithOpts("tags", ",", false).
		Numeric("updated_at").
		MustBuild()

	if err := r.store.HSet(ctx, key, projectToHash(p)); err != nil {
		return fmt.Errorf("hset project %s: %w", p.ID(), err)
	}

	// FT.CREATE — rollback HSET on error
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		cleanupErr := r.store.Del(ctx, key)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Get retrieves a project by id.
func (r *Repo) Get(ctx context.Context, id string) (domproj.Project, error) {
	m, err := r.store.HGetAll(ctx, metaKey(id))
	if err != nil {
		return domproj.Project{}, fmt.Errorf("hgetall project %s: %w", id, err)
	}
	if len(m) == 0 {
		return domproj.Project{}, domain.ErrNotFound
	}
	return projectFromHash(m)
}

// List returns all projects sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domproj.Project, error) {
	keys, err := r.store.Scan(ctx, metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	if len(keys) == 0 {
		return []domproj.Project{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi projects: %w", err)
	}

	projects := make([]domproj.Project, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		p, err := projectFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse project %s: %w", keys[i], err)
		}
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt() < projects[j].CreatedAt()
	})

	return projects, nil
}

// Delete removes a project: metadata, its documents and its document
// index. The metadata hash is backed up and restored if dropping the
// index fails.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := metaKey(id)

	backup, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall project %s: %w", id, err)
	}
	if len(backup) == 0 {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del project %s: %w", id, err)
	}

	// FT.DROPINDEX — rollback HSET on error
	if err := r.store.DropIndex(ctx, DocIndexName(id)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		cleanupErr := r.store.HSet(ctx, key, backup)
		return errors.Join(err, cleanupErr)
	}

	docKeys, err := r.store.Scan(ctx, docPrefix(id)+"*")
	if err != nil {
		return fmt.Errorf("scan documents for %s: %w", id, err)
	}
	if len(docKeys) > 0 {
		if err := r.store.DelMulti(ctx, docKeys); err != nil {
			return fmt.Errorf("del documents for %s: %w", id, err)
		}
	}

	return nil
}

// Key layout: annodex:project:{id}, annodex:{id}:doc:{docid}, annodex:{id}:doc-idx

func metaKey(id string) string {
	return "annodex:project:" + id
}

// DocIndexName returns the per-project document FT index name.
func DocIndexName(id string) string {
	return fmt.Sprintf("annodex:%s:doc-idx", id)
}

func docPrefix(id string) string {
	return fmt.Sprintf("annodex:%s:doc:", id)
}
