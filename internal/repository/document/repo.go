// Package document implements document persistence: one hash per document
// under the owning project's key prefix, queried through the project's FT
// index.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	projectrepo "github.com/annodex-io/annodex/internal/repository/project"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Query narrows a document listing. Zero-value fields do not filter.
type Query struct {
	Text   string            // full-text match over title and text
	Tags   map[string]string // exact tag annotation matches
	Offset int
	Limit  int
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert stores a document, reporting whether it was newly created.
func (r *Repo) Upsert(ctx context.Context, project string, doc domdoc.Document) (bool, error) {
	key := docKey(project, doc.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check document exists: %w", err)
	}

	fields, err := documentToHash(doc)
	if err != nil {
		return false, err
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset document %s/%s: %w", project, doc.ID(), err)
	}
	return !exists, nil
}

// Get retrieves a document by id.
func (r *Repo) Get(ctx context.Context, project, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, docKey(project, id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall document %s/%s: %w", project, id, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrNotFound
	}
	return documentFromHash(m)
}

// Delete removes a document. Missing documents are domain.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, project, id string) error {
	key := docKey(project, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check document exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del document %s/%s: %w", project, id, err)
	}
	return nil
}

// Search runs a filtered listing through the project's FT index.
func (r *Repo) Search(ctx context.Context, project string, q Query) ([]domdoc.Document, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	res, err := r.store.SearchList(
		ctx, projectrepo.DocIndexName(project), buildQuery(q), q.Offset, limit, nil,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search documents in %s: %w", project, err)
	}

	docs := make([]domdoc.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		doc, err := documentFromHash(e.Fields)
		if err != nil {
			return nil, 0, fmt.Errorf("parse document %s: %w", e.Key, err)
		}
		docs = append(docs, doc)
	}

	return docs, res.Total, nil
}

// Count returns the number of documents in a project.
func (r *Repo) Count(ctx context.Context, project string) (int, error) {
	n, err := r.store.SearchCount(ctx, projectrepo.DocIndexName(project), "*")
	if err != nil {
		return 0, fmt.Errorf("count documents in %s: %w", project, err)
	}
	return n, nil
}

// buildQuery assembles the FT.SEARCH filter string for a Query.
func buildQuery(q Query) string {
	var parts []string

	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("(@title:(%s) | @text:(%s))", escapeText(q.Text), escapeText(q.Text)))
	}
	for k, v := range q.Tags {
		parts = append(parts, db.TagFilter("tags", tagPair(k, v)))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func docKey(project, id string) string {
	return fmt.Sprintf("annodex:%s:doc:%s", project, id)
}
