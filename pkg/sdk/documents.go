package annodex

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
)

// DocumentService manages documents within one project.
type DocumentService struct {
	project    string
	svc        documentUseCase
	superadmin string
	obs        *observer
}

// Upsert stores a document, reporting whether it was newly created.
func (s *DocumentService) Upsert(
	ctx context.Context, actor Actor, id, title, text string,
	tags map[string]string, fields map[string]float64,
) (created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.upsert", start, err) }()

	doc, err := domdoc.New(id, title, text, tags, fields)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	created, err = s.svc.Upsert(ctx, actor.toUser(s.superadmin), s.project, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	return created, nil
}

// Get retrieves a document by id.
func (s *DocumentService) Get(ctx context.Context, actor Actor, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.get", start, err) }()

	doc, err := s.svc.Get(ctx, actor.toUser(s.superadmin), s.project, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(doc), nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, actor Actor, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.delete", start, err) }()

	if err = s.svc.Delete(ctx, actor.toUser(s.superadmin), s.project, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Search runs a filtered document listing.
func (s *DocumentService) Search(
	ctx context.Context, actor Actor, q SearchQuery,
) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.search", start, err) }()

	docs, total, err := s.svc.Search(ctx, actor.toUser(s.superadmin), s.project, docrepo.Query{
		Text:   q.Text,
		Tags:   q.Tags,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search documents: %w", err)
	}

	out := SearchResult{Total: total, Documents: make([]Document, len(docs))}
	for i, d := range docs {
		out.Documents[i] = fromInternalDocument(d)
	}
	return out, nil
}

// Count returns the number of documents in the project.
func (s *DocumentService) Count(ctx context.Context, actor Actor) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.count", start, err) }()

	n, err := s.svc.Count(ctx, actor.toUser(s.superadmin), s.project)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
