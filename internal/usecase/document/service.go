// Package document handles guarded document access. Writes require WRITER
// on the owning project; reads require METAREADER, with document text
// withheld until READER; counts require LISTER.
package document

import (
	"context"
	"fmt"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	"github.com/annodex-io/annodex/internal/usecase/resolver"
)

// Service handles document operations within a project.
type Service struct {
	repo     Repository
	guard    Guard
	resolver Resolver
}

// New creates a document service.
func New(repo Repository, guard Guard, res Resolver) *Service {
	return &Service{repo: repo, guard: guard, resolver: res}
}

// Upsert stores a document, reporting whether it was newly created.
func (s *Service) Upsert(ctx context.Context, u user.User, project string, doc domdoc.Document) (bool, error) {
	if err := s.guard.Require(ctx, u, project, role.Writer); err != nil {
		return false, err
	}
	created, err := s.repo.Upsert(ctx, project, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	return created, nil
}

// Get retrieves a document. Callers below READER receive it without text.
func (s *Service) Get(ctx context.Context, u user.User, project, id string) (domdoc.Document, error) {
	withText, err := s.readLevel(ctx, u, project)
	if err != nil {
		return domdoc.Document{}, err
	}
	doc, err := s.repo.Get(ctx, project, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	if !withText {
		doc = doc.WithoutText()
	}
	return doc, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, u user.User, project, id string) error {
	if err := s.guard.Require(ctx, u, project, role.Writer); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, project, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Search runs a filtered document listing. Callers below READER receive
// results without text.
func (s *Service) Search(ctx context.Context, u user.User, project string, q docrepo.Query) ([]domdoc.Document, int, error) {
	withText, err := s.readLevel(ctx, u, project)
	if err != nil {
		return nil, 0, err
	}
	docs, total, err := s.repo.Search(ctx, project, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search documents: %w", err)
	}
	if !withText {
		for i, d := range docs {
			docs[i] = d.WithoutText()
		}
	}
	return docs, total, nil
}

// Count returns the number of documents in a project. LISTER suffices:
// counts reveal existence, not content.
func (s *Service) Count(ctx context.Context, u user.User, project string) (int, error) {
	if err := s.guard.Require(ctx, u, project, role.Lister); err != nil {
		return 0, err
	}
	n, err := s.repo.Count(ctx, project)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// readLevel enforces METAREADER and reports whether the caller's
// effective role grants text access.
func (s *Service) readLevel(ctx context.Context, u user.User, project string) (bool, error) {
	if err := s.guard.Require(ctx, u, project, role.MetaReader); err != nil {
		return false, err
	}
	eff, err := s.resolver.Resolve(ctx, u, project, resolver.Options{IncludeGlobalAdmin: true})
	if err != nil {
		return false, err
	}
	return eff.Role().AtLeast(role.Reader), nil
}
