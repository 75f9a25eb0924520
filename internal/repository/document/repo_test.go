package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	projectrepo "github.com/annodex-io/annodex/internal/repository/project"
)

// --- Upsert ---

func TestUpsert_NewDocument(t *testing.T) {
	repo, ms := newTestRepo()
	doc := testDocument(t, "doc-1")

	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "annodex:docs:doc:doc-1" {
			t.Errorf("key = %s", key)
		}
		if fields["title"] != "Title doc-1" || fields["text"] != "body text" {
			t.Errorf("fields = %v", fields)
		}
		if fields["tags"] != "lang=en" {
			t.Errorf("tags index value = %q", fields["tags"])
		}
		return nil
	}

	created, err := repo.Upsert(context.Background(), "docs", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a new document")
	}
}

func TestUpsert_Overwrite(t *testing.T) {
	repo, ms := newTestRepo()
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	created, err := repo.Upsert(context.Background(), "docs", testDocument(t, "doc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false when the document already exists")
	}
}

// --- Get / Delete ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo()
	doc := testDocument(t, "doc-1")
	hash, err := documentToHash(doc)
	if err != nil {
		t.Fatalf("documentToHash: %v", err)
	}

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "annodex:docs:doc:doc-1" {
			t.Errorf("key = %s", key)
		}
		return hash, nil
	}

	got, err := repo.Get(context.Background(), "docs", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "doc-1" || got.Text() != "body text" {
		t.Errorf("got = %+v", got)
	}
	if got.Tags()["lang"] != "en" || got.Fields()["score"] != 0.5 {
		t.Errorf("annotations lost in round trip: tags=%v fields=%v", got.Tags(), got.Fields())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "docs", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	repo, ms := newTestRepo()
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	err := repo.Delete(context.Background(), "docs", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Search / Count ---

func TestSearch_UsesProjectIndex(t *testing.T) {
	repo, ms := newTestRepo()
	doc := testDocument(t, "doc-1")
	hash, _ := documentToHash(doc)

	ms.searchListFn = func(_ context.Context, index, query string, offset, limit int, _ []string) (*db.SearchResult, error) {
		if index != projectrepo.DocIndexName("docs") {
			t.Errorf("index = %s", index)
		}
		if query != "*" {
			t.Errorf("empty query should match everything, got %q", query)
		}
		if offset != 5 || limit != 10 {
			t.Errorf("offset/limit = %d/%d", offset, limit)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "annodex:docs:doc:doc-1", Fields: hash},
		}}, nil
	}

	docs, total, err := repo.Search(context.Background(), "docs", Query{Offset: 5, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(docs) != 1 || docs[0].ID() != "doc-1" {
		t.Errorf("total=%d docs=%+v", total, docs)
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchListFn = func(_ context.Context, _, _ string, _, limit int, _ []string) (*db.SearchResult, error) {
		if limit != 20 {
			t.Errorf("limit = %d, want default 20", limit)
		}
		return &db.SearchResult{}, nil
	}

	if _, _, err := repo.Search(context.Background(), "docs", Query{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchCountFn = func(_ context.Context, index, query string) (int, error) {
		if index != projectrepo.DocIndexName("docs") {
			t.Errorf("index = %s", index)
		}
		if query != "*" {
			t.Errorf("query = %q", query)
		}
		return 42, nil
	}

	n, err := repo.Count(context.Background(), "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

// --- buildQuery ---

func TestBuildQuery(t *testing.T) {
	q := buildQuery(Query{
		Text: "hello world",
		Tags: map[string]string{"lang": "en"},
	})

	if !strings.Contains(q, "@title:(hello world)") || !strings.Contains(q, "@text:(hello world)") {
		t.Errorf("query %q missing full-text clause", q)
	}
	if !strings.Contains(q, `@tags:{lang\=en}`) {
		t.Errorf("query %q missing tag filter", q)
	}

	if got := buildQuery(Query{}); got != "*" {
		t.Errorf("empty query = %q, want *", got)
	}
}

func TestBuildQuery_EscapesText(t *testing.T) {
	q := buildQuery(Query{Text: `a@b (c)`})
	if !strings.Contains(q, `a\@b \(c\)`) {
		t.Errorf("query %q should escape FT syntax characters", q)
	}
}
