package requests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annodex-io/annodex/internal/db"
	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/request"
)

// --- Upsert / Get ---

func TestUpsert_KeyedByIdentityTriple(t *testing.T) {
	repo, ms := newTestRepo()
	req := testRequest(t, "alice@example.com", "docs")

	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		want := "annodex:request:project_role/alice@example.com/docs"
		if key != want {
			t.Errorf("key = %s, want %s", key, want)
		}
		if fields["status"] != "pending" || fields["kind"] != "project_role" {
			t.Errorf("fields = %v", fields)
		}
		return nil
	}

	if err := repo.Upsert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo()
	req := testRequest(t, "alice@example.com", "docs")
	hash := requestToHash(req)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return hash, nil
	}

	got, err := repo.Get(context.Background(), request.KindProjectRole, "alice@example.com", "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != req.ID() || got.Email() != req.Email() || got.Status() != req.Status() {
		t.Errorf("got = %+v, want %+v", got, req)
	}
	if got.Payload().Kind() != request.KindProjectRole || got.Payload().Project() != "docs" {
		t.Errorf("payload = %+v", got.Payload())
	}
	if !got.SubmittedAt().Equal(req.SubmittedAt().Truncate(time.Millisecond)) {
		t.Errorf("SubmittedAt() = %v, want %v", got.SubmittedAt(), req.SubmittedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), request.KindServerRole, "a@b.c", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- GetByID ---

func TestGetByID(t *testing.T) {
	repo, ms := newTestRepo()
	req := testRequest(t, "alice@example.com", "docs")

	ms.searchListFn = func(_ context.Context, index, query string, _, limit int, _ []string) (*db.SearchResult, error) {
		if index != IndexName {
			t.Errorf("index = %s", index)
		}
		if limit != 1 {
			t.Errorf("limit = %d, want 1", limit)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "annodex:request:" + req.Key(), Fields: requestToHash(req)},
		}}, nil
	}

	got, err := repo.GetByID(context.Background(), req.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != req.ID() {
		t.Errorf("ID() = %s, want %s", got.ID(), req.ID())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchListFn = func(_ context.Context, _, _ string, _, _ int, _ []string) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete_Missing(t *testing.T) {
	repo, ms := newTestRepo()
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	err := repo.Delete(context.Background(), request.KindProjectRole, "a@b.c", "docs")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Listing ---

func TestListPending_NewestFirst(t *testing.T) {
	repo, ms := newTestRepo()
	older := testRequest(t, "a@example.com", "docs")
	newer := testRequest(t, "b@example.com", "docs")
	olderHash := requestToHash(older)
	olderHash["submitted_at"] = "1700000000000"
	newerHash := requestToHash(newer)
	newerHash["submitted_at"] = "1700000001000"

	ms.searchListFn = func(_ context.Context, _, query string, _, _ int, _ []string) (*db.SearchResult, error) {
		if query != db.TagFilter("status", "pending") {
			t.Errorf("query = %q", query)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "k1", Fields: olderHash},
			{Key: "k2", Fields: newerHash},
		}}, nil
	}

	out, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ID() != newer.ID() {
		t.Error("newest request should come first")
	}
}

func TestListByEmail_Query(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchListFn = func(_ context.Context, _, query string, _, _ int, _ []string) (*db.SearchResult, error) {
		want := db.TagFilter("email", "alice@example.com")
		if query != want {
			t.Errorf("query = %q, want %q", query, want)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.ListByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestList_BadStoredRequest(t *testing.T) {
	repo, ms := newTestRepo()
	ms.searchListFn = func(_ context.Context, _, _ string, _, _ int, _ []string) (*db.SearchResult, error) {
		return &db.SearchResult{Entries: []db.SearchEntry{
			{Key: "junk", Fields: map[string]string{"submitted_at": "not-a-number"}},
		}}, nil
	}

	if _, err := repo.ListPending(context.Background()); err == nil {
		t.Fatal("expected error for a corrupt stored request")
	}
}
