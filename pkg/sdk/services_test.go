package annodex

import (
	"context"
	"errors"
	"testing"
	"time"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
)

// --- Actor ---

func TestActor_ToUser(t *testing.T) {
	u := As("Alice@Example.COM").toUser("")
	if u.Email() != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", u.Email())
	}
	if u.Superadmin() || u.AuthDisabled() {
		t.Error("plain actor should carry no elevation")
	}

	g := Guest().toUser("admin@example.com")
	if !g.IsAnonymous() {
		t.Error("guest actor should be anonymous")
	}

	sa := As("admin@example.com").toUser("admin@example.com")
	if !sa.Superadmin() {
		t.Error("superadmin email should elevate")
	}

	sys := System().toUser("")
	if !sys.AuthDisabled() {
		t.Error("system actor should bypass authorization")
	}
}

// --- RoleService ---

func TestRoleService_Grant(t *testing.T) {
	mock := &mockRolesUC{
		grantFn: func(_ context.Context, u user.User, pattern, ctx string, r role.Role) (role.Rule, error) {
			if u.Email() != "admin@example.com" {
				t.Errorf("email = %q, want admin@example.com", u.Email())
			}
			if pattern != "alice@example.com" || ctx != "docs" || r != role.Writer {
				t.Errorf("unexpected args: %q %q %v", pattern, ctx, r)
			}
			return mustRule(t, pattern, ctx, "WRITER"), nil
		},
	}

	svc := &RoleService{svc: mock}
	rule, err := svc.Grant(context.Background(), As("admin@example.com"), "alice@example.com", "docs", "WRITER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Role != "WRITER" || rule.Context != "docs" {
		t.Errorf("rule = %+v", rule)
	}
}

func TestRoleService_Grant_BadRole(t *testing.T) {
	svc := &RoleService{svc: &mockRolesUC{}}
	_, err := svc.Grant(context.Background(), As("a@b.c"), "x@y.z", "docs", "OVERLORD")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestRoleService_Set_Error(t *testing.T) {
	mock := &mockRolesUC{
		setFn: func(_ context.Context, _ user.User, _, _ string, _ role.Role) (role.Rule, error) {
			return role.Rule{}, errors.New("db down")
		},
	}
	svc := &RoleService{svc: mock}
	_, err := svc.Set(context.Background(), As("a@b.c"), "*@b.c", "docs", "READER")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRoleService_Revoke(t *testing.T) {
	mock := &mockRolesUC{
		revokeFn: func(_ context.Context, _ user.User, pattern, ctx string, ignoreMissing bool) error {
			if !ignoreMissing {
				t.Error("ignoreMissing not forwarded")
			}
			return nil
		},
	}
	svc := &RoleService{svc: mock}
	if err := svc.Revoke(context.Background(), As("a@b.c"), "x@y.z", "docs", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRoleService_List(t *testing.T) {
	mock := &mockRolesUC{
		listFn: func(_ context.Context, _ user.User, ctx string, min role.Role) ([]role.Rule, error) {
			if min != role.Reader {
				t.Errorf("min = %v, want READER", min)
			}
			return []role.Rule{mustRule(t, "*", ctx, "READER")}, nil
		},
	}
	svc := &RoleService{svc: mock}
	rules, err := svc.List(context.Background(), As("a@b.c"), "docs", "READER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].EmailPattern != "*" {
		t.Errorf("rules = %+v", rules)
	}
}

func TestRoleService_Resolve(t *testing.T) {
	mock := &mockRolesUC{
		resolveFn: func(_ context.Context, _ user.User, ctx string) (role.Rule, error) {
			return mustRule(t, "alice@example.com", ctx, "ADMIN"), nil
		},
	}
	svc := &RoleService{svc: mock}
	rule, err := svc.Resolve(context.Background(), As("alice@example.com"), ServerContext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Role != "ADMIN" {
		t.Errorf("Role = %q, want ADMIN", rule.Role)
	}
}

// --- ProjectService ---

func TestProjectService_Create(t *testing.T) {
	p := domproj.Reconstruct("docs", "Docs", "", "", time.Now().UnixMilli())
	mock := &mockProjectUC{
		createFn: func(_ context.Context, _ user.User, id, _, _, _ string) (domproj.Project, error) {
			if id != "docs" {
				t.Errorf("id = %q, want docs", id)
			}
			return p, nil
		},
	}

	svc := &ProjectService{svc: mock}
	info, err := svc.Create(context.Background(), As("a@b.c"), "docs", "Docs", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "docs" || info.Name != "Docs" {
		t.Errorf("info = %+v", info)
	}
}

func TestProjectService_Ensure_Exists(t *testing.T) {
	p := domproj.Reconstruct("docs", "Docs", "", "", time.Now().UnixMilli())
	mock := &mockProjectUC{
		createFn: func(_ context.Context, _ user.User, _, _, _, _ string) (domproj.Project, error) {
			return domproj.Project{}, ErrAlreadyExists
		},
		getFn: func(_ context.Context, _ user.User, _ string) (domproj.Project, error) {
			return p, nil
		},
	}

	svc := &ProjectService{svc: mock}
	info, err := svc.Ensure(context.Background(), As("a@b.c"), "docs", "Docs", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "docs" {
		t.Errorf("ID = %q, want docs", info.ID)
	}
}

func TestProjectService_Ensure_OtherError(t *testing.T) {
	mock := &mockProjectUC{
		createFn: func(_ context.Context, _ user.User, _, _, _, _ string) (domproj.Project, error) {
			return domproj.Project{}, errors.New("db down")
		},
	}
	svc := &ProjectService{svc: mock}
	if _, err := svc.Ensure(context.Background(), As("a@b.c"), "docs", "", "", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestProjectService_List(t *testing.T) {
	mock := &mockProjectUC{
		listFn: func(_ context.Context, _ user.User) ([]domproj.Project, error) {
			return []domproj.Project{domproj.Reconstruct("a", "a", "", "", 0)}, nil
		},
	}
	svc := &ProjectService{svc: mock}
	list, err := svc.List(context.Background(), As("a@b.c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
}

func TestProjectService_Delete_Error(t *testing.T) {
	mock := &mockProjectUC{
		deleteFn: func(_ context.Context, _ user.User, _ string) error { return ErrForbidden },
	}
	svc := &ProjectService{svc: mock}
	err := svc.Delete(context.Background(), As("a@b.c"), "docs")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

// --- RequestService ---

func pendingRequest(t *testing.T, email string, payload domreq.Payload) domreq.Request {
	t.Helper()
	req, err := domreq.New(email, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestRequestService_SubmitServerRole(t *testing.T) {
	mock := &mockRequestUC{
		submitFn: func(_ context.Context, u user.User, payload domreq.Payload) (domreq.Request, error) {
			if payload.Kind() != domreq.KindServerRole {
				t.Errorf("kind = %q, want server_role", payload.Kind())
			}
			if payload.Role() != role.Writer {
				t.Errorf("role = %v, want WRITER", payload.Role())
			}
			return pendingRequest(t, u.Email(), payload), nil
		},
	}

	svc := &RequestService{svc: mock}
	req, err := svc.SubmitServerRole(context.Background(), As("alice@example.com"), "WRITER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != "pending" || req.Kind != "server_role" {
		t.Errorf("req = %+v", req)
	}
}

func TestRequestService_SubmitServerRole_BadRole(t *testing.T) {
	svc := &RequestService{svc: &mockRequestUC{}}
	_, err := svc.SubmitServerRole(context.Background(), As("a@b.c"), "NONE")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRequestService_SubmitProjectRole(t *testing.T) {
	mock := &mockRequestUC{
		submitFn: func(_ context.Context, u user.User, payload domreq.Payload) (domreq.Request, error) {
			if payload.Kind() != domreq.KindProjectRole || payload.Project() != "docs" {
				t.Errorf("payload = %+v", payload)
			}
			return pendingRequest(t, u.Email(), payload), nil
		},
	}

	svc := &RequestService{svc: mock}
	req, err := svc.SubmitProjectRole(context.Background(), As("alice@example.com"), "docs", "READER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Project != "docs" || req.Role != "READER" {
		t.Errorf("req = %+v", req)
	}
}

func TestRequestService_SubmitCreateProject(t *testing.T) {
	mock := &mockRequestUC{
		submitFn: func(_ context.Context, u user.User, payload domreq.Payload) (domreq.Request, error) {
			if payload.Kind() != domreq.KindCreateProject {
				t.Errorf("kind = %q, want create_project", payload.Kind())
			}
			return pendingRequest(t, u.Email(), payload), nil
		},
	}

	svc := &RequestService{svc: mock}
	req, err := svc.SubmitCreateProject(context.Background(), As("alice@example.com"), "docs", "Docs", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != "create_project" || req.Name != "Docs" {
		t.Errorf("req = %+v", req)
	}
}

func TestRequestService_Cancel(t *testing.T) {
	mock := &mockRequestUC{
		cancelFn: func(_ context.Context, _ user.User, id string) error {
			if id != "req-1" {
				t.Errorf("id = %q, want req-1", id)
			}
			return nil
		},
	}
	svc := &RequestService{svc: mock}
	if err := svc.Cancel(context.Background(), As("a@b.c"), "req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestService_Mine(t *testing.T) {
	payload, _ := domreq.NewServerRole(role.Reader)
	mock := &mockRequestUC{
		mineFn: func(_ context.Context, u user.User) ([]domreq.Request, error) {
			return []domreq.Request{pendingRequest(t, u.Email(), payload)}, nil
		},
	}
	svc := &RequestService{svc: mock}
	reqs, err := svc.Mine(context.Background(), As("alice@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Email != "alice@example.com" {
		t.Errorf("reqs = %+v", reqs)
	}
}

func TestRequestService_Resolve(t *testing.T) {
	payload, _ := domreq.NewServerRole(role.Reader)
	mock := &mockRequestUC{
		resolveFn: func(_ context.Context, _ user.User, decisions []requestuc.Decision) ([]domreq.Request, error) {
			if len(decisions) != 2 {
				t.Fatalf("len = %d, want 2", len(decisions))
			}
			if decisions[0].Status != domreq.StatusApproved || decisions[1].Status != domreq.StatusRejected {
				t.Errorf("decisions = %+v", decisions)
			}
			req := pendingRequest(t, "alice@example.com", payload)
			approved, _ := req.Resolved(domreq.StatusApproved)
			return []domreq.Request{approved}, nil
		},
	}

	svc := &RequestService{svc: mock}
	out, err := svc.Resolve(context.Background(), As("admin@example.com"), []Decision{
		{ID: "a", Status: "approved"},
		{ID: "b", Status: "rejected"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Status != "approved" {
		t.Errorf("out = %+v", out)
	}
}

func TestRequestService_Resolve_BadStatus(t *testing.T) {
	svc := &RequestService{svc: &mockRequestUC{}}
	_, err := svc.Resolve(context.Background(), As("a@b.c"), []Decision{{ID: "a", Status: "maybe"}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

// --- DocumentService ---

func newDocSvc(mock *mockDocumentUC) *DocumentService {
	return &DocumentService{project: "docs", svc: mock}
}

func TestDocumentService_Upsert(t *testing.T) {
	mock := &mockDocumentUC{
		upsertFn: func(_ context.Context, _ user.User, project string, doc domdoc.Document) (bool, error) {
			if project != "docs" {
				t.Errorf("project = %q, want docs", project)
			}
			if doc.ID() != "doc-1" {
				t.Errorf("ID = %q, want doc-1", doc.ID())
			}
			return true, nil
		},
	}

	svc := newDocSvc(mock)
	created, err := svc.Upsert(context.Background(), As("a@b.c"), "doc-1", "Title", "text", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
}

func TestDocumentService_Upsert_BadID(t *testing.T) {
	svc := newDocSvc(&mockDocumentUC{})
	_, err := svc.Upsert(context.Background(), As("a@b.c"), "", "Title", "text", nil, nil)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestDocumentService_Get(t *testing.T) {
	d, _ := domdoc.New("doc-1", "Title", "text", nil, nil)
	mock := &mockDocumentUC{
		getFn: func(_ context.Context, _ user.User, _, _ string) (domdoc.Document, error) {
			return d, nil
		},
	}

	svc := newDocSvc(mock)
	doc, err := svc.Get(context.Background(), As("a@b.c"), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "doc-1" || doc.Text != "text" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDocumentService_Delete_Error(t *testing.T) {
	mock := &mockDocumentUC{
		deleteFn: func(_ context.Context, _ user.User, _, _ string) error { return ErrNotFound },
	}
	svc := newDocSvc(mock)
	err := svc.Delete(context.Background(), As("a@b.c"), "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDocumentService_Search(t *testing.T) {
	d, _ := domdoc.New("doc-1", "Title", "text", nil, nil)
	mock := &mockDocumentUC{
		searchFn: func(_ context.Context, _ user.User, _ string, q docrepo.Query) ([]domdoc.Document, int, error) {
			if q.Text != "hello" || q.Limit != 5 {
				t.Errorf("query = %+v", q)
			}
			return []domdoc.Document{d}, 1, nil
		},
	}

	svc := newDocSvc(mock)
	res, err := svc.Search(context.Background(), As("a@b.c"), SearchQuery{Text: "hello", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || len(res.Documents) != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestDocumentService_Count(t *testing.T) {
	mock := &mockDocumentUC{
		countFn: func(_ context.Context, _ user.User, _ string) (int, error) { return 7, nil },
	}
	svc := newDocSvc(mock)
	n, err := svc.Count(context.Background(), As("a@b.c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
}

// --- Client accessors ---

func TestClient_Accessors(t *testing.T) {
	c := testClient(&mockRolesUC{}, &mockProjectUC{}, &mockRequestUC{}, &mockDocumentUC{})

	if c.Roles() == nil {
		t.Error("Roles() returned nil")
	}
	if c.Projects() == nil {
		t.Error("Projects() returned nil")
	}
	if c.Requests() == nil {
		t.Error("Requests() returned nil")
	}
	if c.Documents("docs") == nil {
		t.Error("Documents() returned nil")
	}
}
