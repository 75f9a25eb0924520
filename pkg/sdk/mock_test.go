package annodex

import (
	"context"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
)

// --- rolesUseCase mock ---

type mockRolesUC struct {
	grantFn   func(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error)
	setFn     func(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error)
	revokeFn  func(ctx context.Context, u user.User, pattern, context string, ignoreMissing bool) error
	listFn    func(ctx context.Context, u user.User, context string, min role.Role) ([]role.Rule, error)
	resolveFn func(ctx context.Context, u user.User, context string) (role.Rule, error)
}

func (m *mockRolesUC) Grant(
	ctx context.Context, u user.User, pattern, context string, r role.Role,
) (role.Rule, error) {
	return m.grantFn(ctx, u, pattern, context, r)
}

func (m *mockRolesUC) Set(
	ctx context.Context, u user.User, pattern, context string, r role.Role,
) (role.Rule, error) {
	return m.setFn(ctx, u, pattern, context, r)
}

func (m *mockRolesUC) Revoke(
	ctx context.Context, u user.User, pattern, context string, ignoreMissing bool,
) error {
	return m.revokeFn(ctx, u, pattern, context, ignoreMissing)
}

func (m *mockRolesUC) ListContext(
	ctx context.Context, u user.User, context string, min role.Role,
) ([]role.Rule, error) {
	return m.listFn(ctx, u, context, min)
}

func (m *mockRolesUC) ResolveSelf(
	ctx context.Context, u user.User, context string,
) (role.Rule, error) {
	return m.resolveFn(ctx, u, context)
}

// --- projectUseCase mock ---

type mockProjectUC struct {
	createFn func(ctx context.Context, u user.User, id, name, description, folder string) (domproj.Project, error)
	getFn    func(ctx context.Context, u user.User, id string) (domproj.Project, error)
	listFn   func(ctx context.Context, u user.User) ([]domproj.Project, error)
	deleteFn func(ctx context.Context, u user.User, id string) error
}

func (m *mockProjectUC) Create(
	ctx context.Context, u user.User, id, name, description, folder string,
) (domproj.Project, error) {
	return m.createFn(ctx, u, id, name, description, folder)
}

func (m *mockProjectUC) Get(ctx context.Context, u user.User, id string) (domproj.Project, error) {
	return m.getFn(ctx, u, id)
}

func (m *mockProjectUC) List(ctx context.Context, u user.User) ([]domproj.Project, error) {
	return m.listFn(ctx, u)
}

func (m *mockProjectUC) Delete(ctx context.Context, u user.User, id string) error {
	return m.deleteFn(ctx, u, id)
}

// --- requestUseCase mock ---

type mockRequestUC struct {
	submitFn    func(ctx context.Context, u user.User, payload domreq.Payload) (domreq.Request, error)
	cancelFn    func(ctx context.Context, u user.User, id string) error
	mineFn      func(ctx context.Context, u user.User) ([]domreq.Request, error)
	adminViewFn func(ctx context.Context, u user.User) ([]domreq.Request, error)
	resolveFn   func(ctx context.Context, u user.User, decisions []requestuc.Decision) ([]domreq.Request, error)
}

func (m *mockRequestUC) Submit(
	ctx context.Context, u user.User, payload domreq.Payload,
) (domreq.Request, error) {
	return m.submitFn(ctx, u, payload)
}

func (m *mockRequestUC) Cancel(ctx context.Context, u user.User, id string) error {
	return m.cancelFn(ctx, u, id)
}

func (m *mockRequestUC) ListMine(ctx context.Context, u user.User) ([]domreq.Request, error) {
	return m.mineFn(ctx, u)
}

func (m *mockRequestUC) ListAdminView(ctx context.Context, u user.User) ([]domreq.Request, error) {
	return m.adminViewFn(ctx, u)
}

func (m *mockRequestUC) ResolveBatch(
	ctx context.Context, u user.User, decisions []requestuc.Decision,
) ([]domreq.Request, error) {
	return m.resolveFn(ctx, u, decisions)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(ctx context.Context, u user.User, project string, doc domdoc.Document) (bool, error)
	getFn    func(ctx context.Context, u user.User, project, id string) (domdoc.Document, error)
	deleteFn func(ctx context.Context, u user.User, project, id string) error
	searchFn func(ctx context.Context, u user.User, project string, q docrepo.Query) ([]domdoc.Document, int, error)
	countFn  func(ctx context.Context, u user.User, project string) (int, error)
}

func (m *mockDocumentUC) Upsert(
	ctx context.Context, u user.User, project string, doc domdoc.Document,
) (bool, error) {
	return m.upsertFn(ctx, u, project, doc)
}

func (m *mockDocumentUC) Get(
	ctx context.Context, u user.User, project, id string,
) (domdoc.Document, error) {
	return m.getFn(ctx, u, project, id)
}

func (m *mockDocumentUC) Delete(ctx context.Context, u user.User, project, id string) error {
	return m.deleteFn(ctx, u, project, id)
}

func (m *mockDocumentUC) Search(
	ctx context.Context, u user.User, project string, q docrepo.Query,
) ([]domdoc.Document, int, error) {
	return m.searchFn(ctx, u, project, q)
}

func (m *mockDocumentUC) Count(ctx context.Context, u user.User, project string) (int, error) {
	return m.countFn(ctx, u, project)
}

// --- helpers ---

func mustRule(t interface{ Fatalf(string, ...any) }, pattern, context, roleName string) role.Rule {
	p, err := role.ParsePattern(pattern)
	if err != nil {
		t.Fatalf("parse pattern: %v", err)
	}
	r, err := role.Parse(roleName)
	if err != nil {
		t.Fatalf("parse role: %v", err)
	}
	return role.Reconstruct(p, context, r)
}

func testClient(
	rolesSvc rolesUseCase,
	projSvc projectUseCase,
	reqSvc requestUseCase,
	docSvc documentUseCase,
) *Client {
	return &Client{
		rolesSvc: rolesSvc,
		projSvc:  projSvc,
		reqSvc:   reqSvc,
		docSvc:   docSvc,
	}
}
