package annodex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annodex-io/annodex/internal/db"
	dbRedis "github.com/annodex-io/annodex/internal/db/redis"
	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	projectrepo "github.com/annodex-io/annodex/internal/repository/project"
	requestrepo "github.com/annodex-io/annodex/internal/repository/requests"
	rolesrepo "github.com/annodex-io/annodex/internal/repository/roles"
	documentuc "github.com/annodex-io/annodex/internal/usecase/document"
	guarduc "github.com/annodex-io/annodex/internal/usecase/guard"
	healthuc "github.com/annodex-io/annodex/internal/usecase/health"
	projectuc "github.com/annodex-io/annodex/internal/usecase/project"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
	resolveruc "github.com/annodex-io/annodex/internal/usecase/resolver"
	rolesuc "github.com/annodex-io/annodex/internal/usecase/roles"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the services.
type rolesUseCase interface {
	Grant(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error)
	Set(ctx context.Context, u user.User, pattern, context string, r role.Role) (role.Rule, error)
	Revoke(ctx context.Context, u user.User, pattern, context string, ignoreMissing bool) error
	ListContext(ctx context.Context, u user.User, context string, min role.Role) ([]role.Rule, error)
	ResolveSelf(ctx context.Context, u user.User, context string) (role.Rule, error)
}

type projectUseCase interface {
	Create(ctx context.Context, u user.User, id, name, description, folder string) (domproj.Project, error)
	Get(ctx context.Context, u user.User, id string) (domproj.Project, error)
	List(ctx context.Context, u user.User) ([]domproj.Project, error)
	Delete(ctx context.Context, u user.User, id string) error
}

type requestUseCase interface {
	Submit(ctx context.Context, u user.User, payload domreq.Payload) (domreq.Request, error)
	Cancel(ctx context.Context, u user.User, id string) error
	ListMine(ctx context.Context, u user.User) ([]domreq.Request, error)
	ListAdminView(ctx context.Context, u user.User) ([]domreq.Request, error)
	ResolveBatch(ctx context.Context, u user.User, decisions []requestuc.Decision) ([]domreq.Request, error)
}

type documentUseCase interface {
	Upsert(ctx context.Context, u user.User, project string, doc domdoc.Document) (bool, error)
	Get(ctx context.Context, u user.User, project, id string) (domdoc.Document, error)
	Delete(ctx context.Context, u user.User, project, id string) error
	Search(ctx context.Context, u user.User, project string, q docrepo.Query) ([]domdoc.Document, int, error)
	Count(ctx context.Context, u user.User, project string) (int, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the annodex SDK entry point.
type Client struct {
	store      db.Store
	superadmin string
	rolesSvc   rolesUseCase
	projSvc    projectUseCase
	reqSvc     requestUseCase
	docSvc     documentUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates an annodex Client and connects to the database. The
// provided context is used for the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("annodex: database address required (use WithRedis or WithAddrs)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("annodex: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("annodex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, obs)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	roleRepo := rolesrepo.New(store)
	reqRepo := requestrepo.New(store)
	projRepo := projectrepo.New(store)
	docRepo := docrepo.New(store)

	if err := roleRepo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("annodex: ensure role index: %w", err)
	}
	if err := reqRepo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("annodex: ensure request index: %w", err)
	}

	resolverSvc := resolveruc.New(roleRepo)
	guardSvc := guarduc.New(resolverSvc, nil)
	projSvc := projectuc.New(projRepo, roleRepo, guardSvc, resolverSvc)

	return &Client{
		store:      store,
		superadmin: strings.ToLower(strings.TrimSpace(cfg.superadmin)),
		rolesSvc:   rolesuc.New(roleRepo, guardSvc, resolverSvc),
		projSvc:    projSvc,
		reqSvc:     requestuc.New(reqRepo, roleRepo, projSvc, guardSvc),
		docSvc:     documentuc.New(docRepo, guardSvc, resolverSvc),
		healthSvc:  healthuc.New(store),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Roles returns the role administration service.
func (c *Client) Roles() *RoleService {
	return &RoleService{svc: c.rolesSvc, superadmin: c.superadmin, obs: c.obs}
}

// Projects returns the project management service.
func (c *Client) Projects() *ProjectService {
	return &ProjectService{svc: c.projSvc, superadmin: c.superadmin, obs: c.obs}
}

// Requests returns the permission-request workflow service.
func (c *Client) Requests() *RequestService {
	return &RequestService{svc: c.reqSvc, superadmin: c.superadmin, obs: c.obs}
}

// Documents returns the document service for a given project.
func (c *Client) Documents(project string) *DocumentService {
	return &DocumentService{project: project, svc: c.docSvc, superadmin: c.superadmin, obs: c.obs}
}

// Health runs health checks against all components.
func (c *Client) Health(ctx context.Context) healthuc.Report {
	return c.healthSvc.Check(ctx)
}
