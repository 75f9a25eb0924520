// Package chi implements the HTTP API: project, role, permission-request
// and document endpoints over a chi router, with a uniform JSON error
// surface distinguishing the two 403 denial kinds.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/document"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
	docrepo "github.com/annodex-io/annodex/internal/repository/document"
	documentuc "github.com/annodex-io/annodex/internal/usecase/document"
	healthuc "github.com/annodex-io/annodex/internal/usecase/health"
	projectuc "github.com/annodex-io/annodex/internal/usecase/project"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
	rolesuc "github.com/annodex-io/annodex/internal/usecase/roles"
)

// Server wires the usecase services to HTTP handlers.
type Server struct {
	projects  *projectuc.Service
	roles     *rolesuc.Service
	requests  *requestuc.Service
	documents *documentuc.Service
	health    *healthuc.Service
	logger    *zap.Logger

	defaultPageSize int
	maxPageSize     int

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	projects *projectuc.Service,
	roles *rolesuc.Service,
	requests *requestuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		projects:        projects,
		roles:           roles,
		requests:        requests,
		documents:       documents,
		health:          health,
		logger:          logger,
		defaultPageSize: 20,
		maxPageSize:     100,
		errorHandlers:   defaultErrorHandlers(),
	}
}

// WithPagination overrides the document search page size bounds.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.Health)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Route("/projects", func(r gochi.Router) {
			r.Get("/", s.ListProjects)
			r.Post("/", s.CreateProject)
			r.Route("/{project}", func(r gochi.Router) {
				r.Get("/", s.GetProject)
				r.Delete("/", s.DeleteProject)
				r.Get("/stats", s.ProjectStats)

				r.Get("/roles", s.ListProjectRoles)
				r.Post("/roles", s.GrantProjectRole)
				r.Put("/roles", s.SetProjectRole)
				r.Delete("/roles/{pattern}", s.RevokeProjectRole)

				r.Put("/documents/{docID}", s.UpsertDocument)
				r.Get("/documents/{docID}", s.GetDocument)
				r.Delete("/documents/{docID}", s.DeleteDocument)
				r.Post("/search", s.SearchDocuments)
			})
		})

		r.Route("/server/roles", func(r gochi.Router) {
			r.Get("/", s.ListServerRoles)
			r.Post("/", s.GrantServerRole)
			r.Put("/", s.SetServerRole)
			r.Delete("/{pattern}", s.RevokeServerRole)
		})

		r.Route("/me", func(r gochi.Router) {
			r.Get("/role", s.MyRole)
			r.Get("/requests", s.ListMyRequests)
			r.Post("/requests", s.SubmitRequest)
			r.Delete("/requests/{id}", s.CancelRequest)
		})

		r.Route("/admin/requests", func(r gochi.Router) {
			r.Get("/", s.ListAdminRequests)
			r.Post("/resolve", s.ResolveRequests)
		})
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// ListProjects handles GET /api/v1/projects.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Project, len(projects))
	for i, p := range projects {
		items[i] = projectToDTO(p)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateProject handles POST /api/v1/projects.
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Project id is required")
		return
	}

	p, err := s.projects.Create(
		r.Context(), UserFromContext(r.Context()),
		req.ID, req.Name, req.Description, req.Folder,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectToDTO(p))
}

// GetProject handles GET /api/v1/projects/{project}.
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "project"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToDTO(p))
}

// DeleteProject handles DELETE /api/v1/projects/{project}.
func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := s.projects.Delete(r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "project"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProjectStats handles GET /api/v1/projects/{project}/stats.
func (s *Server) ProjectStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.documents.Count(r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "project"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"documents": n})
}

// ListProjectRoles handles GET /api/v1/projects/{project}/roles.
func (s *Server) ListProjectRoles(w http.ResponseWriter, r *http.Request) {
	s.listRoles(w, r, gochi.URLParam(r, "project"))
}

// GrantProjectRole handles POST /api/v1/projects/{project}/roles.
func (s *Server) GrantProjectRole(w http.ResponseWriter, r *http.Request) {
	s.grantRole(w, r, gochi.URLParam(r, "project"), false)
}

// SetProjectRole handles PUT /api/v1/projects/{project}/roles.
func (s *Server) SetProjectRole(w http.ResponseWriter, r *http.Request) {
	s.grantRole(w, r, gochi.URLParam(r, "project"), true)
}

// RevokeProjectRole handles DELETE /api/v1/projects/{project}/roles/{pattern}.
func (s *Server) RevokeProjectRole(w http.ResponseWriter, r *http.Request) {
	s.revokeRole(w, r, gochi.URLParam(r, "project"))
}

// ListServerRoles handles GET /api/v1/server/roles.
func (s *Server) ListServerRoles(w http.ResponseWriter, r *http.Request) {
	s.listRoles(w, r, role.ServerContext)
}

// GrantServerRole handles POST /api/v1/server/roles.
func (s *Server) GrantServerRole(w http.ResponseWriter, r *http.Request) {
	s.grantRole(w, r, role.ServerContext, false)
}

// SetServerRole handles PUT /api/v1/server/roles.
func (s *Server) SetServerRole(w http.ResponseWriter, r *http.Request) {
	s.grantRole(w, r, role.ServerContext, true)
}

// RevokeServerRole handles DELETE /api/v1/server/roles/{pattern}.
func (s *Server) RevokeServerRole(w http.ResponseWriter, r *http.Request) {
	s.revokeRole(w, r, role.ServerContext)
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request, context string) {
	var min role.Role
	if name := r.URL.Query().Get("min_role"); name != "" {
		parsed, err := role.Parse(name)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		min = parsed
	}

	rules, err := s.roles.ListContext(r.Context(), UserFromContext(r.Context()), context, min)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RoleRule, len(rules))
	for i, rule := range rules {
		items[i] = ruleToDTO(rule)
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) grantRole(w http.ResponseWriter, r *http.Request, context string, upsert bool) {
	var req GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	parsed, err := role.Parse(req.Role)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	u := UserFromContext(r.Context())
	var rule role.Rule
	if upsert {
		rule, err = s.roles.Set(r.Context(), u, req.EmailPattern, context, parsed)
	} else {
		rule, err = s.roles.Grant(r.Context(), u, req.EmailPattern, context, parsed)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !upsert {
		status = http.StatusCreated
	}
	writeJSON(w, status, ruleToDTO(rule))
}

func (s *Server) revokeRole(w http.ResponseWriter, r *http.Request, context string) {
	ignoreMissing := r.URL.Query().Get("ignore_missing") == "true"

	err := s.roles.Revoke(
		r.Context(), UserFromContext(r.Context()),
		gochi.URLParam(r, "pattern"), context, ignoreMissing,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyRole handles GET /api/v1/me/role. The context query parameter
// defaults to the server context.
func (s *Server) MyRole(w http.ResponseWriter, r *http.Request) {
	context := r.URL.Query().Get("context")
	if context == "" {
		context = role.ServerContext
	}

	rule, err := s.roles.ResolveSelf(r.Context(), UserFromContext(r.Context()), context)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToDTO(rule))
}

// SubmitRequest handles POST /api/v1/me/requests.
func (s *Server) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	payload, err := payloadFromBody(body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	req, err := s.requests.Submit(r.Context(), UserFromContext(r.Context()), payload)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestToDTO(req))
}

// ListMyRequests handles GET /api/v1/me/requests.
func (s *Server) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requests.ListMine(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestsToDTO(reqs))
}

// CancelRequest handles DELETE /api/v1/me/requests/{id}.
func (s *Server) CancelRequest(w http.ResponseWriter, r *http.Request) {
	err := s.requests.Cancel(r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAdminRequests handles GET /api/v1/admin/requests.
func (s *Server) ListAdminRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requests.ListAdminView(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestsToDTO(reqs))
}

// ResolveRequests handles POST /api/v1/admin/requests/resolve.
func (s *Server) ResolveRequests(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequestsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body.Decisions) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "At least one decision is required")
		return
	}

	decisions := make([]requestuc.Decision, len(body.Decisions))
	for i, d := range body.Decisions {
		status, err := domreq.ParseStatus(d.Status)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		decisions[i] = requestuc.Decision{ID: d.ID, Status: status}
	}

	resolved, err := s.requests.ResolveBatch(r.Context(), UserFromContext(r.Context()), decisions)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestsToDTO(resolved))
}

// UpsertDocument handles PUT /api/v1/projects/{project}/documents/{docID}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	var req UpsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := document.New(gochi.URLParam(r, "docID"), req.Title, req.Text, req.Tags, req.Fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	created, err := s.documents.Upsert(
		r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "project"), doc,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, documentToDTO(doc))
}

// GetDocument handles GET /api/v1/projects/{project}/documents/{docID}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(
		r.Context(), UserFromContext(r.Context()),
		gochi.URLParam(r, "project"), gochi.URLParam(r, "docID"),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(doc))
}

// DeleteDocument handles DELETE /api/v1/projects/{project}/documents/{docID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.documents.Delete(
		r.Context(), UserFromContext(r.Context()),
		gochi.URLParam(r, "project"), gochi.URLParam(r, "docID"),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchDocuments handles POST /api/v1/projects/{project}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs, total, err := s.documents.Search(
		r.Context(), UserFromContext(r.Context()), gochi.URLParam(r, "project"),
		docrepo.Query{
			Text:   req.Query,
			Tags:   req.Tags,
			Offset: maxInt(req.Offset, 0),
			Limit:  s.clampLimit(req.Limit),
		},
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := SearchResponse{Total: total, Results: make([]Document, len(docs))}
	for i, d := range docs {
		resp.Results[i] = documentToDTO(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultPageSize
	}
	if limit > s.maxPageSize {
		return s.maxPageSize
	}
	return limit
}

func payloadFromBody(body SubmitRequestBody) (domreq.Payload, error) {
	switch domreq.Kind(body.Kind) {
	case domreq.KindServerRole:
		r, err := role.Parse(body.Role)
		if err != nil {
			return domreq.Payload{}, err
		}
		return domreq.NewServerRole(r)
	case domreq.KindProjectRole:
		r, err := role.Parse(body.Role)
		if err != nil {
			return domreq.Payload{}, err
		}
		return domreq.NewProjectRole(body.Project, r)
	case domreq.KindCreateProject:
		return domreq.NewCreateProject(body.Project, body.Name, body.Description, body.Folder)
	default:
		return domreq.Payload{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidRequest, body.Kind)
	}
}

func requestsToDTO(reqs []domreq.Request) []PermissionRequest {
	items := make([]PermissionRequest, len(reqs))
	for i, req := range reqs {
		items[i] = requestToDTO(req)
	}
	return items
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
