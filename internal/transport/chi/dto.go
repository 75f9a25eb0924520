package chi

import (
	"time"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// ErrorCode classifies API errors.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodeForbidden        ErrorCode = "forbidden"
	CodeKeyRestricted    ErrorCode = "api_key_restricted"
	CodeNotFound         ErrorCode = "not_found"
	CodeAlreadyExists    ErrorCode = "already_exists"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body. Identity names the denied
// caller on forbidden errors; Key names the API key on key-scope errors.
type ErrorResponse struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Identity string    `json:"identity,omitempty"`
	Key      string    `json:"key,omitempty"`
}

// RoleRule is the wire form of a role rule.
type RoleRule struct {
	EmailPattern string `json:"email_pattern"`
	Context      string `json:"context"`
	Role         string `json:"role"`
}

func ruleToDTO(r role.Rule) RoleRule {
	return RoleRule{
		EmailPattern: r.Pattern().String(),
		Context:      r.Context(),
		Role:         r.Role().String(),
	}
}

// GrantRoleRequest is the body of role-grant endpoints.
type GrantRoleRequest struct {
	EmailPattern string `json:"email_pattern"`
	Role         string `json:"role"`
}

// Project is the wire form of a project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Folder      string `json:"folder,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func projectToDTO(p domproj.Project) Project {
	return Project{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Folder:      p.Folder(),
		CreatedAt:   p.CreatedAt(),
	}
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Folder      string `json:"folder"`
}

// PermissionRequest is the wire form of a permission request.
type PermissionRequest struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind"`
	Role        string    `json:"role,omitempty"`
	Project     string    `json:"project,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Folder      string    `json:"folder,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func requestToDTO(r domreq.Request) PermissionRequest {
	p := r.Payload()
	dto := PermissionRequest{
		ID:          r.ID(),
		Email:       r.Email(),
		Status:      string(r.Status()),
		Kind:        string(p.Kind()),
		Project:     p.Project(),
		Name:        p.Name(),
		Description: p.Description(),
		Folder:      p.Folder(),
		SubmittedAt: r.SubmittedAt(),
	}
	if p.Role() != role.None {
		dto.Role = p.Role().String()
	}
	return dto
}

// SubmitRequestBody is the body of POST /me/requests. Kind selects the
// variant; the remaining fields follow it.
type SubmitRequestBody struct {
	Kind        string `json:"kind"`
	Role        string `json:"role"`
	Project     string `json:"project"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Folder      string `json:"folder"`
}

// ResolveRequestsBody is the body of POST /admin/requests/resolve.
type ResolveRequestsBody struct {
	Decisions []RequestDecision `json:"decisions"`
}

// RequestDecision is one batch element: a request id and its new status.
type RequestDecision struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Document is the wire form of a document. Text is omitted for callers
// below READER.
type Document struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Text      string             `json:"text,omitempty"`
	Tags      map[string]string  `json:"tags,omitempty"`
	Fields    map[string]float64 `json:"fields,omitempty"`
	UpdatedAt int64              `json:"updated_at"`
}

func documentToDTO(d domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Title:     d.Title(),
		Text:      d.Text(),
		Tags:      d.Tags(),
		Fields:    d.Fields(),
		UpdatedAt: d.UpdatedAt(),
	}
}

// UpsertDocumentRequest is the body of PUT /projects/{project}/documents/{id}.
type UpsertDocumentRequest struct {
	Title  string             `json:"title"`
	Text   string             `json:"text"`
	Tags   map[string]string  `json:"tags"`
	Fields map[string]float64 `json:"fields"`
}

// SearchRequest is the body of POST /projects/{project}/search.
type SearchRequest struct {
	Query  string            `json:"query"`
	Tags   map[string]string `json:"tags"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// SearchResponse carries one page of matches plus the total match count.
type SearchResponse struct {
	Total   int        `json:"total"`
	Results []Document `json:"results"`
}
