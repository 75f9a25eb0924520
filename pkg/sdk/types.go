package annodex

import (
	"time"

	domdoc "github.com/annodex-io/annodex/internal/domain/document"
	domproj "github.com/annodex-io/annodex/internal/domain/project"
	domreq "github.com/annodex-io/annodex/internal/domain/request"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// RoleRule is a role assignment: who (email pattern) holds what (role)
// where (context).
type RoleRule struct {
	EmailPattern string
	Context      string
	Role         string
}

func fromInternalRule(r role.Rule) RoleRule {
	return RoleRule{
		EmailPattern: r.Pattern().String(),
		Context:      r.Context(),
		Role:         r.Role().String(),
	}
}

// ProjectInfo describes a project.
type ProjectInfo struct {
	ID          string
	Name        string
	Description string
	Folder      string
	CreatedAt   time.Time
}

func fromInternalProject(p domproj.Project) ProjectInfo {
	return ProjectInfo{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Folder:      p.Folder(),
		CreatedAt:   time.UnixMilli(p.CreatedAt()).UTC(),
	}
}

// Document is an annotated document. Text is empty when the acting
// identity holds only METAREADER on the project.
type Document struct {
	ID        string
	Title     string
	Text      string
	Tags      map[string]string
	Fields    map[string]float64
	UpdatedAt time.Time
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Title:     d.Title(),
		Text:      d.Text(),
		Tags:      d.Tags(),
		Fields:    d.Fields(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt()).UTC(),
	}
}

// PermissionRequest is a pending or decided permission request.
type PermissionRequest struct {
	ID          string
	Email       string
	Status      string
	Kind        string
	Role        string
	Project     string
	Name        string
	Description string
	Folder      string
	SubmittedAt time.Time
}

func fromInternalRequest(r domreq.Request) PermissionRequest {
	p := r.Payload()
	out := PermissionRequest{
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
		out.Role = p.Role().String()
	}
	return out
}

func fromInternalRequests(reqs []domreq.Request) []PermissionRequest {
	out := make([]PermissionRequest, len(reqs))
	for i, r := range reqs {
		out[i] = fromInternalRequest(r)
	}
	return out
}

// SearchQuery narrows a document search. Zero-value fields do not filter.
type SearchQuery struct {
	Text   string
	Tags   map[string]string
	Offset int
	Limit  int
}

// SearchResult is one page of matches plus the total match count.
type SearchResult struct {
	Total     int
	Documents []Document
}
