// Package request holds the permission-request workflow values: the tagged
// payload variants, the approval state machine and the request aggregate.
package request

import (
	"fmt"

	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// Kind tags the three payload variants.
type Kind string

const (
	// KindServerRole asks for a role on the server context.
	KindServerRole Kind = "server_role"
	// KindProjectRole asks for a role on a specific project.
	KindProjectRole Kind = "project_role"
	// KindCreateProject asks for a new project with the requester as admin.
	KindCreateProject Kind = "create_project"
)

// Payload is the closed union of request variants. Exactly one of the
// three kinds; consumers switch on Kind(), never on concrete types.
type Payload struct {
	kind        Kind
	role        role.Role
	project     string
	name        string
	description string
	folder      string
}

// NewServerRole creates a server-role request payload.
func NewServerRole(r role.Role) (Payload, error) {
	if !r.IsValid() || r == role.None {
		return Payload{}, fmt.Errorf("%w: role %s cannot be requested", domain.ErrInvalidRequest, r)
	}
	return Payload{kind: KindServerRole, role: r}, nil
}

// NewProjectRole creates a project-role request payload.
func NewProjectRole(project string, r role.Role) (Payload, error) {
	if err := role.ValidateContext(project); err != nil {
		return Payload{}, err
	}
	if role.IsServerContext(project) {
		return Payload{}, fmt.Errorf("%w: use a server-role request for the server context", domain.ErrInvalidRequest)
	}
	if !r.IsValid() || r == role.None {
		return Payload{}, fmt.Errorf("%w: role %s cannot be requested", domain.ErrInvalidRequest, r)
	}
	return Payload{kind: KindProjectRole, role: r, project: project}, nil
}

// NewCreateProject creates a create-project request payload.
func NewCreateProject(project, name, description, folder string) (Payload, error) {
	if err := role.ValidateContext(project); err != nil {
		return Payload{}, err
	}
	if role.IsServerContext(project) {
		return Payload{}, fmt.Errorf("%w: reserved project id", domain.ErrInvalidRequest)
	}
	if name == "" {
		name = project
	}
	return Payload{
		kind:        KindCreateProject,
		project:     project,
		name:        name,
		description: description,
		folder:      folder,
	}, nil
}

// Reconstruct creates a payload without validation (storage hydration).
func Reconstruct(kind Kind, project string, r role.Role, name, description, folder string) Payload {
	return Payload{
		kind:        kind,
		role:        r,
		project:     project,
		name:        name,
		description: description,
		folder:      folder,
	}
}

// Kind returns the payload variant tag.
func (p Payload) Kind() Kind { return p.kind }

// Role returns the requested role (zero for create-project payloads).
func (p Payload) Role() role.Role { return p.role }

// Project returns the target project id, empty for server-role payloads.
func (p Payload) Project() string { return p.project }

// Name returns the requested project display name (create-project only).
func (p Payload) Name() string { return p.name }

// Description returns the requested project description (create-project only).
func (p Payload) Description() string { return p.description }

// Folder returns the requested project folder (create-project only).
func (p Payload) Folder() string { return p.folder }

// Context returns the authorization context an approver is checked
// against: the target project for project-role payloads, the server
// context otherwise.
func (p Payload) Context() string {
	if p.kind == KindProjectRole {
		return p.project
	}
	return role.ServerContext
}
