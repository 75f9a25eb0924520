// Package project holds the project aggregate: a tenant scope that owns
// documents and role rules.
package project

import (
	"fmt"
	"time"

	"github.com/annodex-io/annodex/internal/domain"
	"github.com/annodex-io/annodex/internal/domain/role"
)

// Project is a tenant scope (immutable value object). Its id doubles as
// the role context for everything inside it.
type Project struct {
	id          string
	name        string
	description string
	folder      string
	createdAt   int64
}

// New validates and creates a Project. The id follows the context rules:
// no leading underscore, no separator characters.
func New(id, name, description, folder string) (Project, error) {
	if err := role.ValidateContext(id); err != nil {
		return Project{}, err
	}
	if role.IsServerContext(id) {
		return Project{}, fmt.Errorf("%w: %q is reserved", domain.ErrInvalidContext, id)
	}
	if name == "" {
		name = id
	}
	return Project{
		id:          id,
		name:        name,
		description: description,
		folder:      folder,
		createdAt:   time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Project without validation (storage hydration).
func Reconstruct(id, name, description, folder string, createdAt int64) Project {
	return Project{id: id, name: name, description: description, folder: folder, createdAt: createdAt}
}

// ID returns the project identifier.
func (p Project) ID() string { return p.id }

// Name returns the display name.
func (p Project) Name() string { return p.name }

// Description returns the free-form description.
func (p Project) Description() string { return p.description }

// Folder returns the organizational folder.
func (p Project) Folder() string { return p.folder }

// CreatedAt returns the creation timestamp (unix millis).
func (p Project) CreatedAt() int64 { return p.createdAt }
