package user

import "github.com/annodex-io/annodex/internal/domain/role"

// Restrictions is the scope of an API key: per-context role ceilings that
// only ever lower, never raise, the role that would otherwise resolve.
type Restrictions struct {
	keyName        string
	canEditAPIKeys bool
	server         *role.Role
	defaultProject *role.Role
	projects       map[string]role.Role
}

// NewRestrictions creates an API-key scope. A nil ceiling means "no clamp"
// for that context type.
func NewRestrictions(
	keyName string,
	canEditAPIKeys bool,
	server, defaultProject *role.Role,
	projects map[string]role.Role,
) *Restrictions {
	return &Restrictions{
		keyName:        keyName,
		canEditAPIKeys: canEditAPIKeys,
		server:         server,
		defaultProject: defaultProject,
		projects:       projects,
	}
}

// KeyName returns the API key's display name, used in denial messages.
func (r *Restrictions) KeyName() string { return r.keyName }

// CanEditAPIKeys reports whether the key may manage other keys.
func (r *Restrictions) CanEditAPIKeys() bool { return r.canEditAPIKeys }

// CeilingFor returns the role ceiling applicable to the given context.
// The server ceiling applies to the server context; project contexts use
// the per-project entry when present, else the default project ceiling.
// An unlisted project with no default means no clamp (ok = false).
func (r *Restrictions) CeilingFor(context string) (role.Role, bool) {
	if role.IsServerContext(context) {
		if r.server == nil {
			return 0, false
		}
		return *r.server, true
	}
	if c, ok := r.projects[context]; ok {
		return c, true
	}
	if r.defaultProject != nil {
		return *r.defaultProject, true
	}
	return 0, false
}

// Clamp lowers the resolved role to the ceiling for the given context.
// Restrictions never escalate: the result is min(resolved, ceiling).
func (r *Restrictions) Clamp(context string, resolved role.Role) role.Role {
	ceiling, ok := r.CeilingFor(context)
	if !ok {
		return resolved
	}
	return role.Min(resolved, ceiling)
}
