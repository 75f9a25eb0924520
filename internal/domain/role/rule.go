package role

import (
	"fmt"

	"github.com/annodex-io/annodex/internal/domain"
)

// Rule is a persisted role assignment (immutable value object).
// At most one rule exists per (pattern, context) pair; the pair is the
// store's unique key.
type Rule struct {
	pattern Pattern
	context string
	role    Role
}

// New validates and creates a Rule.
// NONE is represented by the absence of a rule and may not be stored.
// Guest patterns are not permitted on the server context, and a project's
// guest rule may not grant ADMIN.
func New(pattern Pattern, context string, r Role) (Rule, error) {
	if pattern.IsZero() {
		return Rule{}, fmt.Errorf("%w: empty", domain.ErrInvalidPattern)
	}
	if err := ValidateContext(context); err != nil {
		return Rule{}, err
	}
	if !r.IsValid() || r == None {
		return Rule{}, fmt.Errorf("%w: %q cannot be stored", domain.ErrInvalidRole, r.String())
	}
	if pattern.Kind() == Guest {
		if IsServerContext(context) {
			return Rule{}, fmt.Errorf("%w: guest wildcard not allowed on the server context", domain.ErrInvalidPattern)
		}
		if r == Admin {
			return Rule{}, fmt.Errorf("%w: guest wildcard cannot be ADMIN", domain.ErrInvalidRole)
		}
	}
	return Rule{pattern: pattern, context: context, role: r}, nil
}

// Reconstruct creates a Rule without validation (storage hydration).
func Reconstruct(pattern Pattern, context string, r Role) Rule {
	return Rule{pattern: pattern, context: context, role: r}
}

// NoAccess is the default rule returned when nothing matches: the guest
// wildcard with role NONE on the requested context.
func NoAccess(context string) Rule {
	return Rule{pattern: GuestPattern, context: context, role: None}
}

// Pattern returns the email pattern.
func (r Rule) Pattern() Pattern { return r.pattern }

// Context returns the scope the rule applies to.
func (r Rule) Context() string { return r.context }

// Role returns the granted role.
func (r Rule) Role() Role { return r.role }

// WithRole returns a copy of the rule with a different role. Used when
// resolution overrides or clamps the stored role.
func (r Rule) WithRole(role Role) Rule {
	r.role = role
	return r
}
