// Package role holds the access-control value types: the role hierarchy,
// email patterns, contexts and persisted role rules.
package role

import (
	"fmt"
	"strings"

	"github.com/annodex-io/annodex/internal/domain"
)

// Role is an access level on the ordered hierarchy
// NONE < LISTER < METAREADER < READER < WRITER < ADMIN.
// Only the relative order of the numeric values is significant; all
// "at least" checks are integer comparisons on this scale.
type Role int

const (
	// None is the absence of access. Never stored as an explicit rule.
	None Role = 0
	// Lister may see that a project exists.
	Lister Role = 5
	// MetaReader may read document metadata but not document text.
	MetaReader Role = 10
	// Reader may read documents and run queries.
	Reader Role = 20
	// Writer may upload, modify and delete documents.
	Writer Role = 30
	// Admin may manage roles and the project (or server) itself.
	Admin Role = 40
)

var roleNames = map[Role]string{
	None:       "NONE",
	Lister:     "LISTER",
	MetaReader: "METAREADER",
	Reader:     "READER",
	Writer:     "WRITER",
	Admin:      "ADMIN",
}

// Parse converts a role name (case-insensitive) to a Role.
func Parse(s string) (Role, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == upper {
			return r, nil
		}
	}
	return None, fmt.Errorf("%w: %q", domain.ErrInvalidRole, s)
}

// String returns the canonical upper-case role name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ROLE(%d)", int(r))
}

// IsValid reports whether r is one of the defined hierarchy levels.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r meets the given minimum level.
func (r Role) AtLeast(min Role) bool { return r >= min }

// Min returns the lower of two roles (used for restriction clamping).
func Min(a, b Role) Role {
	if b < a {
		return b
	}
	return a
}
