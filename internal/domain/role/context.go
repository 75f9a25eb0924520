package role

import (
	"fmt"
	"strings"

	"github.com/annodex-io/annodex/internal/domain"
)

// ServerContext is the reserved scope for server-wide roles. Project
// identifiers may not start with "_" so the two namespaces cannot collide.
const ServerContext = "_server"

// disallowed characters in project identifiers: whitespace plus the
// separator and glob characters used in document-store key patterns.
const disallowedContextChars = " \t\n,:/\\*?\"<>|"

// ValidateContext checks a context string: either the literal server
// context or a well-formed project identifier.
func ValidateContext(ctx string) error {
	if ctx == ServerContext {
		return nil
	}
	if ctx == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidContext)
	}
	if strings.HasPrefix(ctx, "_") {
		return fmt.Errorf("%w: %q must not start with underscore", domain.ErrInvalidContext, ctx)
	}
	if strings.ContainsAny(ctx, disallowedContextChars) {
		return fmt.Errorf("%w: %q contains a disallowed character", domain.ErrInvalidContext, ctx)
	}
	if len(ctx) > 128 {
		return fmt.Errorf("%w: %q too long (max 128)", domain.ErrInvalidContext, ctx)
	}
	return nil
}

// IsServerContext reports whether ctx is the server-wide scope.
func IsServerContext(ctx string) bool { return ctx == ServerContext }
