package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annodex-io/annodex/internal/config"
	"github.com/annodex-io/annodex/internal/domain/role"
	"github.com/annodex-io/annodex/internal/domain/user"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type userCtxKey struct{}

// ContextWithUser stores the authenticated caller in the context.
func ContextWithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext extracts the caller placed by the auth middleware.
// Returns the anonymous user when absent.
func UserFromContext(ctx context.Context) user.User {
	if u, ok := ctx.Value(userCtxKey{}).(user.User); ok {
		return u
	}
	return user.Anonymous()
}

// AuthMiddleware derives the caller identity from the Authorization header
// per the auth configuration: static bearer tokens map to emails, API keys
// map to scoped identities. Anonymous callers pass through only when
// guests are allowed. requests can be nil.
func AuthMiddleware(cfg config.AuthConfig, requests *prometheus.CounterVec) func(http.Handler) http.Handler {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	count := func(kind string) {
		if requests != nil {
			requests.WithLabelValues(kind).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.NoAuth {
				count("no_auth")
				serveAs(next, w, r, user.Anonymous().WithAuthDisabled())
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				if !cfg.AllowGuests {
					writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
					return
				}
				count("guest")
				serveAs(next, w, r, user.Anonymous())
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "authorization header must use Bearer scheme")
				return
			}
			secret := auth[len(bearerPrefix):]

			if email, ok := cfg.Tokens[secret]; ok {
				count("token")
				serveAs(next, w, r, withSuperadmin(user.New(email), adminEmail))
				return
			}

			if key, ok := cfg.APIKeys[secret]; ok {
				count("api_key")
				u := user.New(key.Email).WithRestrictions(restrictionsFromConfig(key))
				serveAs(next, w, r, withSuperadmin(u, adminEmail))
				return
			}

			writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid credentials")
		})
	}
}

func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, u user.User) {
	next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
}

func withSuperadmin(u user.User, adminEmail string) user.User {
	if adminEmail != "" && u.Email() == adminEmail {
		return u.WithSuperadmin()
	}
	return u
}

// restrictionsFromConfig builds the key's role ceilings. Ceiling names
// were validated at config load; unparseable names mean no clamp.
func restrictionsFromConfig(key config.APIKeyConfig) *user.Restrictions {
	parse := func(name string) *role.Role {
		if name == "" {
			return nil
		}
		r, err := role.Parse(name)
		if err != nil {
			return nil
		}
		return &r
	}

	var projects map[string]role.Role
	if len(key.ProjectRoles) > 0 {
		projects = make(map[string]role.Role, len(key.ProjectRoles))
		for project, name := range key.ProjectRoles {
			if r := parse(name); r != nil {
				projects[project] = *r
			}
		}
	}

	return user.NewRestrictions(
		key.Name,
		key.CanEditAPIKeys,
		parse(key.ServerRole),
		parse(key.DefaultProjectRole),
		projects,
	)
}
