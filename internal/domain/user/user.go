// Package user holds the request-scoped caller identity consumed by the
// role resolver. A User is derived per request from a bearer token or API
// key and is never persisted.
package user

import "strings"

// User is the authenticated (or anonymous) caller of a single request.
type User struct {
	email        string
	superadmin   bool
	authDisabled bool
	restrictions *Restrictions
}

// Anonymous is the guest caller: no email, no privileges.
func Anonymous() User { return User{} }

// New creates an authenticated user.
func New(email string) User {
	return User{email: strings.ToLower(strings.TrimSpace(email))}
}

// WithSuperadmin marks the user as matching the recovery-admin setting.
func (u User) WithSuperadmin() User {
	u.superadmin = true
	return u
}

// WithAuthDisabled marks the user as coming from a no-auth deployment.
func (u User) WithAuthDisabled() User {
	u.authDisabled = true
	return u
}

// WithRestrictions attaches API-key scope restrictions.
func (u User) WithRestrictions(r *Restrictions) User {
	u.restrictions = r
	return u
}

// Email returns the caller's address, empty for anonymous callers.
func (u User) Email() string { return u.email }

// IsAnonymous reports whether the caller has no known identity.
func (u User) IsAnonymous() bool { return u.email == "" }

// Identity returns the email, or "GUEST" for anonymous callers.
// Used when naming the caller in authorization failures.
func (u User) Identity() string {
	if u.email == "" {
		return "GUEST"
	}
	return u.email
}

// Superadmin reports whether the caller matches the recovery admin.
func (u User) Superadmin() bool { return u.superadmin }

// AuthDisabled reports whether the server runs without authentication.
func (u User) AuthDisabled() bool { return u.authDisabled }

// Restrictions returns the API-key scope, nil when the caller did not
// authenticate via a scoped key.
func (u User) Restrictions() *Restrictions { return u.restrictions }
