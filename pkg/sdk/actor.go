package annodex

import "github.com/annodex-io/annodex/internal/domain/user"

// Actor is the identity SDK calls act as. The role resolver evaluates it
// exactly like a caller of the HTTP API.
type Actor struct {
	email  string
	system bool
}

// As acts as the given authenticated email.
func As(email string) Actor {
	return Actor{email: email}
}

// Guest acts as an anonymous caller: only guest wildcard rules apply.
func Guest() Actor {
	return Actor{}
}

// System bypasses authorization entirely; every check resolves to ADMIN.
// For trusted offline tooling only.
func System() Actor {
	return Actor{system: true}
}

func (a Actor) toUser(superadmin string) user.User {
	if a.system {
		return user.Anonymous().WithAuthDisabled()
	}
	if a.email == "" {
		return user.Anonymous()
	}
	u := user.New(a.email)
	if superadmin != "" && u.Email() == superadmin {
		u = u.WithSuperadmin()
	}
	return u
}
