package role

import (
	"fmt"
	"strings"

	"github.com/annodex-io/annodex/internal/domain"
)

// PatternKind distinguishes the three closed email-pattern forms.
type PatternKind int

const (
	// Guest is the universal wildcard "*", matching any caller.
	Guest PatternKind = iota + 1
	// Domain is a domain wildcard "*@domain".
	Domain
	// Exact is a literal email address.
	Exact
)

// Pattern is an email pattern as stored in a role rule: an exact address,
// a domain wildcard or the guest wildcard. The closed variant replaces ad
// hoc string slicing so matching and specificity stay total.
type Pattern struct {
	kind  PatternKind
	value string // email for Exact, domain for Domain, empty for Guest
}

// GuestPattern is the universal "*" pattern.
var GuestPattern = Pattern{kind: Guest}

// ParsePattern classifies a raw pattern string. "*" is the guest wildcard,
// "*@domain" a domain wildcard, anything else containing "@" an exact
// address. Strings matching none of the three forms are rejected.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "*":
		return GuestPattern, nil
	case strings.HasPrefix(s, "*@"):
		dom := s[2:]
		if dom == "" || strings.ContainsAny(dom, "@* ") {
			return Pattern{}, fmt.Errorf("%w: %q", domain.ErrInvalidPattern, s)
		}
		return Pattern{kind: Domain, value: dom}, nil
	case strings.Count(s, "@") == 1 && !strings.ContainsAny(s, "* "):
		local, dom, _ := strings.Cut(s, "@")
		if local == "" || dom == "" {
			return Pattern{}, fmt.Errorf("%w: %q", domain.ErrInvalidPattern, s)
		}
		return Pattern{kind: Exact, value: s}, nil
	default:
		return Pattern{}, fmt.Errorf("%w: %q", domain.ErrInvalidPattern, s)
	}
}

// ExactPattern creates an exact-email pattern, validating the address form.
func ExactPattern(email string) (Pattern, error) {
	p, err := ParsePattern(email)
	if err != nil {
		return Pattern{}, err
	}
	if p.kind != Exact {
		return Pattern{}, fmt.Errorf("%w: %q is not an exact address", domain.ErrInvalidPattern, email)
	}
	return p, nil
}

// Kind returns the pattern variant.
func (p Pattern) Kind() PatternKind { return p.kind }

// IsZero reports whether p is the uninitialized pattern.
func (p Pattern) IsZero() bool { return p.kind == 0 }

// String returns the stored form: the address, "*@domain" or "*".
func (p Pattern) String() string {
	switch p.kind {
	case Exact:
		return p.value
	case Domain:
		return "*@" + p.value
	default:
		return "*"
	}
}

// Specificity orders patterns by match strength: exact (3) beats domain
// wildcard (2) beats guest wildcard (1). Ties cannot occur within one
// context because the pattern is part of the store's unique key.
func (p Pattern) Specificity() int {
	switch p.kind {
	case Exact:
		return 3
	case Domain:
		return 2
	default:
		return 1
	}
}

// Matches reports whether the pattern applies to the given email.
// The guest wildcard matches everyone, including anonymous callers
// (empty email).
func (p Pattern) Matches(email string) bool {
	email = strings.ToLower(email)
	switch p.kind {
	case Guest:
		return true
	case Domain:
		return strings.HasSuffix(email, "@"+p.value)
	case Exact:
		return email == p.value
	default:
		return false
	}
}

// CandidatesFor returns the patterns that could match the given caller,
// most specific first. Anonymous callers match only the guest wildcard.
func CandidatesFor(email string) []Pattern {
	if email == "" {
		return []Pattern{GuestPattern}
	}
	email = strings.ToLower(email)
	candidates := []Pattern{{kind: Exact, value: email}}
	if _, dom, ok := strings.Cut(email, "@"); ok && dom != "" {
		candidates = append(candidates, Pattern{kind: Domain, value: dom})
	}
	return append(candidates, GuestPattern)
}
