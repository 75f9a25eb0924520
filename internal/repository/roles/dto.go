package roles

import (
	"fmt"
	"strconv"

	"github.com/annodex-io/annodex/internal/domain/role"
)

// ruleToHash converts a domain Rule to a map for HSET. role_level carries
// the numeric hierarchy value for the FT numeric range filter; role keeps
// the canonical name for humans reading the store.
func ruleToHash(rule role.Rule) map[string]string {
	return map[string]string{
		"pattern":    rule.Pattern().String(),
		"context":    rule.Context(),
		"role":       rule.Role().String(),
		"role_level": strconv.Itoa(int(rule.Role())),
	}
}

// ruleFromHash hydrates a domain Rule from an HGETALL result map.
func ruleFromHash(m map[string]string) (role.Rule, error) {
	pattern, err := role.ParsePattern(m["pattern"])
	if err != nil {
		return role.Rule{}, fmt.Errorf("invalid stored pattern: %w", err)
	}

	level, err := strconv.Atoi(m["role_level"])
	if err != nil {
		return role.Rule{}, fmt.Errorf("invalid stored role_level %q: %w", m["role_level"], err)
	}

	return role.Reconstruct(pattern, m["context"], role.Role(level)), nil
}
