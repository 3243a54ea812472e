package authz

import (
	"fmt"
	"strings"
)

// ParsePolicy reads a policy from its text form: "open", "permit-all",
// "deny-all" or "roles:<role>[,<role>...]". Matching is case-insensitive
// for the keywords.
func ParsePolicy(s string) (Policy, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "", "open":
		return NoPolicy(), nil
	case "permit-all", "permitall":
		return PermitAllPolicy(), nil
	case "deny-all", "denyall":
		return DenyAllPolicy(), nil
	}

	if !strings.HasPrefix(lower, "roles:") {
		return Policy{}, fmt.Errorf("unknown policy %q", s)
	}

	var roles []string
	for _, r := range strings.Split(trimmed[len("roles:"):], ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return Roles(roles...), nil
}
