package authz

import (
	"net/http"
	"sort"
	"strings"

	"github.com/kumuluz/go-jwt-auth/principal"
)

// Kind identifies a role policy.
type Kind int

// Policy kinds. The zero value is Open.
const (
	// Open means no policy was declared.
	Open Kind = iota
	// PermitAll admits every caller, authenticated or not.
	PermitAll
	// DenyAll rejects every caller, authenticated or not.
	DenyAll
	// RolesAllowed admits authenticated callers holding one of the roles.
	RolesAllowed
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "Open"
	case PermitAll:
		return "PermitAll"
	case DenyAll:
		return "DenyAll"
	case RolesAllowed:
		return "RolesAllowed"
	default:
		return "Unknown"
	}
}

// Policy is the role policy declared for an endpoint.
type Policy struct {
	kind  Kind
	roles map[string]struct{}
}

// NoPolicy returns the Open policy.
func NoPolicy() Policy { return Policy{kind: Open} }

// PermitAllPolicy returns the PermitAll policy.
func PermitAllPolicy() Policy { return Policy{kind: PermitAll} }

// DenyAllPolicy returns the DenyAll policy.
func DenyAllPolicy() Policy { return Policy{kind: DenyAll} }

// Roles returns a RolesAllowed policy for roles. With no roles the policy
// admits nobody.
func Roles(roles ...string) Policy {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Policy{kind: RolesAllowed, roles: set}
}

// Kind returns the policy kind.
func (p Policy) Kind() Kind { return p.kind }

// AllowedRoles returns the roles of a RolesAllowed policy in sorted order.
func (p Policy) AllowedRoles() []string {
	out := make([]string, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// IsDeclared reports whether the policy is anything but Open.
func (p Policy) IsDeclared() bool { return p.kind != Open }

func (p Policy) String() string {
	if p.kind != RolesAllowed {
		return p.kind.String()
	}
	return "RolesAllowed(" + strings.Join(p.AllowedRoles(), ",") + ")"
}

// Decision is the outcome of evaluating a policy.
type Decision int

// Decisions.
const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// StatusCode maps the decision to its HTTP status: 200, 401 or 403.
func (d Decision) StatusCode() int {
	switch d {
	case Allow:
		return http.StatusOK
	case DenyUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Evaluate decides whether p may access an endpoint guarded by policy.
// p is nil for an unauthenticated caller.
//
// DenyAll always forbids. PermitAll and Open always allow. RolesAllowed
// forbids when it names no roles, asks for authentication when there is no
// principal, and otherwise allows when one of the principal's groups is an
// allowed role.
func Evaluate(policy Policy, p *principal.Principal) Decision {
	switch policy.kind {
	case DenyAll:
		return DenyForbidden
	case PermitAll, Open:
		return Allow
	}

	if len(policy.roles) == 0 {
		return DenyForbidden
	}
	if p == nil {
		return DenyUnauthenticated
	}

	for group := range p.Groups() {
		if _, ok := policy.roles[group]; ok {
			return Allow
		}
	}
	return DenyForbidden
}

// Resolve returns the policy in effect for an endpoint: the method-level
// declaration when there is one, otherwise the class-level one.
func Resolve(method, class Policy) Policy {
	if method.IsDeclared() {
		return method
	}
	return class
}
