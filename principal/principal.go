package principal

import (
	"encoding/json"
	"sort"

	"github.com/kumuluz/go-jwt-auth/claims"
)

// Principal is the authenticated identity derived from a verified token.
// It is immutable once built and safe for concurrent use.
type Principal struct {
	name     string
	rawToken string
	claims   claims.Set
}

// New returns a Principal with the given name, original compact token and
// claim set.
func New(name, rawToken string, set claims.Set) *Principal {
	return &Principal{
		name:     name,
		rawToken: rawToken,
		claims:   set,
	}
}

// Name returns the principal name chosen from upn, preferred_username or sub.
func (p *Principal) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Claims returns the full claim set, including raw_token.
func (p *Principal) Claims() claims.Set {
	if p == nil {
		return claims.NewSet(nil)
	}
	return p.claims
}

// ClaimNames returns the names of all claims in sorted order.
func (p *Principal) ClaimNames() []string {
	return p.Claims().Names()
}

// Subject returns the sub claim or "".
func (p *Principal) Subject() string { return p.stringClaim(claims.Subject) }

// Issuer returns the iss claim or "".
func (p *Principal) Issuer() string { return p.stringClaim(claims.Issuer) }

// TokenID returns the jti claim or "".
func (p *Principal) TokenID() string { return p.stringClaim(claims.JWTID) }

// RawToken returns the compact token the principal was built from.
func (p *Principal) RawToken() string {
	if s := p.stringClaim(claims.RawToken); s != "" {
		return s
	}
	if p == nil {
		return ""
	}
	return p.rawToken
}

// ExpirationTime returns the exp claim in seconds, or 0 when absent.
func (p *Principal) ExpirationTime() int64 { return p.longClaim(claims.ExpirationTime) }

// IssuedAtTime returns the iat claim in seconds, or 0 when absent.
func (p *Principal) IssuedAtTime() int64 { return p.longClaim(claims.IssuedAtTime) }

// Audience returns the aud claim as a set. A single string and an array both
// yield a set; an absent claim yields an empty, non-nil set.
func (p *Principal) Audience() map[string]struct{} { return p.setClaim(claims.Audience) }

// Groups returns the groups claim as a set. An absent claim yields an empty,
// non-nil set so that every role check against it is false.
func (p *Principal) Groups() map[string]struct{} {
	v, ok := p.Claims().Get(claims.Groups)
	if !ok || v.Kind() != claims.KindList {
		return map[string]struct{}{}
	}
	set, _ := v.AsStringSet()
	return set
}

// IsUserInRole reports whether role is one of the principal's groups.
func (p *Principal) IsUserInRole(role string) bool {
	_, ok := p.Groups()[role]
	return ok
}

// Claim returns the value of the named claim.
//
// Well-known names go through the typed accessors: sub, iss and jti yield a
// string, exp and iat an int64, nbf, auth_time and updated_at the normalized
// value or int64(0), groups and aud a set. Any other claim yields its raw
// claims.Value, or a string when the value is a string. ok is false only when
// the name is neither well-known nor present.
func (p *Principal) Claim(name string) (any, bool) {
	set := p.Claims()
	if !claims.IsWellKnown(name) && !set.Has(name) {
		return nil, false
	}

	switch name {
	case claims.Subject:
		return p.Subject(), true
	case claims.Issuer:
		return p.Issuer(), true
	case claims.JWTID:
		return p.TokenID(), true
	case claims.ExpirationTime:
		return p.ExpirationTime(), true
	case claims.IssuedAtTime:
		return p.IssuedAtTime(), true
	case claims.NotBefore, claims.AuthTime, claims.UpdatedAt:
		v, ok := set.Get(name)
		if !ok || v.IsNull() {
			return int64(0), true
		}
		return claims.Normalize(v), true
	case claims.Groups:
		return p.Groups(), true
	case claims.Audience:
		return p.Audience(), true
	}

	v, ok := set.Get(name)
	if !ok {
		return nil, true
	}
	if s, isString := v.AsString(); isString {
		return s, true
	}
	return v, true
}

// ClaimValue returns the raw value of the named claim for injection into typed
// targets. aud is always returned as a list, even when the token carries a
// single string.
func (p *Principal) ClaimValue(name string) (claims.Value, bool) {
	set := p.Claims()
	if !claims.IsWellKnown(name) && !set.Has(name) {
		return claims.Null(), false
	}

	v, ok := set.Get(name)
	if !ok {
		return claims.Null(), true
	}
	if name == claims.Audience {
		if s, isString := v.AsString(); isString {
			return claims.List(claims.String(s)), true
		}
	}
	return v, true
}

// MarshalJSON renders the principal for diagnostics.
func (p *Principal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Claims claims.Set `json:"claims"`
	}{
		Name:   p.Name(),
		Claims: p.Claims(),
	})
}

// SortedSet returns the members of set in sorted order.
func SortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p *Principal) stringClaim(name string) string {
	v, ok := p.Claims().Get(name)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

func (p *Principal) longClaim(name string) int64 {
	v, ok := p.Claims().Get(name)
	if !ok {
		return 0
	}
	i, _ := v.AsLong()
	return i
}

func (p *Principal) setClaim(name string) map[string]struct{} {
	v, ok := p.Claims().Get(name)
	if !ok {
		return map[string]struct{}{}
	}
	set, ok := v.AsStringSet()
	if !ok {
		return map[string]struct{}{}
	}
	return set
}
