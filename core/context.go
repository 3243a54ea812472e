package core

import (
	"context"

	"github.com/kumuluz/go-jwt-auth/principal"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	principalKey contextKey = iota
)

// GetPrincipal retrieves the verified principal from the context.
//
// Example usage:
//
//	p, err := core.GetPrincipal(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(p.Name())
func GetPrincipal(ctx context.Context) (*principal.Principal, error) {
	p, ok := ctx.Value(principalKey).(*principal.Principal)
	if !ok || p == nil {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

// SetPrincipal stores the principal in the context.
// This is a helper function for adapters to set the principal after validation.
func SetPrincipal(ctx context.Context, p *principal.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// HasPrincipal checks if a principal exists in the context without retrieving it.
func HasPrincipal(ctx context.Context) bool {
	p, ok := ctx.Value(principalKey).(*principal.Principal)
	return ok && p != nil
}
