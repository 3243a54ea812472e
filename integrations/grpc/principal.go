package grpc

import (
	"context"

	"github.com/kumuluz/go-jwt-auth/core"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// GetPrincipal retrieves the verified principal from the call context.
//
// Example:
//
//	p, err := jwtgrpc.GetPrincipal(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Unauthenticated, "no principal")
//	}
//	fmt.Println(p.Name())
func GetPrincipal(ctx context.Context) (*principal.Principal, error) {
	return core.GetPrincipal(ctx)
}

// MustGetPrincipal retrieves the principal from the context or panics.
// Use only when you are certain a principal exists (e.g., on a method guarded
// by a RolesAllowed policy).
func MustGetPrincipal(ctx context.Context) *principal.Principal {
	p, err := core.GetPrincipal(ctx)
	if err != nil {
		panic(err)
	}
	return p
}

// HasPrincipal checks if a principal exists in the context.
func HasPrincipal(ctx context.Context) bool {
	return core.HasPrincipal(ctx)
}
