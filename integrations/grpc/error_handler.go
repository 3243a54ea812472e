package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kumuluz/go-jwt-auth/core"
)

var (
	// ErrUnauthenticated is passed to the error handler when a method needs a
	// role and the call carries no principal.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrPermissionDenied is passed to the error handler when the principal
	// holds none of the allowed roles, or the method denies everyone.
	ErrPermissionDenied = errors.New("permission denied")
)

// ErrorHandler converts validation errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps errors to gRPC status codes:
//
//   - missing, malformed or invalid tokens: Unauthenticated
//   - policy denials: PermissionDenied
//   - configuration problems: Internal
//
// Status messages never say why a token was rejected.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, core.ErrConfiguration):
		return status.Error(codes.Internal, "unable to verify token")
	case errors.Is(err, ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, core.ErrJWTMissing):
		return status.Error(codes.Unauthenticated, "missing credentials")
	case errors.Is(err, ErrMultipleAuthHeaders), errors.Is(err, ErrInvalidAuthFormat), errors.Is(err, ErrUnsupportedScheme):
		return status.Error(codes.Unauthenticated, "invalid authorization metadata")
	default:
		// Unknown failures are treated as Unauthenticated so verification
		// errors never leak as internal errors.
		return status.Error(codes.Unauthenticated, "invalid or malformed token")
	}
}
