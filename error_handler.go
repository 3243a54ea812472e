package jwtauth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kumuluz/go-jwt-auth/core"
)

// Realm is announced in the WWW-Authenticate header of 401 responses.
const Realm = "MP-JWT"

var (
	// ErrJWTMissing is returned when the JWT is missing and credentials are
	// required.
	ErrJWTMissing = core.ErrJWTMissing

	// ErrJWTInvalid is returned when the JWT is invalid.
	ErrJWTInvalid = core.ErrJWTInvalid

	// ErrConfiguration is returned when tokens cannot be checked because of a
	// server-side misconfiguration.
	ErrConfiguration = core.ErrConfiguration

	// ErrUnauthenticated is returned by RequirePolicy when the endpoint needs
	// a role and the request carries no principal.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned by RequirePolicy when the principal holds none
	// of the allowed roles, or the endpoint denies everyone.
	ErrForbidden = errors.New("access forbidden")
)

// ErrorHandler is a handler which is called when an error occurs in the
// JWTMiddleware. Among some general errors, this handler also determines the
// response of the JWTMiddleware when a token is not found or is invalid, and
// when a policy denies the request. The err can be checked against
// ErrJWTMissing, ErrJWTInvalid, ErrUnauthenticated, ErrForbidden and
// ErrConfiguration. If you implement your own ErrorHandler you MUST keep the
// distinction between 401 and 403 responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is the default error handler implementation for the
// JWTMiddleware. If an error handler is not provided via the WithErrorHandler
// option this will be used.
//
// Missing, invalid and unauthenticated requests get 401 with a
// WWW-Authenticate challenge, denied requests get 403 and everything else 500.
// The body never says why a token was rejected.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, ErrConfiguration):
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking the JWT."}`))
	case errors.Is(err, ErrJWTMissing), errors.Is(err, ErrJWTInvalid), errors.Is(err, ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", BearerChallenge())
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT is missing or invalid."}`))
	case errors.Is(err, ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Access is forbidden."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking the JWT."}`))
	}
}

// BearerChallenge returns the WWW-Authenticate value sent with 401 responses.
func BearerChallenge() string {
	return fmt.Sprintf("Bearer realm=%q", Realm)
}

// invalidError handles wrapping a JWT validation error with
// the concrete error ErrJWTInvalid. We do not expose this
// publicly because the interface methods of Is and Unwrap
// should give the user all they need.
type invalidError struct {
	details error
}

// Is allows the error to support equality to ErrJWTInvalid.
func (e *invalidError) Is(target error) bool {
	return target == ErrJWTInvalid
}

// Error returns a string representation of the error.
func (e *invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrJWTInvalid, e.details)
}

// Unwrap allows the error to support equality to the
// underlying error and not just ErrJWTInvalid.
func (e *invalidError) Unwrap() error {
	return e.details
}
