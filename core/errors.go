package core

import (
	"errors"

	"github.com/kumuluz/go-jwt-auth/jwks"
	"github.com/kumuluz/go-jwt-auth/validator"
)

// Sentinel errors for JWT validation.
var (
	// ErrJWTMissing is returned when the JWT is missing from the request and
	// credentials are required.
	ErrJWTMissing = errors.New("jwt missing")

	// ErrJWTInvalid is returned when the JWT is invalid.
	// This is typically wrapped with more specific validation errors.
	ErrJWTInvalid = errors.New("jwt invalid")

	// ErrConfiguration is returned when the token could not be checked because
	// the validator is misconfigured. It is a server error, not a client one.
	ErrConfiguration = errors.New("jwt auth configuration invalid")

	// ErrPrincipalNotFound is returned when no principal is stored in the context.
	ErrPrincipalNotFound = errors.New("principal not found in context")
)

// ValidationError wraps JWT validation errors with additional context.
// It provides structured error information that can be used for
// logging, metrics, and returning appropriate error responses.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "invalid_signature")
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is matches ErrConfiguration for configuration failures and ErrJWTInvalid
// for every other code.
func (e *ValidationError) Is(target error) bool {
	if e.Code == ErrorCodeConfigInvalid {
		return target == ErrConfiguration
	}
	return target == ErrJWTInvalid
}

// IsConfiguration reports whether the error is a server-side configuration
// failure rather than a rejected token.
func (e *ValidationError) IsConfiguration() bool {
	return e.Code == ErrorCodeConfigInvalid
}

// Common error codes
const (
	ErrorCodeTokenMissing     = "token_missing"
	ErrorCodeTokenMalformed   = "token_malformed"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenNotYetValid = "token_not_yet_valid"
	ErrorCodeInvalidSignature = "invalid_signature"
	ErrorCodeInvalidAlgorithm = "invalid_algorithm"
	ErrorCodeInvalidIssuer    = "invalid_issuer"
	ErrorCodeInvalidClaims    = "invalid_claims"
	ErrorCodeJWKSFetchFailed  = "jwks_fetch_failed"
	ErrorCodeJWKSKeyNotFound  = "jwks_key_not_found"
	ErrorCodeConfigInvalid    = "config_invalid"
	ErrorCodeValidatorNotSet  = "validator_not_set"
)

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Classify turns an error from a validator into a ValidationError carrying the
// matching code. Errors that already are ValidationErrors are returned as is.
func Classify(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	switch {
	case errors.Is(err, validator.ErrConfiguration):
		return NewValidationError(ErrorCodeConfigInvalid, "jwt auth is misconfigured", err)
	case errors.Is(err, validator.ErrMalformedToken):
		return NewValidationError(ErrorCodeTokenMalformed, "jwt is malformed", err)
	case errors.Is(err, validator.ErrUnsupportedAlgorithm):
		return NewValidationError(ErrorCodeInvalidAlgorithm, "jwt algorithm is not supported", err)
	case errors.Is(err, validator.ErrKeyResolution) && errors.Is(err, jwks.ErrFetchFailed):
		return NewValidationError(ErrorCodeJWKSFetchFailed, "jwks could not be fetched", err)
	case errors.Is(err, validator.ErrKeyResolution):
		return NewValidationError(ErrorCodeJWKSKeyNotFound, "jwt signing key not found", err)
	case errors.Is(err, validator.ErrInvalidSignature):
		return NewValidationError(ErrorCodeInvalidSignature, "jwt signature is invalid", err)
	case errors.Is(err, validator.ErrIssuerMismatch):
		return NewValidationError(ErrorCodeInvalidIssuer, "jwt issuer is invalid", err)
	case errors.Is(err, validator.ErrTokenExpired):
		return NewValidationError(ErrorCodeTokenExpired, "jwt is expired", err)
	case errors.Is(err, validator.ErrTokenNotYetValid):
		return NewValidationError(ErrorCodeTokenNotYetValid, "jwt is not valid yet", err)
	default:
		return NewValidationError(ErrorCodeInvalidClaims, "jwt is invalid", err)
	}
}
