package validator

import "errors"

// Verification failures. ValidateToken wraps one of these with the underlying
// cause, so callers can use errors.Is for the kind and still log the detail.
var (
	// ErrConfiguration means the validator cannot verify any token, for
	// example because no key source was configured.
	ErrConfiguration = errors.New("jwt validator is misconfigured")

	// ErrMalformedToken means the token is not a compact JWS with a JSON
	// object payload, or a time claim is not numeric.
	ErrMalformedToken = errors.New("token is malformed")

	// ErrUnsupportedAlgorithm means the token is not signed with RS256.
	ErrUnsupportedAlgorithm = errors.New("token signing algorithm is not supported")

	// ErrKeyResolution means no verification key could be found for the token.
	ErrKeyResolution = errors.New("could not resolve verification key")

	// ErrInvalidSignature means the signature does not verify with the key.
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrIssuerMismatch means the iss claim is not the configured issuer.
	ErrIssuerMismatch = errors.New("token issuer does not match")

	// ErrTokenExpired means exp plus the allowed clock skew is in the past.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenNotYetValid means nbf or iat is later than now plus the allowed
	// clock skew.
	ErrTokenNotYetValid = errors.New("token is not valid yet")
)
