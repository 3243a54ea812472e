package jwtauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/kumuluz/go-jwt-auth/principal"
)

// Option configures the JWTMiddleware.
// Returns error for validation failures.
type Option func(*JWTMiddleware) error

// TokenValidator defines the interface for token validation.
// This interface is satisfied by *validator.Validator.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*principal.Principal, error)
}

// WithValidator sets the validator used to verify tokens (REQUIRED).
//
// Example:
//
//	resolver, err := jwks.New(jwks.WithJWKSURI("https://issuer.example.com/.well-known/jwks.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := validator.New(
//	    validator.WithKeyResolver(resolver),
//	    validator.WithIssuer("https://issuer.example.com/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwtauth.New(
//	    jwtauth.WithValidator(v),
//	)
func WithValidator(v TokenValidator) Option {
	return func(m *JWTMiddleware) error {
		if v == nil {
			return ErrValidatorNil
		}
		m.validator = v
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional.
// If set to true, a request without a token continues without a principal and
// RequirePolicy decides whether that is acceptable.
//
// Default: true
func WithCredentialsOptional(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests should have their JWT validated.
//
// Default: true (OPTIONS requests are validated)
func WithValidateOnOptions(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithDisabled turns the middleware into a pass-through. Neither CheckJWT nor
// RequirePolicy inspects requests while disabled.
//
// Default: false
func WithDisabled(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.disabled = value
		return nil
	}
}

// WithErrorHandler sets the handler called when errors occur during JWT validation.
// See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *JWTMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the JWT from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *JWTMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URL patterns to exclude from JWT validation.
// URLs can be full URLs or just paths.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *JWTMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionUrlsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
// The logger will be used throughout the validation flow in both middleware and core.
//
// The logger interface is compatible with log/slog.Logger. Use NewLogrusLogger,
// NewZapLogger or NewZerologLogger for other libraries.
//
// Example:
//
//	middleware, err := jwtauth.New(
//	    jwtauth.WithValidator(v),
//	    jwtauth.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *JWTMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics sets where verification and authorization measurements go.
//
// Default: none
func WithMetrics(metrics Metrics) Option {
	return func(m *JWTMiddleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer that wraps each token check in a span.
//
// Default: none
func WithTracer(tracer Tracer) Option {
	return func(m *JWTMiddleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrValidatorNil       = errors.New("validator cannot be nil (use WithValidator)")
	ErrErrorHandlerNil    = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil  = errors.New("tokenExtractor cannot be nil")
	ErrExclusionUrlsEmpty = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrMetricsNil         = errors.New("metrics cannot be nil")
	ErrTracerNil          = errors.New("tracer cannot be nil")
)
