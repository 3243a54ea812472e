package jwtauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/core"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// JWTMiddleware authenticates net/http requests with bearer tokens and guards
// handlers with role policies.
type JWTMiddleware struct {
	core                *core.Core
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	validateOnOptions   bool
	exclusionURLHandler ExclusionURLHandler
	disabled            bool
	logger              Logger

	// Temporary fields used during construction
	validator           TokenValidator
	credentialsOptional bool
	metrics             Metrics
	tracer              Tracer
}

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ExclusionURLHandler is a function that takes in a http.Request and returns
// true if the request should be excluded from JWT validation.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new JWTMiddleware instance with the supplied options.
//
// Example:
//
//	middleware, err := jwtauth.New(
//	    jwtauth.WithValidator(v),
//	    jwtauth.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*JWTMiddleware, error) {
	m := &JWTMiddleware{
		validateOnOptions:   true, // Validate OPTIONS by default
		credentialsOptional: true, // Anonymous requests reach the policy guard
	}

	// Apply all options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	// Validate required configuration
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	// Apply defaults for optional fields not set by options
	m.applyDefaults()

	// Create the core with the configured validator and options
	if err := m.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return m, nil
}

// validate ensures all required fields are set
func (m *JWTMiddleware) validate() error {
	if m.validator == nil {
		return ErrValidatorNil
	}
	return nil
}

// createCore creates the core.Core instance with the configured options
func (m *JWTMiddleware) createCore() error {
	coreOpts := []core.Option{
		core.WithValidator(m.validator),
		core.WithCredentialsOptional(m.credentialsOptional),
	}

	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}
	if m.metrics != nil {
		coreOpts = append(coreOpts, core.WithMetrics(m.metrics))
	}
	if m.tracer != nil {
		coreOpts = append(coreOpts, core.WithTracer(m.tracer))
	}

	coreInstance, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.core = coreInstance
	return nil
}

// applyDefaults sets default values for optional fields
func (m *JWTMiddleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
}

// Core returns the engine the middleware delegates to. Framework adapters
// use it to share one configuration.
func (m *JWTMiddleware) Core() *core.Core { return m.core }

// Disabled reports whether the middleware passes every request through.
func (m *JWTMiddleware) Disabled() bool { return m.disabled }

// GetPrincipal retrieves the verified principal from the context.
//
// Example:
//
//	p, err := jwtauth.GetPrincipal(r.Context())
//	if err != nil {
//	    http.Error(w, "unauthenticated", http.StatusUnauthorized)
//	    return
//	}
//	fmt.Println(p.Name())
func GetPrincipal(ctx context.Context) (*principal.Principal, error) {
	return core.GetPrincipal(ctx)
}

// MustGetPrincipal retrieves the principal from the context or panics.
// Use only when you are certain a principal exists (e.g., behind RequirePolicy
// with a RolesAllowed policy).
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

// CheckJWT is the main JWTMiddleware function which performs the main logic. It
// is passed a http.Handler which will be called if the JWT passes validation,
// or if no token was sent and credentials are optional.
func (m *JWTMiddleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		// If there's an exclusion handler and the URL matches, skip JWT validation
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}
		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without validating.
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.tokenExtractor(r)
		if err != nil {
			// This is not ErrJWTMissing because an error here means that the
			// tokenExtractor had an error and _not_ that the token was missing.
			if m.logger != nil {
				m.logger.Warn("failed to extract token from request",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			m.errorHandler(w, r, &invalidError{details: fmt.Errorf("error extracting token: %w", err)})
			return
		}

		// Core handles empty token logic based on credentialsOptional setting.
		p, err := m.core.CheckToken(r.Context(), token)
		if err != nil {
			// Verification failures already match ErrJWTInvalid.
			m.errorHandler(w, r, err)
			return
		}

		// If credentials are optional and no token was provided,
		// core.CheckToken returns (nil, nil), so we continue without a principal
		if p == nil {
			next.ServeHTTP(w, r)
			return
		}

		r = r.Clone(core.SetPrincipal(r.Context(), p))
		next.ServeHTTP(w, r)
	})
}

// RequirePolicy guards next with policy. It must run behind CheckJWT, which
// places the principal in the request context.
//
// Unauthenticated callers of a RolesAllowed endpoint get ErrUnauthenticated,
// callers without a matching role get ErrForbidden; both go to the error
// handler. A disabled middleware lets every request through.
func (m *JWTMiddleware) RequirePolicy(policy authz.Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		p, _ := core.GetPrincipal(r.Context())

		switch m.core.Authorize(r.Context(), policy, p) {
		case authz.Allow:
			next.ServeHTTP(w, r)
		case authz.DenyUnauthenticated:
			m.errorHandler(w, r, ErrUnauthenticated)
		default:
			m.errorHandler(w, r, ErrForbidden)
		}
	})
}
