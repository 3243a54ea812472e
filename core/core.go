// Package core provides framework-agnostic JWT authentication and
// authorization logic that can be used across different transport layers
// (HTTP, gRPC, etc.).
//
// The Core type encapsulates token checking and policy evaluation and is
// wrapped by transport-specific adapters.
package core

import (
	"context"
	"time"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// Metric names reported through Metrics.
const (
	MetricVerifications          = "jwtauth_verifications_total"
	MetricVerificationDuration   = "jwtauth_verification_duration_seconds"
	MetricAuthorizationDecisions = "jwtauth_authorization_decisions_total"
)

// OutcomeSuccess is the outcome tag of a verified token. Failed verifications
// are tagged with their error code.
const OutcomeSuccess = "success"

// Validator defines the interface for JWT validation.
// Implementations verify the token and return the principal it carries.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*principal.Principal, error)
}

// Logger defines an optional logging interface for the core middleware.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics receives verification and authorization measurements.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// Tracer starts spans around token verification.
type Tracer interface {
	StartSpan(ctx context.Context, operationName string) (context.Context, Span)
}

// Span is a unit of traced work.
type Span interface {
	SetTag(key string, value any)
	SetError(err error)
	Finish()
}

// Core is the framework-agnostic JWT authentication engine.
// It contains the core logic for token validation and policy evaluation
// without any dependency on specific transport protocols (HTTP, gRPC, etc.).
type Core struct {
	validator           Validator
	credentialsOptional bool
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// CheckToken validates a JWT token string and returns its principal.
//
//   - If token is empty and credentialsOptional is true, returns (nil, nil)
//   - If token is empty and credentialsOptional is false, returns ErrJWTMissing
//   - Otherwise, validates the token using the configured validator
//
// Validation failures are returned as *ValidationError.
func (c *Core) CheckToken(ctx context.Context, token string) (*principal.Principal, error) {
	// Handle empty token case
	if token == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debug("No token provided, but credentials are optional")
			}
			return nil, nil
		}

		if c.logger != nil {
			c.logger.Warn("No token provided and credentials are required")
		}
		c.countVerification(ErrorCodeTokenMissing)

		return nil, ErrJWTMissing
	}

	ctx, span := c.startSpan(ctx, "jwtauth.CheckToken")
	defer span.Finish()

	// Validate token
	start := time.Now()
	p, err := c.validator.ValidateToken(ctx, token)
	duration := time.Since(start)

	if c.metrics != nil {
		c.metrics.ObserveHistogram(MetricVerificationDuration, duration.Seconds(), nil)
	}

	if err != nil {
		verr := Classify(err)

		if c.logger != nil {
			if verr.IsConfiguration() {
				c.logger.Error("Token could not be validated", "code", verr.Code, "error", err, "duration", duration)
			} else {
				c.logger.Warn("Token validation failed", "code", verr.Code, "error", err, "duration", duration)
			}
		}
		span.SetTag("jwtauth.outcome", verr.Code)
		span.SetError(verr)
		c.countVerification(verr.Code)

		return nil, verr
	}

	// Success
	if c.logger != nil {
		c.logger.Debug("Token validated successfully", "principal", p.Name(), "duration", duration)
	}
	span.SetTag("jwtauth.outcome", OutcomeSuccess)
	span.SetTag("jwtauth.principal", p.Name())
	c.countVerification(OutcomeSuccess)

	return p, nil
}

// Authorize evaluates policy against p, which is nil for an unauthenticated
// caller, and records the decision.
func (c *Core) Authorize(ctx context.Context, policy authz.Policy, p *principal.Principal) authz.Decision {
	decision := authz.Evaluate(policy, p)

	if c.logger != nil {
		c.logger.Debug("Authorization decided",
			"policy", policy.String(),
			"principal", p.Name(),
			"decision", decision.String())
	}
	if c.metrics != nil {
		c.metrics.IncCounter(MetricAuthorizationDecisions, map[string]string{"decision": decision.String()})
	}

	return decision
}

// CredentialsOptional reports whether requests without a token proceed.
func (c *Core) CredentialsOptional() bool { return c.credentialsOptional }

func (c *Core) countVerification(outcome string) {
	if c.metrics != nil {
		c.metrics.IncCounter(MetricVerifications, map[string]string{"outcome": outcome})
	}
}

func (c *Core) startSpan(ctx context.Context, name string) (context.Context, Span) {
	if c.tracer == nil {
		return ctx, noopSpan{}
	}
	return c.tracer.StartSpan(ctx, name)
}

type noopSpan struct{}

func (noopSpan) SetTag(string, any) {}
func (noopSpan) SetError(error)     {}
func (noopSpan) Finish()            {}
