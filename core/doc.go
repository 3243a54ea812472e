/*
Package core provides framework-agnostic JWT authentication and authorization
logic that can be used across different transport layers (HTTP, gRPC, etc.).

# Architecture

The core package implements the "Core" in the Core-Adapter pattern:

	┌─────────────────────────────────────────────┐
	│         Transport Adapters                  │
	│  (net/http, gRPC, Gin, Echo)                │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Core Engine (THIS PACKAGE)         │
	│  • Token Validation                         │
	│  • Policy Evaluation                        │
	│  • Logger, Metrics and Tracer hooks         │
	└────────┬───────────────────────┬────────────┘
	         │                       │
	         ▼                       ▼
	┌─────────────────┐     ┌─────────────────────┐
	│   validator     │     │       authz         │
	└─────────────────┘     └─────────────────────┘

# Basic Usage

	c, err := core.New(
	    core.WithValidator(val),
	)
	if err != nil {
	    log.Fatal(err)
	}

	p, err := c.CheckToken(ctx, tokenString)
	if err != nil {
	    // Handle validation error
	}

	switch c.Authorize(ctx, authz.Roles("admin"), p) {
	case authz.Allow:
	case authz.DenyUnauthenticated:
	case authz.DenyForbidden:
	}

# Context Helpers

	ctx = core.SetPrincipal(ctx, p)

	p, err := core.GetPrincipal(ctx)
	if err != nil {
	    // No principal
	}

# Error Handling

CheckToken returns ErrJWTMissing or a *ValidationError:

	p, err := c.CheckToken(ctx, tokenString)
	if err != nil {
	    if errors.Is(err, core.ErrConfiguration) {
	        // Server misconfiguration: answer 500
	    }
	    if errors.Is(err, core.ErrJWTInvalid) {
	        // Rejected token: answer 401
	    }

	    var validationErr *core.ValidationError
	    if errors.As(err, &validationErr) {
	        switch validationErr.Code {
	        case core.ErrorCodeTokenExpired:
	        case core.ErrorCodeInvalidSignature:
	        }
	    }
	}

# Observability

Logger, Metrics and Tracer are all optional. Metrics receives
MetricVerifications tagged with the outcome (OutcomeSuccess or an error code),
MetricVerificationDuration and MetricAuthorizationDecisions tagged with the
decision.
*/
package core
