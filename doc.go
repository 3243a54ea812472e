/*
Package jwtauth provides net/http middleware for bearer-token authentication
and role-based authorization.

Tokens are RS256 JSON Web Tokens. A verified token becomes a
principal.Principal in the request context; handlers are guarded with
authz policies. The package follows the Core-Adapter pattern: the
framework-agnostic logic lives in core and this package is the HTTP adapter.
Adapters for gin, echo, iris and gRPC live under framework/ and integrations/.

# Quick Start

	import (
	    "github.com/kumuluz/go-jwt-auth"
	    "github.com/kumuluz/go-jwt-auth/authz"
	    "github.com/kumuluz/go-jwt-auth/jwks"
	    "github.com/kumuluz/go-jwt-auth/validator"
	)

	func main() {
	    resolver, err := jwks.New(
	        jwks.WithJWKSURI("https://auth.example.com/.well-known/jwks.json"),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    v, err := validator.New(
	        validator.WithKeyResolver(resolver),
	        validator.WithIssuer("https://auth.example.com/"),
	        validator.WithMaximumLeeway(60),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := jwtauth.New(jwtauth.WithValidator(v))
	    if err != nil {
	        log.Fatal(err)
	    }

	    mux := http.NewServeMux()
	    mux.Handle("/public", publicHandler)
	    mux.Handle("/admin", middleware.RequirePolicy(authz.Roles("admin"), adminHandler))

	    http.ListenAndServe(":3000", middleware.CheckJWT(mux))
	}

	func adminHandler(w http.ResponseWriter, r *http.Request) {
	    p := jwtauth.MustGetPrincipal(r.Context())
	    fmt.Fprintf(w, "hello %s", p.Name())
	}

The config package builds the validator from a file or the environment.

# Anonymous Requests

Credentials are optional by default. A request without an Authorization
header reaches the handler with no principal, and RequirePolicy answers 401
when the endpoint needs a role. Use WithCredentialsOptional(false) to reject
such requests in CheckJWT instead.

# Responses

DefaultErrorHandler answers:

  - 401 with WWW-Authenticate: Bearer realm="MP-JWT" for a missing, malformed
    or invalid token, and for an anonymous caller of a role-guarded endpoint
  - 403 when no role matches or the endpoint denies everyone
  - 500 when the server cannot check tokens (no key source)

The body never says why a token was rejected. The reason is logged, counted
in jwtauth_verifications_total and set on the trace span.

# Observability

	middleware, err := jwtauth.New(
	    jwtauth.WithValidator(v),
	    jwtauth.WithLogger(jwtauth.NewLogrusLogger(logrus.StandardLogger())),
	    jwtauth.WithMetrics(jwtauth.NewPrometheusMetrics(prometheus.DefaultRegisterer)),
	    jwtauth.WithTracer(jwtauth.NewOpenTelemetryTracer(nil)),
	)

*slog.Logger satisfies Logger directly. NewZapLogger and NewZerologLogger
adapt the other common loggers.

# Feature Toggle

WithDisabled(true) turns CheckJWT and RequirePolicy into pass-throughs.
*/
package jwtauth
