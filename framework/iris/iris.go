// Package jwtiris adapts jwtauth to the iris web framework.
//
//	app := iris.New()
//	app.Use(jwtiris.New(mw))
//	app.Get("/admin", jwtiris.RequirePolicy(mw, authz.Roles("admin")), func(c iris.Context) {
//	    p, _ := jwtiris.GetPrincipal(c)
//	    c.WriteString(p.Name())
//	})
package jwtiris

import (
	"context"
	"errors"
	"net/http"

	"github.com/kataras/iris/v12"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// PrincipalKey is the iris context value key the verified principal is
// stored under.
const PrincipalKey = "jwtauth.principal"

var (
	// ErrMissingPrincipal is returned by GetPrincipal when the request carried
	// no verified token.
	ErrMissingPrincipal = errors.New("no principal found in iris context")

	// ErrInvalidPrincipal is returned by GetPrincipal when the value stored
	// under PrincipalKey is not a *principal.Principal.
	ErrInvalidPrincipal = errors.New("invalid principal type in iris context")
)

type irisContextKey struct{}

// New returns an iris handler that runs mw.CheckJWT. Rejected requests are
// answered by mw's error handler and execution stops.
func New(mw *jwtauth.JWTMiddleware) iris.Handler {
	return func(c iris.Context) {
		serve(c, mw.CheckJWT)
	}
}

// RequirePolicy returns an iris handler that guards the route with policy.
// It must run after New.
func RequirePolicy(mw *jwtauth.JWTMiddleware, policy authz.Policy) iris.Handler {
	return func(c iris.Context) {
		serve(c, func(next http.Handler) http.Handler {
			return mw.RequirePolicy(policy, next)
		})
	}
}

// GetPrincipal returns the principal stored by New.
func GetPrincipal(c iris.Context) (*principal.Principal, error) {
	value := c.Values().Get(PrincipalKey)
	if value == nil {
		return nil, ErrMissingPrincipal
	}

	p, ok := value.(*principal.Principal)
	if !ok {
		return nil, ErrInvalidPrincipal
	}
	return p, nil
}

// ErrorHandler adapts an iris-style handler to jwtauth.ErrorHandler. Requests
// that did not come through this package fall back to
// jwtauth.DefaultErrorHandler.
func ErrorHandler(h func(iris.Context, error)) jwtauth.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		c, ok := r.Context().Value(irisContextKey{}).(iris.Context)
		if !ok || c == nil {
			jwtauth.DefaultErrorHandler(w, r, err)
			return
		}
		h(c, err)
	}
}

func serve(c iris.Context, wrap func(http.Handler) http.Handler) {
	passed := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		passed = true
		c.ResetRequest(r)

		if p, err := jwtauth.GetPrincipal(r.Context()); err == nil {
			c.Values().Set(PrincipalKey, p)
		}

		c.Next()
	})

	req := c.Request().WithContext(context.WithValue(c.Request().Context(), irisContextKey{}, c))
	wrap(next).ServeHTTP(c.ResponseWriter(), req)

	if !passed {
		c.StopExecution()
	}
}
