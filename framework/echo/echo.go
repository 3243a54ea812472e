// Package jwtecho adapts jwtauth to the echo web framework.
//
//	e := echo.New()
//	e.Use(jwtecho.New(mw))
//	e.GET("/admin", adminHandler, jwtecho.RequirePolicy(mw, authz.Roles("admin")))
package jwtecho

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// PrincipalKey is the echo context key the verified principal is stored under.
const PrincipalKey = "jwtauth.principal"

type echoContextKey struct{}

// New returns an echo middleware that runs mw.CheckJWT. The verified
// principal is stored in the request context and under PrincipalKey.
// Rejected requests are answered by mw's error handler.
func New(mw *jwtauth.JWTMiddleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return serve(c, next, mw.CheckJWT)
		}
	}
}

// RequirePolicy returns an echo middleware that guards the route with
// policy. It must run after New.
func RequirePolicy(mw *jwtauth.JWTMiddleware, policy authz.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return serve(c, next, func(h http.Handler) http.Handler {
				return mw.RequirePolicy(policy, h)
			})
		}
	}
}

// GetPrincipal returns the principal stored by New.
func GetPrincipal(c echo.Context) (*principal.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*principal.Principal)
	return p, ok && p != nil
}

// ErrorHandler adapts an echo-style handler to jwtauth.ErrorHandler. Requests
// that did not come through this package fall back to
// jwtauth.DefaultErrorHandler.
func ErrorHandler(h func(echo.Context, error)) jwtauth.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		c, ok := r.Context().Value(echoContextKey{}).(echo.Context)
		if !ok || c == nil {
			jwtauth.DefaultErrorHandler(w, r, err)
			return
		}
		h(c, err)
	}
}

func serve(c echo.Context, next echo.HandlerFunc, wrap func(http.Handler) http.Handler) error {
	var nextErr error
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		c.SetRequest(r)

		if p, err := jwtauth.GetPrincipal(r.Context()); err == nil {
			c.Set(PrincipalKey, p)
		}

		nextErr = next(c)
	})

	req := c.Request()
	req = req.WithContext(context.WithValue(req.Context(), echoContextKey{}, c))
	wrap(handler).ServeHTTP(c.Response(), req)

	return nextErr
}
