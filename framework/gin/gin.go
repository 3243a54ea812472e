// Package jwtgin adapts jwtauth to the gin web framework.
//
//	mw, err := jwtauth.New(
//	    jwtauth.WithValidator(v),
//	    jwtauth.WithErrorHandler(jwtgin.ErrorHandler(func(c *gin.Context, err error) {
//	        switch {
//	        case errors.Is(err, jwtauth.ErrForbidden):
//	            c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
//	        case errors.Is(err, jwtauth.ErrConfiguration):
//	            c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
//	        default:
//	            c.Header("WWW-Authenticate", jwtauth.BearerChallenge())
//	            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
//	        }
//	    })),
//	)
//
//	r := gin.New()
//	r.Use(jwtgin.New(mw))
//	r.GET("/admin", jwtgin.RequirePolicy(mw, authz.Roles("admin")), func(c *gin.Context) {
//	    p, _ := jwtgin.GetPrincipal(c)
//	    c.String(http.StatusOK, p.Name())
//	})
package jwtgin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// PrincipalKey is the gin context key the verified principal is stored under.
const PrincipalKey = "jwtauth.principal"

var (
	// ErrMissingPrincipal is returned by GetPrincipal when the request carried
	// no verified token.
	ErrMissingPrincipal = errors.New("no principal found in gin context")

	// ErrInvalidPrincipal is returned by GetPrincipal when the value stored
	// under PrincipalKey is not a *principal.Principal.
	ErrInvalidPrincipal = errors.New("invalid principal type in gin context")
)

type ginContextKey struct{}

// New returns a gin middleware that runs mw.CheckJWT. The verified principal
// is stored in the request context and under PrincipalKey. Rejected requests
// are answered by mw's error handler and aborted.
func New(mw *jwtauth.JWTMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		serve(c, mw.CheckJWT)
	}
}

// RequirePolicy returns a gin middleware that guards the route with policy.
// It must run after New.
func RequirePolicy(mw *jwtauth.JWTMiddleware, policy authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		serve(c, func(next http.Handler) http.Handler {
			return mw.RequirePolicy(policy, next)
		})
	}
}

// GetPrincipal returns the principal stored by New.
func GetPrincipal(c *gin.Context) (*principal.Principal, error) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, ErrMissingPrincipal
	}

	p, ok := value.(*principal.Principal)
	if !ok {
		return nil, ErrInvalidPrincipal
	}
	return p, nil
}

// ErrorHandler adapts a gin-style handler to jwtauth.ErrorHandler. Requests
// that did not come through this package fall back to
// jwtauth.DefaultErrorHandler.
func ErrorHandler(h func(*gin.Context, error)) jwtauth.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
		if !ok || c == nil {
			jwtauth.DefaultErrorHandler(w, r, err)
			return
		}
		h(c, err)
	}
}

func serve(c *gin.Context, wrap func(http.Handler) http.Handler) {
	passed := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		passed = true
		c.Request = r

		if p, err := jwtauth.GetPrincipal(r.Context()); err == nil {
			c.Set(PrincipalKey, p)
		}

		c.Next()
	})

	req := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
	wrap(next).ServeHTTP(c.Writer, req)

	if !passed {
		c.Abort()
	}
}
