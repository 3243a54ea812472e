package jwtecho

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtauth "github.com/kumuluz/go-jwt-auth"
	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/jwks"
	"github.com/kumuluz/go-jwt-auth/jwtauthtest"
	"github.com/kumuluz/go-jwt-auth/validator"
)

func newMiddleware(t *testing.T, issuer *jwtauthtest.Issuer, opts ...jwtauth.Option) *jwtauth.JWTMiddleware {
	t.Helper()

	resolver, err := jwks.New(jwks.WithStaticKey(issuer.PublicKeyPEM()))
	require.NoError(t, err)
	v, err := validator.New(validator.WithKeyResolver(resolver))
	require.NoError(t, err)

	mw, err := jwtauth.New(append([]jwtauth.Option{jwtauth.WithValidator(v)}, opts...)...)
	require.NoError(t, err)
	return mw
}

func TestEcho(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")
	mw := newMiddleware(t, issuer)

	e := echo.New()
	e.Use(New(mw))
	e.GET("/me", func(c echo.Context) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, p.Name())
	})
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, "admin area")
	}, RequirePolicy(mw, authz.Roles("admin")))
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "handler failed")
	})

	userToken := issuer.Sign(jwtauthtest.Claims("u1", map[string]any{"groups": []string{"user"}}))
	adminToken := issuer.Sign(jwtauthtest.Claims("root", map[string]any{"groups": []string{"admin"}}))

	testCases := []struct {
		name           string
		path           string
		token          string
		wantStatusCode int
		wantBody       string
	}{
		{name: "valid token", path: "/me", token: userToken, wantStatusCode: http.StatusOK, wantBody: "u1"},
		{name: "no token", path: "/me", wantStatusCode: http.StatusOK, wantBody: "anonymous"},
		{name: "invalid token", path: "/me", token: "a.b.c", wantStatusCode: http.StatusUnauthorized, wantBody: `{"message":"JWT is missing or invalid."}`},
		{name: "admin allowed", path: "/admin", token: adminToken, wantStatusCode: http.StatusOK, wantBody: "admin area"},
		{name: "user forbidden", path: "/admin", token: userToken, wantStatusCode: http.StatusForbidden, wantBody: `{"message":"Access is forbidden."}`},
		{name: "anonymous unauthenticated", path: "/admin", wantStatusCode: http.StatusUnauthorized, wantBody: `{"message":"JWT is missing or invalid."}`},
		{name: "handler errors propagate", path: "/fail", token: userToken, wantStatusCode: http.StatusTeapot},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			if testCase.token != "" {
				req.Header.Set("Authorization", "Bearer "+testCase.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			if testCase.wantBody != "" {
				assert.Equal(t, testCase.wantBody, rec.Body.String())
			}
		})
	}
}

func TestEcho_ErrorHandler(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")

	var gotErr error
	mw := newMiddleware(t, issuer, jwtauth.WithErrorHandler(ErrorHandler(func(c echo.Context, err error) {
		gotErr = err
		_ = c.JSON(http.StatusUnauthorized, map[string]string{"error": "custom"})
	})))

	e := echo.New()
	e.Use(New(mw))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"custom"}`, rec.Body.String())
	assert.True(t, errors.Is(gotErr, jwtauth.ErrJWTInvalid))
}
