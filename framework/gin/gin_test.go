package jwtgin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
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

func TestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer := jwtauthtest.NewIssuer("k1")
	mw := newMiddleware(t, issuer)

	router := gin.New()
	router.Use(New(mw))
	router.GET("/me", func(c *gin.Context) {
		p, err := GetPrincipal(c)
		if err != nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.Name())
	})
	router.GET("/admin", RequirePolicy(mw, authz.Roles("admin")), func(c *gin.Context) {
		c.String(http.StatusOK, "admin area")
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
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, testCase.path, nil)
			if testCase.token != "" {
				req.Header.Set("Authorization", "Bearer "+testCase.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			assert.Equal(t, testCase.wantBody, rec.Body.String())
		})
	}
}

func TestGin_ErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer := jwtauthtest.NewIssuer("k1")
	mw := newMiddleware(t, issuer, jwtauth.WithErrorHandler(ErrorHandler(func(c *gin.Context, err error) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "custom"})
	})))

	handlerCalled := false
	router := gin.New()
	router.Use(New(mw))
	router.GET("/", func(c *gin.Context) { handlerCalled = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"custom"}`, rec.Body.String())
}

func TestGin_ErrorHandlerKeepsForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer := jwtauthtest.NewIssuer("k1")
	mw := newMiddleware(t, issuer, jwtauth.WithErrorHandler(ErrorHandler(func(c *gin.Context, err error) {
		if errors.Is(err, jwtauth.ErrForbidden) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Header("WWW-Authenticate", jwtauth.BearerChallenge())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	})))

	router := gin.New()
	router.Use(New(mw))
	router.GET("/admin", RequirePolicy(mw, authz.Roles("admin")), func(c *gin.Context) {
		c.String(http.StatusOK, "admin area")
	})

	userToken := issuer.Sign(jwtauthtest.Claims("u1", map[string]any{"groups": []string{"user"}}))

	testCases := []struct {
		name           string
		token          string
		wantStatusCode int
		wantBody       string
		wantChallenge  bool
	}{
		{name: "missing role", token: userToken, wantStatusCode: http.StatusForbidden, wantBody: `{"error":"forbidden"}`},
		{name: "anonymous", wantStatusCode: http.StatusUnauthorized, wantBody: `{"error":"unauthorized"}`, wantChallenge: true},
		{name: "invalid token", token: "a.b.c", wantStatusCode: http.StatusUnauthorized, wantBody: `{"error":"unauthorized"}`, wantChallenge: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if testCase.token != "" {
				req.Header.Set("Authorization", "Bearer "+testCase.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			assert.JSONEq(t, testCase.wantBody, rec.Body.String())
			assert.Equal(t, testCase.wantChallenge, rec.Header().Get("WWW-Authenticate") != "")
		})
	}
}

func TestGetPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetPrincipal(c)
	assert.ErrorIs(t, err, ErrMissingPrincipal)

	c.Set(PrincipalKey, "not a principal")
	_, err = GetPrincipal(c)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
}
