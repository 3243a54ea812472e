package jwtauth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumuluz/go-jwt-auth/authz"
	"github.com/kumuluz/go-jwt-auth/jwks"
	"github.com/kumuluz/go-jwt-auth/jwtauthtest"
	"github.com/kumuluz/go-jwt-auth/principal"
	"github.com/kumuluz/go-jwt-auth/validator"
)

const testIssuer = "https://issuer.example.com/"

func newTestValidator(t *testing.T, issuer *jwtauthtest.Issuer) *validator.Validator {
	t.Helper()

	resolver, err := jwks.New(jwks.WithStaticKey(issuer.PublicKeyPEM()))
	require.NoError(t, err)

	v, err := validator.New(
		validator.WithKeyResolver(resolver),
		validator.WithIssuer(testIssuer),
		validator.WithMaximumLeeway(60),
	)
	require.NoError(t, err)
	return v
}

// principalHandler echoes the principal name, or "anonymous".
var principalHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, err := GetPrincipal(r.Context())
	if err != nil {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(p.Name()))
})

func Test_CheckJWT(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")
	other := jwtauthtest.NewIssuer("k1")
	v := newTestValidator(t, issuer)

	validToken := issuer.Sign(jwtauthtest.Claims("u1", map[string]any{
		"iss":    testIssuer,
		"upn":    "jdoe@example.com",
		"groups": []string{"user"},
	}))
	expiredToken := issuer.Sign(map[string]any{
		"iss": testIssuer,
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	foreignToken := other.Sign(jwtauthtest.Claims("u1", map[string]any{"iss": testIssuer}))

	testCases := []struct {
		name           string
		options        []Option
		method         string
		path           string
		authorization  string
		wantStatusCode int
		wantBody       string
		wantChallenge  bool
	}{
		{
			name:           "it can successfully validate a token",
			authorization:  "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       "jdoe@example.com",
		},
		{
			name:           "no token continues unauthenticated",
			wantStatusCode: http.StatusOK,
			wantBody:       "anonymous",
		},
		{
			name:           "no token with credentials required",
			options:        []Option{WithCredentialsOptional(false)},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "expired token",
			authorization:  "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "token signed by another key",
			authorization:  "Bearer " + foreignToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "garbage token",
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "wrong scheme",
			authorization:  "Basic dXNlcjpwYXNz",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "OPTIONS is validated by default",
			method:         http.MethodOptions,
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"JWT is missing or invalid."}`,
			wantChallenge:  true,
		},
		{
			name:           "OPTIONS skipped when configured",
			options:        []Option{WithValidateOnOptions(false)},
			method:         http.MethodOptions,
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusOK,
			wantBody:       "anonymous",
		},
		{
			name:           "excluded path",
			options:        []Option{WithExclusionUrls([]string{"/health"})},
			path:           "/health",
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusOK,
			wantBody:       "anonymous",
		},
		{
			name:           "disabled middleware passes everything",
			options:        []Option{WithDisabled(true), WithCredentialsOptional(false)},
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusOK,
			wantBody:       "anonymous",
		},
		{
			name: "custom extractor",
			options: []Option{WithTokenExtractor(CookieTokenExtractor("jwt"))},
			// The header is ignored by the cookie extractor.
			authorization:  "Bearer not-a-jwt",
			wantStatusCode: http.StatusOK,
			wantBody:       "anonymous",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{WithValidator(v)}, testCase.options...)
			middleware, err := New(opts...)
			require.NoError(t, err)

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}
			path := testCase.path
			if path == "" {
				path = "/"
			}

			req := httptest.NewRequest(method, path, nil)
			if testCase.authorization != "" {
				req.Header.Set("Authorization", testCase.authorization)
			}
			rec := httptest.NewRecorder()

			middleware.CheckJWT(principalHandler).ServeHTTP(rec, req)

			body, err := io.ReadAll(rec.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			assert.Equal(t, testCase.wantBody, string(body))
			if testCase.wantChallenge {
				assert.Equal(t, `Bearer realm="MP-JWT"`, rec.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func Test_CheckJWT_ConfigurationError(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")

	// A resolver built without any key source.
	resolver, err := jwks.New()
	require.NoError(t, err)
	v, err := validator.New(validator.WithKeyResolver(resolver))
	require.NoError(t, err)

	middleware, err := New(WithValidator(v))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issuer.Sign(jwtauthtest.Claims("u1", nil)))
	rec := httptest.NewRecorder()

	middleware.CheckJWT(principalHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
}

func Test_RequirePolicy(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")
	v := newTestValidator(t, issuer)

	signWithGroups := func(groups ...string) string {
		return issuer.Sign(jwtauthtest.Claims("u1", map[string]any{
			"iss":    testIssuer,
			"groups": groups,
		}))
	}

	testCases := []struct {
		name           string
		policy         authz.Policy
		token          string
		options        []Option
		wantStatusCode int
		wantChallenge  bool
	}{
		{
			name:           "open endpoint without token",
			policy:         authz.NoPolicy(),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "permit all without token",
			policy:         authz.PermitAllPolicy(),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "roles without token",
			policy:         authz.Roles("admin"),
			wantStatusCode: http.StatusUnauthorized,
			wantChallenge:  true,
		},
		{
			name:           "roles with a non-matching group",
			policy:         authz.Roles("admin"),
			token:          signWithGroups("user"),
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "roles with a matching group",
			policy:         authz.Roles("admin"),
			token:          signWithGroups("admin", "user"),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "deny all denies an admin",
			policy:         authz.DenyAllPolicy(),
			token:          signWithGroups("admin"),
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "disabled middleware skips the policy",
			policy:         authz.DenyAllPolicy(),
			options:        []Option{WithDisabled(true)},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{WithValidator(v)}, testCase.options...)
			middleware, err := New(opts...)
			require.NoError(t, err)

			handler := middleware.CheckJWT(middleware.RequirePolicy(testCase.policy, principalHandler))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.token != "" {
				req.Header.Set("Authorization", "Bearer "+testCase.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatusCode, rec.Code)
			if testCase.wantChallenge {
				assert.Equal(t, BearerChallenge(), rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func Test_PrincipalHelpers(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")
	middleware, err := New(WithValidator(newTestValidator(t, issuer)))
	require.NoError(t, err)

	var got *principal.Principal
	handler := middleware.CheckJWT(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, HasPrincipal(r.Context()))
		got = MustGetPrincipal(r.Context())
	}))

	token := issuer.Sign(jwtauthtest.Claims("u1", map[string]any{"iss": testIssuer}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "u1", got.Name())
	assert.Equal(t, token, got.RawToken())

	empty := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, HasPrincipal(empty.Context()))
	assert.Panics(t, func() { MustGetPrincipal(empty.Context()) })
}
