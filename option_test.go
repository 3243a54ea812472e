package jwtauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumuluz/go-jwt-auth/core"
	"github.com/kumuluz/go-jwt-auth/jwtauthtest"
	"github.com/kumuluz/go-jwt-auth/principal"
)

type stubValidator struct {
	p   *principal.Principal
	err error
}

func (s stubValidator) ValidateToken(context.Context, string) (*principal.Principal, error) {
	return s.p, s.err
}

func Test_New_OptionsValidation(t *testing.T) {
	v := stubValidator{}

	testCases := []struct {
		name    string
		options []Option
		wantErr error
	}{
		{
			name:    "missing validator",
			wantErr: ErrValidatorNil,
		},
		{
			name:    "nil validator",
			options: []Option{WithValidator(nil)},
			wantErr: ErrValidatorNil,
		},
		{
			name:    "nil error handler",
			options: []Option{WithValidator(v), WithErrorHandler(nil)},
			wantErr: ErrErrorHandlerNil,
		},
		{
			name:    "nil token extractor",
			options: []Option{WithValidator(v), WithTokenExtractor(nil)},
			wantErr: ErrTokenExtractorNil,
		},
		{
			name:    "empty exclusion list",
			options: []Option{WithValidator(v), WithExclusionUrls(nil)},
			wantErr: ErrExclusionUrlsEmpty,
		},
		{
			name:    "nil logger",
			options: []Option{WithValidator(v), WithLogger(nil)},
			wantErr: ErrLoggerNil,
		},
		{
			name:    "nil metrics",
			options: []Option{WithValidator(v), WithMetrics(nil)},
			wantErr: ErrMetricsNil,
		},
		{
			name:    "nil tracer",
			options: []Option{WithValidator(v), WithTracer(nil)},
			wantErr: ErrTracerNil,
		},
		{
			name:    "valid",
			options: []Option{WithValidator(v)},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m, err := New(testCase.options...)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func Test_New_Defaults(t *testing.T) {
	m, err := New(WithValidator(stubValidator{}))
	require.NoError(t, err)

	assert.NotNil(t, m.errorHandler)
	assert.NotNil(t, m.tokenExtractor)
	assert.True(t, m.validateOnOptions)
	assert.False(t, m.Disabled())
	assert.True(t, m.Core().CredentialsOptional())
}

func Test_WithExclusionUrls(t *testing.T) {
	m, err := New(
		WithValidator(stubValidator{err: errors.New("never valid")}),
		WithExclusionUrls([]string{"/public", "http://example.com/health"}),
	)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		target   string
		excluded bool
	}{
		{name: "path match", target: "/public", excluded: true},
		{name: "full URL match", target: "http://example.com/health", excluded: true},
		{name: "no match", target: "/private", excluded: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, testCase.target, nil)
			assert.Equal(t, testCase.excluded, m.exclusionURLHandler(req))
		})
	}
}

func Test_WithErrorHandler(t *testing.T) {
	var gotErr error
	m, err := New(
		WithValidator(stubValidator{err: errors.New("bad token")}),
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			gotErr = err
			w.WriteHeader(http.StatusTeapot)
		}),
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	m.CheckJWT(principalHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, gotErr, ErrJWTInvalid)

	var verr *core.ValidationError
	require.ErrorAs(t, gotErr, &verr)
	assert.Equal(t, core.ErrorCodeInvalidClaims, verr.Code)
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record(msg) }

func Test_WithLogger(t *testing.T) {
	logger := &recordingLogger{}
	m, err := New(
		WithValidator(stubValidator{err: errors.New("bad token")}),
		WithLogger(logger),
		WithExclusionUrls([]string{"/health"}),
	)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	m.CheckJWT(principalHandler).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	m.CheckJWT(principalHandler).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logger.messages, "skipping JWT validation for excluded URL")
	assert.Contains(t, logger.messages, "Token validation failed")
}

type countingMetrics struct {
	mu       sync.Mutex
	counters map[string]int
}

func (c *countingMetrics) IncCounter(name string, tags map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name+"/"+tags["outcome"]+tags["decision"]]++
}

func (c *countingMetrics) ObserveHistogram(string, float64, map[string]string) {}

func Test_WithMetrics(t *testing.T) {
	issuer := jwtauthtest.NewIssuer("k1")
	metrics := &countingMetrics{counters: map[string]int{}}

	m, err := New(WithValidator(newTestValidator(t, issuer)), WithMetrics(metrics))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issuer.Sign(jwtauthtest.Claims("u1", map[string]any{"iss": testIssuer})))
	m.CheckJWT(principalHandler).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, metrics.counters[core.MetricVerifications+"/"+core.OutcomeSuccess])
}

func Test_invalidError(t *testing.T) {
	details := errors.New("error extracting token")
	err := &invalidError{details: details}

	assert.ErrorIs(t, err, ErrJWTInvalid)
	assert.ErrorIs(t, err, details)
	assert.Equal(t, "jwt invalid: error extracting token", err.Error())
}
