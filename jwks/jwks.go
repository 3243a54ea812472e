package jwks

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrNoKeySource is returned when neither a JWKS URI nor a usable static
	// key was configured. Verifiers treat it as a configuration error.
	ErrNoKeySource = errors.New("no key source configured")

	// ErrKeyNotFound is returned when the JWKS document has no key for the
	// requested kid.
	ErrKeyNotFound = errors.New("key not found in JWKS")

	// ErrKeyIDRequired is returned when a JWKS lookup is attempted for a token
	// without a kid header.
	ErrKeyIDRequired = errors.New("token has no kid header")

	// ErrFetchFailed is returned when the JWKS document cannot be retrieved or
	// parsed.
	ErrFetchFailed = errors.New("could not fetch JWKS")

	// ErrNotRSAKey is returned when key material decodes to a non-RSA key.
	ErrNotRSAKey = errors.New("key is not an RSA public key")
)

// KeyResolver yields the RSA public key to verify a token with. keyID is the
// token's kid header, or "" when the header has none.
type KeyResolver interface {
	ResolvePublicKey(ctx context.Context, keyID string) (*rsa.PublicKey, error)
}

// Logger is the structured logger used by the resolvers.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New selects the key resolver for the configured key material. The choice is
// made once:
//
//  1. WithJWKSURI set: a CachingProvider backed by that endpoint.
//  2. Otherwise WithStaticKey set and decodable: a StaticProvider.
//  3. Otherwise a NoKeyProvider, which fails every lookup with ErrNoKeySource.
//
// A static key that cannot be decoded is logged and treated as absent.
func New(opts ...Option) (KeyResolver, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if cfg.jwksURI != nil {
		return newCachingProvider(cfg), nil
	}

	if cfg.staticKey != "" {
		key, err := DecodePublicKey(cfg.staticKey)
		if err == nil {
			return NewStaticProvider(key), nil
		}
		if cfg.logger != nil {
			cfg.logger.Warn("static public key could not be decoded, no key is available",
				"error", err)
		}
	}

	return NoKeyProvider{}, nil
}

// NoKeyProvider is the resolver used when no key material is configured.
type NoKeyProvider struct{}

// ResolvePublicKey always fails with ErrNoKeySource.
func (NoKeyProvider) ResolvePublicKey(context.Context, string) (*rsa.PublicKey, error) {
	return nil, ErrNoKeySource
}

type config struct {
	jwksURI      *url.URL
	staticKey    string
	httpClient   *http.Client
	fetchTimeout time.Duration
	logger       Logger
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		fetchTimeout: DefaultFetchTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return cfg, nil
}
