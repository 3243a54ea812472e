package jwks

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"
)

// maxJWKSBodySize caps the JWKS response body. Key sets are typically <10KB.
const maxJWKSBodySize = 1 * 1024 * 1024

// CachingProvider resolves keys from a remote JWKS document and caches them by
// kid for the life of the provider. Entries are never evicted.
//
// A lookup for an unknown kid downloads the document again. Concurrent lookups
// for the same unknown kid share one download; lookups for other kids are not
// blocked by it.
type CachingProvider struct {
	jwksURI      string
	httpClient   *http.Client
	fetchTimeout time.Duration
	logger       Logger

	cacheMu sync.RWMutex
	keys    map[string]*rsa.PublicKey

	fetches singleflight.Group
}

// NewCachingProvider builds a CachingProvider.
// Required options:
//   - WithJWKSURI: location of the JWKS document
//
// Optional options:
//   - WithHTTPClient: custom HTTP client
//   - WithFetchTimeout: bound on each download (default: 30s)
//   - WithLogger: logger for fetch events
func NewCachingProvider(opts ...Option) (*CachingProvider, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if cfg.jwksURI == nil {
		return nil, fmt.Errorf("JWKS URI is required (use WithJWKSURI)")
	}

	return newCachingProvider(cfg), nil
}

func newCachingProvider(cfg *config) *CachingProvider {
	return &CachingProvider{
		jwksURI:      cfg.jwksURI.String(),
		httpClient:   cfg.httpClient,
		fetchTimeout: cfg.fetchTimeout,
		logger:       cfg.logger,
		keys:         make(map[string]*rsa.PublicKey),
	}
}

// JWKSURI returns the location of the JWKS document.
func (c *CachingProvider) JWKSURI() string { return c.jwksURI }

// ResolvePublicKey returns the key for keyID, downloading the JWKS document
// when the kid is not cached yet.
//
// If ctx ends while a download is in flight, ResolvePublicKey returns early
// with ErrFetchFailed. The download itself carries on for the other waiters and
// still populates the cache.
func (c *CachingProvider) ResolvePublicKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	if keyID == "" {
		return nil, ErrKeyIDRequired
	}

	if key, ok := c.lookup(keyID); ok {
		return key, nil
	}

	ch := c.fetches.DoChan(keyID, func() (any, error) {
		// Another flight may have cached the kid since the fast path.
		if key, ok := c.lookup(keyID); ok {
			return key, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
		defer cancel()

		if err := c.refresh(fetchCtx); err != nil {
			return nil, err
		}

		key, ok := c.lookup(keyID)
		if !ok {
			return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, keyID)
		}
		return key, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*rsa.PublicKey), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
	}
}

func (c *CachingProvider) lookup(keyID string) (*rsa.PublicKey, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	key, ok := c.keys[keyID]
	return key, ok
}

// refresh downloads the JWKS document and caches every RSA key in it that
// carries a kid.
func (c *CachingProvider) refresh(ctx context.Context) error {
	start := time.Now()
	if c.logger != nil {
		c.logger.Debug("fetching JWKS", "uri", c.jwksURI)
	}

	set, err := c.fetch(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("JWKS fetch failed",
				"uri", c.jwksURI,
				"error", err,
				"duration", time.Since(start))
		}
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	fetched := make(map[string]*rsa.PublicKey, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok || key.KeyType() != jwa.RSA || key.KeyID() == "" {
			continue
		}
		pub, err := rsaFromJWK(key)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("skipping unusable JWKS key", "kid", key.KeyID(), "error", err)
			}
			continue
		}
		fetched[key.KeyID()] = pub
	}

	c.cacheMu.Lock()
	for kid, pub := range fetched {
		c.keys[kid] = pub
	}
	c.cacheMu.Unlock()

	if c.logger != nil {
		c.logger.Debug("JWKS fetched",
			"uri", c.jwksURI,
			"keys", len(fetched),
			"duration", time.Since(start))
	}
	return nil
}

func (c *CachingProvider) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned status %d, expected 200", resp.StatusCode)
	}

	set, err := jwk.ParseReader(io.LimitReader(resp.Body, maxJWKSBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return set, nil
}
