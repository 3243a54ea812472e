package jwks

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single JWKS download.
const DefaultFetchTimeout = 30 * time.Second

// Option configures key resolution.
type Option func(*config) error

// WithJWKSURI makes the resolver fetch keys from the JWKS document at uri.
// It takes precedence over WithStaticKey.
func WithJWKSURI(uri string) Option {
	return func(c *config) error {
		if strings.TrimSpace(uri) == "" {
			return errors.New("JWKS URI cannot be empty")
		}
		u, err := url.Parse(uri)
		if err != nil {
			return fmt.Errorf("could not parse JWKS URI: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("JWKS URI must use http or https, got %q", u.Scheme)
		}
		c.jwksURI = u
		return nil
	}
}

// WithStaticKey sets the public key payload. It may be a JWKS document, a
// single JWK, a PEM block or raw base64 of an X.509 SubjectPublicKeyInfo.
func WithStaticKey(payload string) Option {
	return func(c *config) error {
		if strings.TrimSpace(payload) == "" {
			return errors.New("static key cannot be empty")
		}
		c.staticKey = payload
		return nil
	}
}

// WithHTTPClient sets the client used to download the JWKS document.
// If not specified, a client with a 30s timeout is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithFetchTimeout bounds each JWKS download. The download is shared by every
// request waiting on the same kid, so it runs under this timeout rather than
// under any single caller's context.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return errors.New("fetch timeout must be positive")
		}
		c.fetchTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger for key resolution events.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
