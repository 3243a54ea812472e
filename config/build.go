package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/kumuluz/go-jwt-auth/jwks"
	"github.com/kumuluz/go-jwt-auth/validator"
)

// maxKeyLocationSize caps a key read from a location.
const maxKeyLocationSize = 1 * 1024 * 1024

// BuildOption customizes NewResolver and NewValidator.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger        jwks.Logger
	httpClient    *http.Client
	validatorOpts []validator.Option
}

// WithLogger logs key loading and JWKS fetches.
func WithLogger(logger jwks.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = logger }
}

// WithHTTPClient sets the client used for key locations and JWKS downloads.
func WithHTTPClient(client *http.Client) BuildOption {
	return func(o *buildOptions) { o.httpClient = client }
}

// WithValidatorOptions appends options passed to validator.New after the
// ones derived from the Config.
func WithValidatorOptions(opts ...validator.Option) BuildOption {
	return func(o *buildOptions) { o.validatorOpts = append(o.validatorOpts, opts...) }
}

// NewResolver builds the key resolver described by c.
//
// A key location ending in /.well-known/jwks.json is used as the JWKS URI
// unless jwks-uri is set. Any other location is read, from the network for
// http(s) URLs and from disk otherwise, and replaces the inline public key.
func (c *Config) NewResolver(ctx context.Context, opts ...BuildOption) (jwks.KeyResolver, error) {
	o := applyBuildOptions(opts)

	jwksURI := c.JWKSURI
	publicKey := c.PublicKey

	switch {
	case c.PublicKeyLocation == "":
	case c.LocationIsJWKS():
		if jwksURI == "" {
			jwksURI = c.PublicKeyLocation
		}
	default:
		payload, err := c.readLocation(ctx, o.httpClient)
		if err != nil {
			return nil, err
		}
		if o.logger != nil {
			o.logger.Debug("loaded public key", "location", c.PublicKeyLocation)
		}
		publicKey = payload
	}

	resolverOpts := []jwks.Option{jwks.WithFetchTimeout(c.fetchTimeout())}
	if jwksURI != "" {
		resolverOpts = append(resolverOpts, jwks.WithJWKSURI(jwksURI))
	}
	if publicKey != "" {
		resolverOpts = append(resolverOpts, jwks.WithStaticKey(publicKey))
	}
	if o.httpClient != nil {
		resolverOpts = append(resolverOpts, jwks.WithHTTPClient(o.httpClient))
	}
	if o.logger != nil {
		resolverOpts = append(resolverOpts, jwks.WithLogger(o.logger))
		if jwksURI == "" && publicKey == "" {
			o.logger.Warn("no public key or JWKS URI configured, every token will be rejected")
		}
	}

	return jwks.New(resolverOpts...)
}

// NewValidator builds a validator.Validator from c.
func (c *Config) NewValidator(ctx context.Context, opts ...BuildOption) (*validator.Validator, error) {
	o := applyBuildOptions(opts)

	resolver, err := c.NewResolver(ctx, opts...)
	if err != nil {
		return nil, err
	}

	validatorOpts := []validator.Option{
		validator.WithKeyResolver(resolver),
		validator.WithMaximumLeeway(c.MaximumLeeway),
	}
	if c.Issuer != "" {
		validatorOpts = append(validatorOpts, validator.WithIssuer(c.Issuer))
	}
	validatorOpts = append(validatorOpts, o.validatorOpts...)

	return validator.New(validatorOpts...)
}

func (c *Config) fetchTimeout() time.Duration {
	if c.JWKSFetchTimeout <= 0 {
		return DefaultJWKSFetchTimeout
	}
	return c.JWKSFetchTimeout
}

func (c *Config) readLocation(ctx context.Context, client *http.Client) (string, error) {
	u, err := url.Parse(c.PublicKeyLocation)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		b, err := os.ReadFile(c.PublicKeyLocation)
		if err != nil {
			return "", fmt.Errorf("could not read public key from %q: %w", c.PublicKeyLocation, err)
		}
		return string(b), nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PublicKeyLocation, nil)
	if err != nil {
		return "", fmt.Errorf("could not build request for %q: %w", c.PublicKeyLocation, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not fetch public key from %q: %w", c.PublicKeyLocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("could not fetch public key from %q: status %d", c.PublicKeyLocation, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxKeyLocationSize))
	if err != nil {
		return "", fmt.Errorf("could not read public key from %q: %w", c.PublicKeyLocation, err)
	}
	if len(b) == 0 {
		return "", errors.New("public key location returned an empty body")
	}
	return string(b), nil
}

func applyBuildOptions(opts []BuildOption) *buildOptions {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
