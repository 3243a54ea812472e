package validator

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/kumuluz/go-jwt-auth/jwks"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithKeyResolver sets the source of verification keys.
// This is a required option.
//
// Use jwks.New to pick the resolver from the configured key material.
func WithKeyResolver(resolver jwks.KeyResolver) Option {
	return func(v *Validator) error {
		if resolver == nil {
			return errors.New("key resolver cannot be nil")
		}
		v.keyResolver = resolver
		return nil
	}
}

// WithIssuer sets the expected issuer claim (iss).
//
// When set, tokens with a different or missing iss are rejected. When not
// set, the issuer is not checked.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		if _, err := url.Parse(issuer); err != nil {
			return fmt.Errorf("invalid issuer URL: %w", err)
		}
		v.issuer = issuer
		return nil
	}
}

// WithAllowedClockSkew sets the tolerance applied to exp, nbf and iat.
// If not set, the default is 0 (no clock skew allowed).
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// MaxLeewaySeconds is the largest leeway a time.Duration can hold.
const MaxLeewaySeconds = math.MaxInt64 / int64(time.Second)

// WithMaximumLeeway is WithAllowedClockSkew expressed in whole seconds, the
// unit of the mp.jwt configuration. It accepts 0 to MaxLeewaySeconds.
func WithMaximumLeeway(seconds int64) Option {
	return func(v *Validator) error {
		if seconds < 0 {
			return errors.New("maximum leeway cannot be negative")
		}
		if seconds > MaxLeewaySeconds {
			return fmt.Errorf("maximum leeway cannot exceed %d seconds", MaxLeewaySeconds)
		}
		v.allowedClockSkew = time.Duration(seconds) * time.Second
		return nil
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		v.now = now
		return nil
	}
}
