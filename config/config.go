// Package config loads jwt-auth settings from a file and the environment.
//
// Settings live under the jwt-auth prefix:
//
//	jwt-auth:
//	  issuer: https://auth.example.com/
//	  maximum-leeway: 60
//	  jwks-uri: https://auth.example.com/.well-known/jwks.json
//
// Each key can be set from the environment by upper-casing it and replacing
// dots and dashes with underscores (JWT_AUTH_ISSUER). The MicroProfile keys
// mp.jwt.verify.issuer, mp.jwt.verify.publickey and
// mp.jwt.verify.publickey.location (MP_JWT_VERIFY_*) take precedence over
// their jwt-auth counterparts. In files they are written as flat keys.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/kumuluz/go-jwt-auth/jwks"
)

// Configuration keys.
const (
	KeyIssuer            = "jwt-auth.issuer"
	KeyMaximumLeeway     = "jwt-auth.maximum-leeway"
	KeyPublicKey         = "jwt-auth.public-key"
	KeyPublicKeyLocation = "jwt-auth.public-key-location"
	KeyJWKSURI           = "jwt-auth.jwks-uri"
	KeyJWKSFetchTimeout  = "jwt-auth.jwks-fetch-timeout"
	KeyDisabled          = "jwt-auth.disabled"

	KeyMPIssuer            = "mp.jwt.verify.issuer"
	KeyMPPublicKey         = "mp.jwt.verify.publickey"
	KeyMPPublicKeyLocation = "mp.jwt.verify.publickey.location"
)

// Defaults.
const (
	DefaultMaximumLeeway    = 60
	DefaultJWKSFetchTimeout = jwks.DefaultFetchTimeout
)

// WellKnownJWKSPath marks a key location that is a JWKS endpoint.
const WellKnownJWKSPath = "/.well-known/jwks.json"

// Config holds the settings needed to verify tokens.
type Config struct {
	Issuer            string        `mapstructure:"issuer"`
	MaximumLeeway     int64         `mapstructure:"maximum-leeway" validate:"gte=0,lte=9223372036"`
	PublicKey         string        `mapstructure:"public-key"`
	PublicKeyLocation string        `mapstructure:"public-key-location"`
	JWKSURI           string        `mapstructure:"jwks-uri" validate:"omitempty,url,startswith=http"`
	JWKSFetchTimeout  time.Duration `mapstructure:"jwks-fetch-timeout" validate:"gt=0"`
	Disabled          bool          `mapstructure:"disabled"`
}

// Default returns a Config with the default leeway and fetch timeout and no
// key material.
func Default() *Config {
	return &Config{
		MaximumLeeway:    DefaultMaximumLeeway,
		JWKSFetchTimeout: DefaultJWKSFetchTimeout,
	}
}

// Load reads the configuration file at path, if path is not empty, merged with
// the environment. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper reads the configuration from v. Defaults and environment lookups
// are registered on v.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault(KeyMaximumLeeway, DefaultMaximumLeeway)
	v.SetDefault(KeyJWKSFetchTimeout, DefaultJWKSFetchTimeout)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Issuer:            firstSet(v, KeyMPIssuer, KeyIssuer),
		MaximumLeeway:     v.GetInt64(KeyMaximumLeeway),
		PublicKey:         firstSet(v, KeyMPPublicKey, KeyPublicKey),
		PublicKeyLocation: firstSet(v, KeyMPPublicKeyLocation, KeyPublicKeyLocation),
		JWKSURI:           strings.TrimSpace(v.GetString(KeyJWKSURI)),
		JWKSFetchTimeout:  v.GetDuration(KeyJWKSFetchTimeout),
		Disabled:          v.GetBool(KeyDisabled),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid is returned when a Config fails validation.
var ErrInvalid = errors.New("invalid jwt-auth configuration")

// Validate checks the leeway, the fetch timeout and the JWKS URI.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// LocationIsJWKS reports whether the key location points at a JWKS endpoint.
func (c *Config) LocationIsJWKS() bool {
	return strings.HasSuffix(c.PublicKeyLocation, WellKnownJWKSPath)
}

// firstSet returns the first non-blank string among keys.
func firstSet(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			return s
		}
	}
	return ""
}
