package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/kumuluz/go-jwt-auth/claims"
	"github.com/kumuluz/go-jwt-auth/jwks"
	"github.com/kumuluz/go-jwt-auth/principal"
)

// RS256 is the only signature algorithm tokens may use.
const RS256 = jwa.RS256

// Validator verifies RS256 tokens and turns them into principals.
// It is immutable after New and safe for concurrent use.
type Validator struct {
	keyResolver      jwks.KeyResolver // Required.
	issuer           string           // Optional.
	allowedClockSkew time.Duration    // Optional.
	now              func() time.Time // Internal.
}

// New sets up a new Validator.
// Required options:
//   - WithKeyResolver: source of verification keys
//
// Optional options:
//   - WithIssuer: expected iss claim
//   - WithAllowedClockSkew or WithMaximumLeeway: tolerance for time claims
//   - WithClock: time source
//
// Example:
//
//	resolver, _ := jwks.New(jwks.WithStaticKey(pemKey))
//	v, err := validator.New(
//	    validator.WithKeyResolver(resolver),
//	    validator.WithIssuer("https://auth.example.com/"),
//	    validator.WithMaximumLeeway(60),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{now: time.Now}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if v.keyResolver == nil {
		return nil, errors.New("key resolver is required (use WithKeyResolver)")
	}

	return v, nil
}

// Issuer returns the expected issuer, or "" when the issuer is not checked.
func (v *Validator) Issuer() string { return v.issuer }

// AllowedClockSkew returns the tolerance applied to time claims.
func (v *Validator) AllowedClockSkew() time.Duration { return v.allowedClockSkew }

// ValidateToken verifies tokenString and returns the principal it carries.
//
// The checks run in order: format and payload decoding, algorithm, key
// resolution, signature, issuer, then exp, nbf and iat. The first failure is
// returned wrapped around one of the package sentinels; no principal is
// returned with it.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*principal.Principal, error) {
	if err := validateTokenFormat(tokenString); err != nil {
		return nil, err
	}

	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse the token: %w", ErrMalformedToken, err)
	}
	if len(msg.Signatures()) != 1 {
		return nil, fmt.Errorf("%w: expected one signature, got %d", ErrMalformedToken, len(msg.Signatures()))
	}

	set, err := claims.ParseSet(msg.Payload())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	headers := msg.Signatures()[0].ProtectedHeaders()
	if alg := headers.Algorithm(); alg != RS256 {
		return nil, fmt.Errorf("%w: expected %q signing algorithm but token specified %q",
			ErrUnsupportedAlgorithm, RS256, alg)
	}

	key, err := v.keyResolver.ResolvePublicKey(ctx, headers.KeyID())
	if err != nil {
		if errors.Is(err, jwks.ErrNoKeySource) {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrKeyResolution, err)
	}

	if _, err := jws.Verify([]byte(tokenString), jws.WithKey(RS256, key)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if err := v.validateIssuer(set); err != nil {
		return nil, err
	}

	if err := validateTimeClaims(set, v.now(), v.allowedClockSkew); err != nil {
		return nil, err
	}

	set = set.With(claims.RawToken, claims.String(tokenString))

	return principal.New(principalName(set), tokenString, set), nil
}

func (v *Validator) validateIssuer(set claims.Set) error {
	if v.issuer == "" {
		return nil
	}

	var actual string
	if value, ok := set.Get(claims.Issuer); ok {
		actual, _ = value.AsString()
	}

	if actual != v.issuer {
		return fmt.Errorf("%w: expected %q, got %q", ErrIssuerMismatch, v.issuer, actual)
	}
	return nil
}

// validateTimeClaims applies the leeway inclusively: a token whose exp is
// exactly leeway seconds in the past is still accepted. Time claims carry
// whole seconds, so now is truncated to the second before comparing.
func validateTimeClaims(set claims.Set, now time.Time, leeway time.Duration) error {
	now = now.Truncate(time.Second)

	exp, hasExp, err := numericDate(set, claims.ExpirationTime)
	if err != nil {
		return err
	}
	if hasExp && now.After(exp.Add(leeway)) {
		return fmt.Errorf("%w: exp %d", ErrTokenExpired, exp.Unix())
	}

	nbf, hasNbf, err := numericDate(set, claims.NotBefore)
	if err != nil {
		return err
	}
	if hasNbf && now.Add(leeway).Before(nbf) {
		return fmt.Errorf("%w: nbf %d", ErrTokenNotYetValid, nbf.Unix())
	}

	iat, hasIat, err := numericDate(set, claims.IssuedAtTime)
	if err != nil {
		return err
	}
	if hasIat && now.Add(leeway).Before(iat) {
		return fmt.Errorf("%w: iat %d is in the future", ErrTokenNotYetValid, iat.Unix())
	}

	return nil
}

func numericDate(set claims.Set, name string) (time.Time, bool, error) {
	value, ok := set.Get(name)
	if !ok || value.IsNull() {
		return time.Time{}, false, nil
	}

	if value.Kind() == claims.KindInt64 {
		seconds, _ := value.AsLong()
		return time.Unix(seconds, 0), true, nil
	}

	seconds, ok := value.AsDouble()
	if !ok {
		return time.Time{}, false, fmt.Errorf("%w: %s claim must be a number, got %s",
			ErrMalformedToken, name, value.Kind())
	}

	whole := int64(seconds)
	frac := seconds - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second))), true, nil
}

// principalName picks upn, then preferred_username, then sub. Only string
// claims count.
func principalName(set claims.Set) string {
	for _, name := range []string{claims.UPN, claims.PreferredUsername, claims.Subject} {
		if value, ok := set.Get(name); ok {
			if s, ok := value.AsString(); ok {
				return s
			}
		}
	}
	return ""
}
