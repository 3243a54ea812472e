package jwks

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// StaticProvider resolves every lookup to one fixed key. The kid is ignored.
type StaticProvider struct {
	key *rsa.PublicKey
}

// NewStaticProvider returns a resolver that always yields key.
func NewStaticProvider(key *rsa.PublicKey) *StaticProvider {
	return &StaticProvider{key: key}
}

// ResolvePublicKey returns the configured key.
func (p *StaticProvider) ResolvePublicKey(context.Context, string) (*rsa.PublicKey, error) {
	if p.key == nil {
		return nil, ErrNoKeySource
	}
	return p.key, nil
}

var (
	pemArmor      = regexp.MustCompile(`-----(BEGIN|END) [A-Z ]*PUBLIC KEY-----`)
	nonBase64Char = regexp.MustCompile(`[^A-Za-z0-9+/=]`)
)

// DecodePublicKey decodes an RSA public key from payload, trying in order:
//
//  1. a JWKS document, using its first key,
//  2. a single JWK,
//  3. PEM or raw base64 of an X.509 SubjectPublicKeyInfo.
//
// The first format that yields an RSA key wins.
func DecodePublicKey(payload string) (*rsa.PublicKey, error) {
	var errs []error

	key, err := decodeJWKS(payload)
	if err == nil {
		return key, nil
	}
	errs = append(errs, fmt.Errorf("as JWKS: %w", err))

	key, err = decodeJWK(payload)
	if err == nil {
		return key, nil
	}
	errs = append(errs, fmt.Errorf("as JWK: %w", err))

	key, err = decodeSPKI(payload)
	if err == nil {
		return key, nil
	}
	errs = append(errs, fmt.Errorf("as X.509: %w", err))

	return nil, fmt.Errorf("could not decode public key: %w", errors.Join(errs...))
}

func decodeJWKS(payload string) (*rsa.PublicKey, error) {
	if !strings.Contains(payload, `"keys"`) {
		return nil, errors.New("no keys member")
	}
	set, err := jwk.Parse([]byte(payload))
	if err != nil {
		return nil, err
	}
	first, ok := set.Key(0)
	if !ok {
		return nil, errors.New("key set is empty")
	}
	return rsaFromJWK(first)
}

func decodeJWK(payload string) (*rsa.PublicKey, error) {
	key, err := jwk.ParseKey([]byte(payload))
	if err != nil {
		return nil, err
	}
	return rsaFromJWK(key)
}

func decodeSPKI(payload string) (*rsa.PublicKey, error) {
	cleaned := pemArmor.ReplaceAllString(payload, "")
	cleaned = nonBase64Char.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return nil, errors.New("payload is empty")
	}

	der, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotRSAKey, pub)
	}
	return rsaKey, nil
}

func rsaFromJWK(key jwk.Key) (*rsa.PublicKey, error) {
	if key.KeyType() != jwa.RSA {
		return nil, fmt.Errorf("%w: key type %s", ErrNotRSAKey, key.KeyType())
	}

	pub, err := key.PublicKey()
	if err != nil {
		return nil, err
	}

	var raw rsa.PublicKey
	if err := pub.Raw(&raw); err != nil {
		return nil, fmt.Errorf("could not export RSA key: %w", err)
	}
	return &raw, nil
}
