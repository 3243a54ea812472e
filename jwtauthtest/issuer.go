// Package jwtauthtest provides an RSA token issuer for tests of code that
// verifies tokens with go-jwt-auth.
//
// The issuer generates a key pair, exports the public half in every format the
// key resolvers accept and can serve it as a JWKS document:
//
//	issuer := jwtauthtest.NewIssuer("k1")
//	defer issuer.Close()
//
//	resolver, _ := jwks.New(jwks.WithJWKSURI(issuer.JWKSURL()))
//	token := issuer.Sign(map[string]any{"sub": "u1", "groups": []string{"admin"}})
package jwtauthtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSPath is the path the issuer serves its key set under.
const JWKSPath = "/.well-known/jwks.json"

// Issuer signs RS256 tokens and serves the matching JWKS document.
// It is safe for concurrent use.
type Issuer struct {
	keyID      string
	privateKey *rsa.PrivateKey

	mu       sync.Mutex
	server   *httptest.Server
	gate     chan struct{}
	extra    []*Issuer
	requests atomic.Int64
}

// NewIssuer creates an issuer with a fresh 2048-bit RSA key identified by
// keyID. It panics if the key cannot be generated.
func NewIssuer(keyID string) *Issuer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic("failed to generate RSA key: " + err.Error())
	}
	return &Issuer{keyID: keyID, privateKey: key}
}

// KeyID returns the kid placed in token headers and in the JWKS.
func (i *Issuer) KeyID() string { return i.keyID }

// PrivateKey returns the signing key.
func (i *Issuer) PrivateKey() *rsa.PrivateKey { return i.privateKey }

// PublicKey returns the verification key.
func (i *Issuer) PublicKey() *rsa.PublicKey { return &i.privateKey.PublicKey }

// PublicKeyDER returns the X.509 SubjectPublicKeyInfo encoding of the public key.
func (i *Issuer) PublicKeyDER() []byte {
	der, err := x509.MarshalPKIXPublicKey(i.PublicKey())
	if err != nil {
		panic("failed to marshal public key: " + err.Error())
	}
	return der
}

// PublicKeyPEM returns the public key as a PEM "PUBLIC KEY" block.
func (i *Issuer) PublicKeyPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: i.PublicKeyDER()}))
}

// PublicKeyBase64 returns the public key as raw base64 without PEM armor.
func (i *Issuer) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(i.PublicKeyDER())
}

// JWK returns the public key as a single JSON Web Key.
func (i *Issuer) JWK() []byte {
	b, err := json.Marshal(i.jwk())
	if err != nil {
		panic("failed to marshal JWK: " + err.Error())
	}
	return b
}

// JWKS returns a key set holding the public keys of i and any issuers added
// with Also.
func (i *Issuer) JWKS() []byte {
	set := jwk.NewSet()
	if err := set.AddKey(i.jwk()); err != nil {
		panic("failed to build JWKS: " + err.Error())
	}

	i.mu.Lock()
	extra := append([]*Issuer(nil), i.extra...)
	i.mu.Unlock()
	for _, other := range extra {
		if err := set.AddKey(other.jwk()); err != nil {
			panic("failed to build JWKS: " + err.Error())
		}
	}

	b, err := json.Marshal(set)
	if err != nil {
		panic("failed to marshal JWKS: " + err.Error())
	}
	return b
}

// Also publishes the keys of others in the JWKS served by i.
func (i *Issuer) Also(others ...*Issuer) *Issuer {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.extra = append(i.extra, others...)
	return i
}

func (i *Issuer) jwk() jwk.Key {
	key, err := jwk.FromRaw(i.PublicKey())
	if err != nil {
		panic("failed to convert public key: " + err.Error())
	}
	_ = key.Set(jwk.KeyIDKey, i.keyID)
	_ = key.Set(jwk.AlgorithmKey, jwa.RS256)
	_ = key.Set(jwk.KeyUsageKey, "sig")
	return key
}

// Gate makes the JWKS endpoint block until Release is called. It lets tests
// hold several requests in flight at once.
func (i *Issuer) Gate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gate = make(chan struct{})
}

// Release unblocks requests held by Gate.
func (i *Issuer) Release() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.gate != nil {
		close(i.gate)
		i.gate = nil
	}
}

// JWKSURL starts the JWKS server on first use and returns the URL of the key
// set document.
func (i *Issuer) JWKSURL() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.server == nil {
		mux := http.NewServeMux()
		mux.HandleFunc(JWKSPath, i.handleJWKS)
		i.server = httptest.NewServer(mux)
	}
	return i.server.URL + JWKSPath
}

// Requests returns how many times the JWKS document has been requested.
func (i *Issuer) Requests() int64 { return i.requests.Load() }

// Close shuts down the JWKS server, if started.
func (i *Issuer) Close() {
	i.Release()

	i.mu.Lock()
	server := i.server
	i.server = nil
	i.mu.Unlock()

	if server != nil {
		server.Close()
	}
}

func (i *Issuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	i.requests.Add(1)

	i.mu.Lock()
	gate := i.gate
	i.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(i.JWKS())
}

// Sign returns a compact RS256 token carrying claims with the issuer's kid in
// its header. It panics on signing failure.
func (i *Issuer) Sign(claims map[string]any) string {
	return i.SignWithHeader(claims, map[string]any{"kid": i.keyID})
}

// SignWithHeader is like Sign but replaces the extra header fields. A header
// without kid produces a token without one.
func (i *Issuer) SignWithHeader(claims map[string]any, header map[string]any) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(claims))
	for k, v := range header {
		token.Header[k] = v
	}

	signed, err := token.SignedString(i.privateKey)
	if err != nil {
		panic("failed to sign token: " + err.Error())
	}
	return signed
}

// Claims returns a baseline claim set for subject, valid for an hour from now.
// Extra claims are merged on top.
func Claims(subject string, extra map[string]any) map[string]any {
	now := time.Now()
	c := map[string]any{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		c[k] = v
	}
	return c
}
