/*
Package jwks resolves the RSA public key a token must be verified with.

Three resolvers implement KeyResolver:

StaticProvider: one fixed key
  - Decoded once from a JWKS document, a single JWK, PEM or raw base64 X.509
  - The token's kid is ignored
  - Use for: a single signing key distributed with the service configuration

CachingProvider: keys from a remote JWKS endpoint
  - Keys are cached by kid and never evicted
  - An unknown kid downloads the document again
  - Concurrent lookups for the same unknown kid share one download
  - Each download is bounded by a timeout (default: 30s) and a 1MB body cap
  - Tokens must carry a kid header

NoKeyProvider: no key material configured
  - Every lookup fails with ErrNoKeySource

# Choosing a Resolver

New applies a fixed precedence: a JWKS URI wins over a static key, and a static
key that cannot be decoded leaves the resolver without a key.

	resolver, err := jwks.New(
	    jwks.WithJWKSURI("https://auth.example.com/.well-known/jwks.json"),
	    jwks.WithFetchTimeout(5*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(
	    validator.WithKeyResolver(resolver),
	    validator.WithIssuer("https://auth.example.com/"),
	)

# Errors

Lookups fail with one of the package sentinels, wrapped with context:

  - ErrNoKeySource: nothing configured
  - ErrKeyIDRequired: JWKS lookup for a token without kid
  - ErrKeyNotFound: the JWKS document has no key for the kid
  - ErrFetchFailed: transport, status or parse failure, or the caller gave up
  - ErrNotRSAKey: key material is not RSA

Use errors.Is to tell them apart.
*/
package jwks
