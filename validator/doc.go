/*
Package validator verifies RS256 JSON Web Tokens using the lestrrat-go/jwx v2
library and turns them into principals.

# Features

  - RS256 signature verification against a key from a jwks.KeyResolver
  - Optional issuer (iss) check
  - exp, nbf and iat validated with an inclusive clock skew tolerance
  - Principal name taken from upn, then preferred_username, then sub
  - The compact token is injected into the claim set as raw_token

# Basic Usage

	resolver, err := jwks.New(
	    jwks.WithJWKSURI("https://auth.example.com/.well-known/jwks.json"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(
	    validator.WithKeyResolver(resolver),
	    validator.WithIssuer("https://auth.example.com/"),
	    validator.WithMaximumLeeway(60),
	)
	if err != nil {
	    log.Fatal(err)
	}

	p, err := v.ValidateToken(ctx, tokenString)
	if err != nil {
	    // Token invalid
	}
	fmt.Println(p.Name(), p.Groups())

# Clock Skew Tolerance

With a skew of s, a token is rejected when now > exp + s, or when
now + s < nbf (or iat). A token whose exp is exactly s in the past is still
accepted. Default: 0 (no clock skew allowed).

# Error Handling

Every failure wraps exactly one sentinel:

	p, err := v.ValidateToken(ctx, tokenString)
	switch {
	case errors.Is(err, validator.ErrConfiguration):
	    // No key source: a server problem, not the caller's
	case errors.Is(err, validator.ErrTokenExpired):
	    // ...
	case err != nil:
	    // Any other verification failure
	}

# Thread Safety

The Validator is immutable after creation and safe for concurrent use.
*/
package validator
