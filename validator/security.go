package validator

import (
	"fmt"
	"strings"
)

// maxTokenSize rejects tokens before any decoding work. Valid JWTs rarely
// exceed a few KB.
const maxTokenSize = 1024 * 1024

// validateTokenFormat rejects input that cannot be a compact JWS
// (header.payload.signature) before it reaches the parser.
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return fmt.Errorf("%w: token is empty", ErrMalformedToken)
	}

	if len(tokenString) > maxTokenSize {
		return fmt.Errorf("%w: token exceeds maximum size (1MB)", ErrMalformedToken)
	}

	if dots := strings.Count(tokenString, "."); dots != 2 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, dots+1)
	}

	return nil
}
