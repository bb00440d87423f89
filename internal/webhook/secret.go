// Package webhook verifies Svix-style signed webhook requests from the
// identity provider, and generates matching signatures for test and dev
// tooling. Signer and verifier share one canonicalization so a payload
// signed here is always accepted by Verify with the same secret.
package webhook

import (
	"encoding/base64"
	"strings"
)

// secretPrefix is the provider-issued prefix on signing secrets.
const secretPrefix = "whsec_"

// Secret is the decoded HMAC key. It is loaded once at startup and
// treated as read-only for the life of the process.
type Secret []byte

// ParseSecret decodes a provider-issued signing secret of the form
// "whsec_<base64>". The prefix is stripped before decoding; a secret
// that decodes to zero bytes is invalid.
func ParseSecret(s string) (Secret, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), secretPrefix)

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}

	return Secret(key), nil
}
