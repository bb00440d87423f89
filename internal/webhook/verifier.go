package webhook

import (
	"crypto/hmac"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the default replay protection window.
const DefaultTolerance = 5 * time.Minute

// Verifier authenticates signed webhook requests. It is a pure function
// of its inputs plus the injected secret and clock, so a single instance
// is safe for concurrent use across requests.
type Verifier struct {
	secret    Secret
	tolerance time.Duration
	now       func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance overrides the replay window (default 5 minutes).
func WithTolerance(d time.Duration) Option {
	return func(v *Verifier) { v.tolerance = d }
}

// WithClock overrides the time source. Used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier for the given decoded secret.
func NewVerifier(secret Secret, opts ...Option) *Verifier {
	v := &Verifier{
		secret:    secret,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyTimestamp parses the timestamp header and checks it against the
// replay window. The boundary is inclusive: a skew of exactly the
// tolerance is accepted. Malformed and out-of-window timestamps return
// distinct errors.
func (v *Verifier) VerifyTimestamp(header string) (int64, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
	if err != nil {
		return 0, ErrMalformedTimestamp
	}

	if absInt64(v.now().Unix()-ts) > int64(v.tolerance.Seconds()) {
		return 0, ErrReplayWindowExceeded
	}

	return ts, nil
}

// VerifySignature checks the signature header against the HMAC computed
// over the canonical content. The header may carry multiple
// space-separated "v1,<base64>" candidates (key rotation); every
// candidate is checked and a match at any position is accepted.
// Comparison is constant-time.
func (v *Verifier) VerifySignature(messageID string, timestamp int64, signatureHeader string, body []byte) error {
	expected := computeSignature(v.secret, messageID, timestamp, body)

	sawCandidate := false
	matched := false
	for _, candidate := range strings.Fields(signatureHeader) {
		versioned, ok := strings.CutPrefix(candidate, sigVersionPrefix)
		if !ok {
			// Unknown version scheme; a future "v2," candidate must not
			// invalidate an otherwise well-formed header.
			continue
		}
		sawCandidate = true

		got, err := base64.StdEncoding.DecodeString(versioned)
		if err != nil {
			continue
		}
		if hmac.Equal(got, expected) {
			matched = true
		}
	}

	if !sawCandidate {
		return ErrMalformedSignatureHeader
	}
	if !matched {
		return ErrInvalidSignature
	}
	return nil
}

// Verify authenticates a full signed request: replay window first, then
// signature. The body must be the exact bytes read from the wire.
func (v *Verifier) Verify(messageID, timestampHeader, signatureHeader string, body []byte) error {
	ts, err := v.VerifyTimestamp(timestampHeader)
	if err != nil {
		return err
	}
	return v.VerifySignature(messageID, ts, signatureHeader, body)
}

// Tolerance returns the configured replay window.
func (v *Verifier) Tolerance() time.Duration {
	return v.tolerance
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
