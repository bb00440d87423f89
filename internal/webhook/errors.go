package webhook

import "errors"

// Sentinel errors for webhook verification.
// Malformed input and a failed signature check are distinct conditions:
// the former is a bad request, the latter a potential forgery.
var (
	// ErrInvalidSecret is returned when the signing secret is missing the
	// expected base64 payload after the "whsec_" prefix.
	ErrInvalidSecret = errors.New("invalid signing secret")
	// ErrMalformedTimestamp is returned when the timestamp header is not a decimal integer.
	ErrMalformedTimestamp = errors.New("malformed timestamp header")
	// ErrReplayWindowExceeded is returned when the timestamp is outside the replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrMalformedSignatureHeader is returned when the signature header
	// contains no candidate with a known version prefix.
	ErrMalformedSignatureHeader = errors.New("malformed signature header")
	// ErrInvalidSignature is returned when no signature candidate matches.
	ErrInvalidSignature = errors.New("invalid signature")
)
