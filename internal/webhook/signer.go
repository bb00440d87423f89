package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
)

// sigVersionPrefix marks an HMAC-SHA256 signature candidate in the
// signature header. Other version prefixes are skipped, not rejected.
const sigVersionPrefix = "v1,"

// signedContent builds the canonical string the HMAC covers:
// "{messageID}.{timestamp}.{body}" with the timestamp in plain decimal.
// This must match the sender byte for byte; the body is used exactly as
// received with no whitespace or newline normalization.
func signedContent(messageID string, timestamp int64, body []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(messageID) + len(body) + 22)
	buf.WriteString(messageID)
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatInt(timestamp, 10))
	buf.WriteByte('.')
	buf.Write(body)
	return buf.Bytes()
}

// computeSignature returns the raw HMAC-SHA256 digest over the canonical content.
func computeSignature(secret Secret, messageID string, timestamp int64, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(signedContent(messageID, timestamp, body))
	return mac.Sum(nil)
}

// Sign produces a "v1,<base64 HMAC-SHA256>" signature header value for
// the given payload. It exists for test fixtures and the dev sender
// tooling; production signatures come from the provider.
func Sign(secret Secret, messageID string, timestamp int64, body []byte) string {
	digest := computeSignature(secret, messageID, timestamp, body)
	return sigVersionPrefix + base64.StdEncoding.EncodeToString(digest)
}
