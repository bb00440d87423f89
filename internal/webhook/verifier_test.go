package webhook

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func TestVerifier_VerifyTimestamp(t *testing.T) {
	const now = 1700000000

	tests := []struct {
		name      string
		header    string
		tolerance time.Duration
		wantErr   error
	}{
		{
			name:      "exact match",
			header:    "1700000000",
			tolerance: 5 * time.Minute,
		},
		{
			name:      "skew inside window",
			header:    "1700000200",
			tolerance: 5 * time.Minute,
		},
		{
			name:      "past skew exactly at boundary",
			header:    "1699999700",
			tolerance: 5 * time.Minute,
		},
		{
			name:      "future skew exactly at boundary",
			header:    "1700000300",
			tolerance: 5 * time.Minute,
		},
		{
			name:      "one second past the boundary",
			header:    "1700000301",
			tolerance: 5 * time.Minute,
			wantErr:   ErrReplayWindowExceeded,
		},
		{
			name:      "stale delivery",
			header:    "1699990000",
			tolerance: 5 * time.Minute,
			wantErr:   ErrReplayWindowExceeded,
		},
		{
			name:      "tight tolerance",
			header:    "1700000031",
			tolerance: 30 * time.Second,
			wantErr:   ErrReplayWindowExceeded,
		},
		{
			name:      "not a number",
			header:    "yesterday",
			tolerance: 5 * time.Minute,
			wantErr:   ErrMalformedTimestamp,
		},
		{
			name:      "empty header",
			header:    "",
			tolerance: 5 * time.Minute,
			wantErr:   ErrMalformedTimestamp,
		},
		{
			name:      "fractional seconds",
			header:    "1700000000.5",
			tolerance: 5 * time.Minute,
			wantErr:   ErrMalformedTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(testSecret(t), WithTolerance(tt.tolerance), WithClock(fixedClock(now)))

			_, err := v.VerifyTimestamp(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyTimestamp(%q) error = %v, want %v", tt.header, err, tt.wantErr)
			}
		})
	}
}

func TestVerifier_VerifySignature(t *testing.T) {
	secret := testSecret(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	const msgID = "msg_1700000000"
	const ts = int64(1700000000)

	valid := Sign(secret, msgID, ts, body)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{
			name:   "single valid candidate",
			header: valid,
		},
		{
			name:   "match in second position",
			header: "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA= " + valid,
		},
		{
			name:   "match in first position with rotated key after",
			header: valid + " v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		},
		{
			name:   "unknown version candidates are skipped",
			header: "v2,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA= " + valid,
		},
		{
			name:   "undecodable candidate is skipped",
			header: "v1,!!!notbase64!!! " + valid,
		},
		{
			name:    "no matching candidate",
			header:  "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "only undecodable candidates",
			header:  "v1,!!!notbase64!!!",
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "empty header",
			header:  "",
			wantErr: ErrMalformedSignatureHeader,
		},
		{
			name:    "no recognized version",
			header:  "v2,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
			wantErr: ErrMalformedSignatureHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(secret, WithClock(fixedClock(ts)))

			err := v.VerifySignature(msgID, ts, tt.header, body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifySignature() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifier_Verify_RoundTrip(t *testing.T) {
	secret := testSecret(t)
	const ts = int64(1700000000)

	bodies := map[string][]byte{
		"json":             []byte(`{"type":"user.created","data":{"id":"user_1"}}`),
		"empty":            nil,
		"unicode":          []byte(`{"type":"user.updated","data":{"first_name":"Tæ³°"}}`),
		"trailing newline": []byte("{\"type\":\"user.created\",\"data\":{}}\n"),
		"large":            []byte(strings.Repeat(`{"padding":"xxxxxxxx"}`, 4096)),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			v := NewVerifier(secret, WithClock(fixedClock(ts)))

			header := Sign(secret, "msg_1", ts, body)
			if err := v.Verify("msg_1", "1700000000", header, body); err != nil {
				t.Errorf("Verify() = %v, want nil", err)
			}
		})
	}
}

func TestVerifier_Verify_AlteredInputs(t *testing.T) {
	secret := testSecret(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	const ts = int64(1700000000)

	header := Sign(secret, "msg_1", ts, body)
	v := NewVerifier(secret, WithClock(fixedClock(ts)))

	tests := []struct {
		name    string
		msgID   string
		tsHdr   string
		body    []byte
		wantErr error
	}{
		{
			name:    "altered message id",
			msgID:   "msg_2",
			tsHdr:   "1700000000",
			body:    body,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "altered timestamp inside window",
			msgID:   "msg_1",
			tsHdr:   "1700000010",
			body:    body,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "altered body",
			msgID:   "msg_1",
			tsHdr:   "1700000000",
			body:    []byte(`{"type":"user.created","data":{"id":"user_2"}}`),
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "truncated body",
			msgID:   "msg_1",
			tsHdr:   "1700000000",
			body:    body[:len(body)-1],
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "replayed outside the window",
			msgID:   "msg_1",
			tsHdr:   "1700000301",
			body:    body,
			wantErr: ErrReplayWindowExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.msgID, tt.tsHdr, header, tt.body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
