package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the maximum accepted age of a signature.
const DefaultTolerance = 5 * time.Minute

// futureSkew is how far ahead of the local clock a timestamp may be.
const futureSkew = time.Minute

// SignatureHeader is the parsed form of a signature header value.
type SignatureHeader struct {
	Timestamp  int64
	Signatures []string
}

// String formats the header as t=<unix>,v1=<hex>[,v1=<hex>...].
func (h SignatureHeader) String() string {
	var b strings.Builder
	b.WriteString("t=")
	b.WriteString(strconv.FormatInt(h.Timestamp, 10))
	for _, sig := range h.Signatures {
		b.WriteString(",v1=")
		b.WriteString(sig)
	}
	return b.String()
}

// ComputeSignature returns hex(HMAC-SHA256(secret, timestamp + "." + payload)).
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(timestamp, 10)))
	h.Write([]byte("."))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Sign produces a header value for payload signed at the given time.
func Sign(secret string, payload []byte, at time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	ts := at.Unix()
	return SignatureHeader{
		Timestamp:  ts,
		Signatures: []string{ComputeSignature(secret, ts, payload)},
	}.String(), nil
}

// ParseHeader parses a t=<unix>,v1=<hex> header value. Unknown keys are ignored.
func ParseHeader(value string) (SignatureHeader, error) {
	var h SignatureHeader
	for _, part := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return SignatureHeader{}, fmt.Errorf("%w: %q", ErrMalformedHeader, part)
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return SignatureHeader{}, fmt.Errorf("%w: invalid timestamp", ErrMalformedHeader)
			}
			h.Timestamp = ts
		case "v1":
			if v != "" {
				h.Signatures = append(h.Signatures, v)
			}
		}
	}

	if h.Timestamp == 0 || len(h.Signatures) == 0 {
		return SignatureHeader{}, fmt.Errorf("%w: timestamp and signature are required", ErrMalformedHeader)
	}
	return h, nil
}

// Verify checks header against payload using the current time.
func Verify(secret string, payload []byte, header string, tolerance time.Duration) error {
	return VerifyAt(secret, payload, header, tolerance, time.Now())
}

// VerifyAt checks header against payload as of now.
// A zero tolerance disables the timestamp window check.
func VerifyAt(secret string, payload []byte, header string, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	h, err := ParseHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(h.Timestamp, 0))
		if age > tolerance || age < -futureSkew {
			return fmt.Errorf("%w: age %v", ErrTimestampOutOfRange, age)
		}
	}

	expected := []byte(ComputeSignature(secret, h.Timestamp, payload))
	for _, sig := range h.Signatures {
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return ErrSignatureMismatch
}
