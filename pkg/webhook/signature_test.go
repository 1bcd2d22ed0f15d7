package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/pkg/webhook"
)

const secret = "whsec_test_secret"

var payload = []byte(`{"event_type":"subscription.created","data":{"id":"sub_1"}}`)

func TestComputeSignature(t *testing.T) {
	t.Parallel()

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("1700000000."))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, webhook.ComputeSignature(secret, 1700000000, payload))
}

func TestSign(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0)

	t.Run("formats header", func(t *testing.T) {
		t.Parallel()
		header, err := webhook.Sign(secret, payload, at)
		require.NoError(t, err)
		assert.Equal(t, "t=1700000000,v1="+webhook.ComputeSignature(secret, 1700000000, payload), header)
	})

	t.Run("requires secret", func(t *testing.T) {
		t.Parallel()
		_, err := webhook.Sign("", payload, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidConfiguration)
	})

	t.Run("requires payload", func(t *testing.T) {
		t.Parallel()
		_, err := webhook.Sign(secret, nil, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidPayload)
	})
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    webhook.SignatureHeader
		wantErr bool
	}{
		{
			name:   "single signature",
			header: "t=1700000000,v1=abc",
			want:   webhook.SignatureHeader{Timestamp: 1700000000, Signatures: []string{"abc"}},
		},
		{
			name:   "multiple signatures and unknown keys",
			header: "t=1700000000, v1=abc, v0=legacy, v1=def",
			want:   webhook.SignatureHeader{Timestamp: 1700000000, Signatures: []string{"abc", "def"}},
		},
		{name: "empty", header: "", wantErr: true},
		{name: "no timestamp", header: "v1=abc", wantErr: true},
		{name: "no signature", header: "t=1700000000", wantErr: true},
		{name: "bad timestamp", header: "t=soon,v1=abc", wantErr: true},
		{name: "missing equals", header: "t1700000000,v1=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := webhook.ParseHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, webhook.ErrMalformedHeader)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyAt(t *testing.T) {
	t.Parallel()

	signedAt := time.Unix(1700000000, 0)
	header, err := webhook.Sign(secret, payload, signedAt)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, webhook.VerifyAt(secret, payload, header, webhook.DefaultTolerance, signedAt.Add(time.Minute)))
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		tampered := append([]byte{}, payload...)
		tampered[len(tampered)-2] = 'X'
		err := webhook.VerifyAt(secret, tampered, header, webhook.DefaultTolerance, signedAt)
		assert.ErrorIs(t, err, webhook.ErrSignatureMismatch)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		err := webhook.VerifyAt("other", payload, header, webhook.DefaultTolerance, signedAt)
		assert.ErrorIs(t, err, webhook.ErrSignatureMismatch)
	})

	t.Run("too old", func(t *testing.T) {
		t.Parallel()
		err := webhook.VerifyAt(secret, payload, header, webhook.DefaultTolerance, signedAt.Add(10*time.Minute))
		assert.ErrorIs(t, err, webhook.ErrTimestampOutOfRange)
	})

	t.Run("from the future", func(t *testing.T) {
		t.Parallel()
		err := webhook.VerifyAt(secret, payload, header, webhook.DefaultTolerance, signedAt.Add(-2*time.Minute))
		assert.ErrorIs(t, err, webhook.ErrTimestampOutOfRange)
	})

	t.Run("zero tolerance skips age check", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, webhook.VerifyAt(secret, payload, header, 0, signedAt.Add(24*time.Hour)))
	})

	t.Run("any rotated signature matches", func(t *testing.T) {
		t.Parallel()
		rotated := webhook.SignatureHeader{
			Timestamp:  signedAt.Unix(),
			Signatures: []string{webhook.ComputeSignature("old", signedAt.Unix(), payload), webhook.ComputeSignature(secret, signedAt.Unix(), payload)},
		}.String()
		assert.NoError(t, webhook.VerifyAt(secret, payload, rotated, webhook.DefaultTolerance, signedAt))
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()
		err := webhook.VerifyAt(secret, payload, "garbage", webhook.DefaultTolerance, signedAt)
		assert.ErrorIs(t, err, webhook.ErrMalformedHeader)
	})

	t.Run("uses wall clock", func(t *testing.T) {
		t.Parallel()
		fresh, err := webhook.Sign(secret, payload, time.Now())
		require.NoError(t, err)
		assert.NoError(t, webhook.Verify(secret, payload, fresh, webhook.DefaultTolerance))
	})
}
