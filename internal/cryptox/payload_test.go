package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/s3vault/internal/common"
)

func testPayloadCodec(t *testing.T) *PayloadCodec {
	t.Helper()
	c, err := NewPayloadCodec("correct horse battery staple")
	require.NoError(t, err)
	return c
}

func TestNewPayloadCodec_EmptyPassphrase(t *testing.T) {
	_, err := NewPayloadCodec("")
	assert.Error(t, err)
}

func TestPayloadCodec_RoundTrip(t *testing.T) {
	c := testPayloadCodec(t)

	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello")},
		{"all byte values", allBytes},
		{"zeros", make([]byte, 1024)},
		{"non-utf8", []byte{0xff, 0xfe, 0x00, 0x80, 0xc3, 0x28}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Seal(tt.data)
			require.NoError(t, err)
			assert.False(t, bytes.Contains(blob, tt.data) && len(tt.data) > 4)

			got, err := c.Open(blob)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, got))
		})
	}
}

func TestPayloadCodec_BlobIsSelfDescribing(t *testing.T) {
	c := testPayloadCodec(t)

	blob, err := c.Seal([]byte("data"))
	require.NoError(t, err)

	assert.Equal(t, []byte(payloadMagic), blob[:4])

	// Same passphrase in a fresh codec must suffice to decrypt.
	c2, err := NewPayloadCodec("correct horse battery staple")
	require.NoError(t, err)
	got, err := c2.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestPayloadCodec_OpenFailures(t *testing.T) {
	c := testPayloadCodec(t)

	blob, err := c.Seal([]byte("some payload"))
	require.NoError(t, err)

	t.Run("wrong passphrase", func(t *testing.T) {
		other, err := NewPayloadCodec("a different passphrase")
		require.NoError(t, err)
		_, err = other.Open(blob)
		assert.ErrorIs(t, err, common.ErrPayloadDecrypt)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		bad := bytes.Clone(blob)
		bad[len(bad)-1] ^= 0x01
		_, err := c.Open(bad)
		assert.ErrorIs(t, err, common.ErrPayloadDecrypt)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := c.Open(blob[:10])
		assert.ErrorIs(t, err, common.ErrPayloadDecrypt)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := bytes.Clone(blob)
		copy(bad, "XXXX")
		_, err := c.Open(bad)
		assert.ErrorIs(t, err, common.ErrPayloadDecrypt)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := c.Open(nil)
		assert.ErrorIs(t, err, common.ErrPayloadDecrypt)
	})
}
