// Package cryptox implements the two ciphers used by s3vault: a SecretCodec
// for short secret strings stored in the database (AES-256-CBC with an
// explicit per-call IV) and a PayloadCodec for file contents in transit to
// object storage (passphrase-derived AES-256-GCM).
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/s3vault/internal/common"
)

const (
	secretKeyLen = 32
	ivLen        = aes.BlockSize
)

// SecretCodec encrypts and decrypts short secret strings (cloud credentials,
// KMS key ids, customer keys) with a single process-wide 32-byte key.
// Tokens have the form hex(iv) + ":" + hex(ciphertext). A fresh random IV is
// drawn for every Encrypt call, so encrypting the same plaintext twice
// produces different tokens.
type SecretCodec struct {
	key []byte
}

// NewSecretCodec decodes the base64-encoded master key and validates its
// length. The decoded key must be exactly 32 bytes; anything else is a
// configuration error and the caller is expected to refuse to start.
func NewSecretCodec(base64Key string) (*SecretCodec, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid base64: %w", err)
	}
	if len(key) != secretKeyLen {
		return nil, fmt.Errorf("master key must be %d bytes after decoding, got %d", secretKeyLen, len(key))
	}
	return &SecretCodec{key: key}, nil
}

// Encrypt encrypts plaintext under a fresh random IV and returns the token
// hex(iv):hex(ciphertext).
func (c *SecretCodec) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("iv generation failed: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Malformed tokens (missing separator, invalid
// hex, wrong block alignment, bad padding) return common.ErrDecode.
func (c *SecretCodec) Decrypt(token string) (string, error) {
	ivHex, ctHex, found := strings.Cut(token, ":")
	if !found {
		return "", fmt.Errorf("%w: missing separator", common.ErrDecode)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	if len(iv) != ivLen {
		return "", fmt.Errorf("%w: iv must be %d bytes", common.ErrDecode, ivLen)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block-aligned", common.ErrDecode)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	unpadded, err := pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
