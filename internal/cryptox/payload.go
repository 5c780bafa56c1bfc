package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/s3vault/internal/common"
)

// Payload blob layout:
//
//	magic "SVP1" (4 bytes) | salt (16 bytes) | nonce (12 bytes) | AES-256-GCM ciphertext
//
// The per-blob key is derived from the configured passphrase with
// argon2id(passphrase, salt, t=1, m=64MiB, p=4) -> 32 bytes. Everything
// needed for decryption except the passphrase travels inside the blob.
const (
	payloadMagic   = "SVP1"
	payloadSaltLen = 16
	payloadKeyLen  = 32
)

// PayloadCodec encrypts and decrypts arbitrary file bytes before and after
// transit to object storage. It is independent of SecretCodec and uses its
// own passphrase.
type PayloadCodec struct {
	passphrase []byte
}

// NewPayloadCodec constructs a codec for the given passphrase. An empty
// passphrase is rejected: running without payload encryption must be an
// explicit decision, not a missing config value.
func NewPayloadCodec(passphrase string) (*PayloadCodec, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("payload passphrase must not be empty")
	}
	return &PayloadCodec{passphrase: []byte(passphrase)}, nil
}

func (c *PayloadCodec) deriveKey(salt []byte) []byte {
	return argon2.IDKey(c.passphrase, salt, 1, 64*1024, 4, payloadKeyLen)
}

// Seal encrypts data into a self-describing blob. Handles any byte content,
// including empty input.
func (c *PayloadCodec) Seal(data []byte) ([]byte, error) {
	salt := make([]byte, payloadSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt generation failed: %w", err)
	}

	block, err := aes.NewCipher(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce generation failed: %w", err)
	}

	blob := make([]byte, 0, len(payloadMagic)+len(salt)+len(nonce)+len(data)+aesgcm.Overhead())
	blob = append(blob, payloadMagic...)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aesgcm.Seal(blob, nonce, data, nil)
	return blob, nil
}

// Open decrypts a blob produced by Seal. Truncated, foreign, or tampered
// input returns common.ErrPayloadDecrypt, which callers surface separately
// from storage connectivity errors.
func (c *PayloadCodec) Open(blob []byte) ([]byte, error) {
	headerLen := len(payloadMagic) + payloadSaltLen + 12
	if len(blob) < headerLen || string(blob[:len(payloadMagic)]) != payloadMagic {
		return nil, fmt.Errorf("%w: not a payload blob", common.ErrPayloadDecrypt)
	}
	salt := blob[len(payloadMagic) : len(payloadMagic)+payloadSaltLen]

	block, err := aes.NewCipher(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	rest := blob[len(payloadMagic)+payloadSaltLen:]
	if len(rest) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: truncated blob", common.ErrPayloadDecrypt)
	}
	nonce, ct := rest[:aesgcm.NonceSize()], rest[aesgcm.NonceSize():]

	data, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPayloadDecrypt, err)
	}
	return data, nil
}
