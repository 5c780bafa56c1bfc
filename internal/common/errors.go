// Package common defines shared constants and sentinel errors used across
// the layers of s3vault. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// AWS configuration errors.
	ErrConfigNotFound   = errors.New("aws config not found")
	ErrConfigIncomplete = errors.New("aws config is incomplete")

	// Credential validation against the storage provider failed.
	ErrValidation = errors.New("credential validation failed")

	// Crypto errors. ErrDecode covers malformed secret ciphertext tokens;
	// ErrPayloadDecrypt covers failed payload decryption (wrong key or
	// corrupted blob) as opposed to storage connectivity failures.
	ErrDecode         = errors.New("malformed ciphertext token")
	ErrPayloadDecrypt = errors.New("payload decryption failed")

	// Underlying object-storage call failed.
	ErrStorage = errors.New("storage operation failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
