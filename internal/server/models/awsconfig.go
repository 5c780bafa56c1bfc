package models

import "time"

// EncryptionMethod selects how S3 encrypts a stored object. The values are
// wire/database values and must not be renamed.
type EncryptionMethod string

const (
	// MethodAWSManaged is SSE-S3: the provider owns the key.
	MethodAWSManaged EncryptionMethod = "awsManaged"
	// MethodAWSKMS is SSE-KMS: encryption under a user-chosen KMS key.
	MethodAWSKMS EncryptionMethod = "awsKms"
	// MethodCustom is SSE-C: the user supplies the raw key on every request.
	MethodCustom EncryptionMethod = "custom"
)

// Valid reports whether m is one of the three known methods.
func (m EncryptionMethod) Valid() bool {
	switch m {
	case MethodAWSManaged, MethodAWSKMS, MethodCustom:
		return true
	}
	return false
}

// AWSConfig holds one user's bucket connection settings and encryption
// choice. AccessKey, SecretKey, KMSKeyID and CustomKey contain SecretCodec
// ciphertext tokens, never plaintext. A config is "complete" when all four
// connection fields are present; otherwise every storage operation fails
// fast.
//
// Exactly one of KMSKeyID/CustomKey is meaningful at a time, gated by
// Method. SaveEncryptionMethod clears whichever secret is not supplied.
type AWSConfig struct {
	ID         string
	UserID     string
	AccessKey  *string
	SecretKey  *string
	Region     *string
	BucketName *string
	Method     EncryptionMethod
	KMSKeyID   *string
	CustomKey  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Complete reports whether all connection parameters required for storage
// access are present.
func (c *AWSConfig) Complete() bool {
	return c.AccessKey != nil && c.SecretKey != nil && c.Region != nil && c.BucketName != nil
}
