// Package storage defines the object-storage collaborator boundary: a
// capability-typed interface over put/get/list with optional server-side
// encryption parameters, plus an AWS S3 implementation.
package storage

import "context"

// Credentials are per-user plaintext connection parameters. They exist only
// for the duration of a request; nothing in this package persists them.
type Credentials struct {
	AccessKey string
	SecretKey string
	Region    string
}

// EncryptionParams carries the server-side encryption headers for a single
// put or get. A nil *EncryptionParams means no SSE headers at all.
//
// For SSE-S3 only ServerSideEncryption ("AES256") is set. For SSE-KMS,
// ServerSideEncryption is "aws:kms" and KMSKeyID names the key. For SSE-C,
// the Customer* triple is set and CustomerKeyMD5 is the base64-encoded MD5
// of the raw key, proving key possession to the provider.
type EncryptionParams struct {
	ServerSideEncryption string
	KMSKeyID             string
	CustomerAlgorithm    string
	CustomerKey          string
	CustomerKeyMD5       string
}

// ObjectStore is the remote object-storage service.
//
// ListObjects and ListBuckets exist only as cheap credential probes: the
// first validates access to a concrete bucket, the second validates the
// credentials themselves.
type ObjectStore interface {
	PutObject(ctx context.Context, creds Credentials, bucket, key string, body []byte, contentType string, enc *EncryptionParams) error
	GetObject(ctx context.Context, creds Credentials, bucket, key string, enc *EncryptionParams) ([]byte, error)
	ListObjects(ctx context.Context, creds Credentials, bucket string) error
	ListBuckets(ctx context.Context, creds Credentials) error
}
