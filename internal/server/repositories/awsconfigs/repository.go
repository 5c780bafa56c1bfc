package awsconfigs

import (
	"context"

	"github.com/dmitrijs2005/s3vault/internal/server/models"
)

type Repository interface {
	// Get returns the config row for userID or common.ErrNotFound.
	Get(ctx context.Context, userID string) (*models.AWSConfig, error)

	// CreateDefault inserts an empty config row for userID. Inserting when a
	// row already exists is a no-op (idempotent).
	CreateDefault(ctx context.Context, userID string) error

	// UpsertCredentials stores encrypted credential tokens and plaintext
	// connection parameters, creating the row if needed.
	UpsertCredentials(ctx context.Context, userID, accessKeyToken, secretKeyToken, region, bucketName string) error

	// UpdateEncryption sets the encryption method and secret tokens. A nil
	// token clears the corresponding column.
	UpdateEncryption(ctx context.Context, userID string, method models.EncryptionMethod, kmsKeyIDToken, customKeyToken *string) error
}
