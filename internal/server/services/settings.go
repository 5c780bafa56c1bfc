package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/cryptox"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/s3vault/internal/server/storage"
)

// SettingsService manages per-user cloud credentials and encryption
// configuration. Secrets are encrypted with the injected SecretCodec before
// they ever reach the repository; plaintext credentials live only for the
// duration of a call.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	codec       *cryptox.SecretCodec
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, codec *cryptox.SecretCodec) *SettingsService {
	return &SettingsService{db: db, repomanager: m, store: store, codec: codec}
}

// EnsureDefaultConfig creates an empty AWSConfig row for the user if none
// exists and returns the row. Calling it again is a no-op.
func (s *SettingsService) EnsureDefaultConfig(ctx context.Context, userID string) (*models.AWSConfig, error) {
	repo := s.repomanager.AWSConfigs(s.db)

	cfg, err := repo.Get(ctx, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if err := repo.CreateDefault(ctx, userID); err != nil {
		return nil, err
	}
	return repo.Get(ctx, userID)
}

// TestConnection probes the storage provider with the supplied plaintext
// credentials. Nothing is persisted; failure is reported as ErrValidation.
func (s *SettingsService) TestConnection(ctx context.Context, accessKey, secretKey, region string) error {
	creds := storage.Credentials{AccessKey: accessKey, SecretKey: secretKey, Region: region}
	if err := s.store.ListBuckets(ctx, creds); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// SaveCredentials validates the supplied credentials with a real listing
// call against the target bucket, then encrypts both keys (each under its
// own IV) and upserts the row. On validation failure nothing is persisted.
func (s *SettingsService) SaveCredentials(ctx context.Context, userID, accessKey, secretKey, region, bucketName string) error {
	creds := storage.Credentials{AccessKey: accessKey, SecretKey: secretKey, Region: region}
	if err := s.store.ListObjects(ctx, creds, bucketName); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	accessKeyToken, err := s.codec.Encrypt(accessKey)
	if err != nil {
		return err
	}
	secretKeyToken, err := s.codec.Encrypt(secretKey)
	if err != nil {
		return err
	}

	repo := s.repomanager.AWSConfigs(s.db)
	return repo.UpsertCredentials(ctx, userID, accessKeyToken, secretKeyToken, region, bucketName)
}

// SaveEncryptionMethod updates the user's encryption method and the
// associated secrets. Requires an existing config row.
//
// Re-encryption policy per secret field: a supplied value that matches the
// stored ciphertext token verbatim, or that matches the stored plaintext
// after decryption, keeps the stored token unchanged; any other value is
// encrypted anew. A field that is not supplied at all is cleared. The
// clearing is not gated by the method being set, so a caller that omits
// both secrets while selecting awsKms or custom wipes them.
func (s *SettingsService) SaveEncryptionMethod(ctx context.Context, userID string, method models.EncryptionMethod, kmsKeyID, customKey *string) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unknown encryption method %q", common.ErrValidation, method)
	}

	repo := s.repomanager.AWSConfigs(s.db)

	existing, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrConfigNotFound
		}
		return err
	}

	kmsToken, err := s.secretToken(kmsKeyID, existing.KMSKeyID)
	if err != nil {
		return err
	}
	customToken, err := s.secretToken(customKey, existing.CustomKey)
	if err != nil {
		return err
	}

	return repo.UpdateEncryption(ctx, userID, method, kmsToken, customToken)
}

// secretToken decides whether a supplied secret needs (re-)encryption.
// Returns nil when the field should be cleared.
func (s *SettingsService) secretToken(supplied, stored *string) (*string, error) {
	if supplied == nil {
		return nil, nil
	}
	if stored != nil {
		// Caller passed back the token it was shown earlier.
		if *supplied == *stored {
			return stored, nil
		}
		// Caller passed the unchanged plaintext.
		if plaintext, err := s.codec.Decrypt(*stored); err == nil && plaintext == *supplied {
			return stored, nil
		}
	}
	token, err := s.codec.Encrypt(*supplied)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
