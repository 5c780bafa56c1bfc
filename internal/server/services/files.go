package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/cryptox"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/s3vault/internal/server/storage"
)

// timeNow is a seam for deterministic storage keys in tests.
var timeNow = time.Now

// FileService orchestrates uploads and downloads: payload encryption,
// encryption-parameter resolution, object-storage I/O, and the metadata
// record.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	secrets     *cryptox.SecretCodec
	payloads    *cryptox.PayloadCodec
}

// NewFileService constructs a FileService.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, secrets *cryptox.SecretCodec, payloads *cryptox.PayloadCodec) *FileService {
	return &FileService{db: db, repomanager: m, store: store, secrets: secrets, payloads: payloads}
}

// FileListItem is a display-safe listing row. It never carries decrypted
// secrets or object bytes.
type FileListItem struct {
	FileName string                  `json:"fileName"`
	Key      string                  `json:"key"`
	Method   models.EncryptionMethod `json:"method"`
}

// loadCompleteConfig returns the user's config, requiring all connection
// parameters to be present.
func (s *FileService) loadCompleteConfig(ctx context.Context, userID string) (*models.AWSConfig, error) {
	cfg, err := s.repomanager.AWSConfigs(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrConfigNotFound
		}
		return nil, err
	}
	if !cfg.Complete() {
		return nil, common.ErrConfigIncomplete
	}
	return cfg, nil
}

// connection decrypts the stored credential tokens into per-request storage
// credentials.
func (s *FileService) connection(cfg *models.AWSConfig) (storage.Credentials, string, error) {
	accessKey, err := s.secrets.Decrypt(*cfg.AccessKey)
	if err != nil {
		return storage.Credentials{}, "", err
	}
	secretKey, err := s.secrets.Decrypt(*cfg.SecretKey)
	if err != nil {
		return storage.Credentials{}, "", err
	}
	creds := storage.Credentials{AccessKey: accessKey, SecretKey: secretKey, Region: *cfg.Region}
	return creds, *cfg.BucketName, nil
}

// deriveStorageKey builds a content-addressed object key from the file name
// and the current time. The timestamp decouples the key from the
// user-controlled name and makes repeated uploads of the same file distinct.
func deriveStorageKey(fileName string) string {
	sum := sha256.Sum256([]byte(fileName + strconv.FormatInt(timeNow().UnixMilli(), 10)))
	return hex.EncodeToString(sum[:])
}

// Upload encrypts data, stores it under a derived key with the encryption
// parameters of the user's current method, and records metadata. The
// metadata row is written only after the storage put succeeds, so a failed
// upload never leaves metadata behind (a stored object without metadata is
// possible if the final insert fails).
func (s *FileService) Upload(ctx context.Context, userID string, data []byte, fileName, contentType string) (string, error) {
	cfg, err := s.loadCompleteConfig(ctx, userID)
	if err != nil {
		return "", err
	}

	creds, bucket, err := s.connection(cfg)
	if err != nil {
		return "", err
	}

	sealed, err := s.payloads.Seal(data)
	if err != nil {
		return "", err
	}

	key := deriveStorageKey(fileName)

	params, err := ResolveEncryptionParams(cfg, cfg.Method, s.secrets)
	if err != nil {
		return "", err
	}

	if err := s.store.PutObject(ctx, creds, bucket, key, sealed, contentType, params); err != nil {
		return "", err
	}

	meta := &models.FileMetadata{
		UserID:   userID,
		Key:      key,
		FileName: fileName,
		Method:   cfg.Method,
	}
	if _, err := s.repomanager.FileMetadata(s.db).Create(ctx, meta); err != nil {
		return "", fmt.Errorf("error creating file metadata: %w", err)
	}

	return key, nil
}

// Download retrieves and decrypts the object stored under key. Request
// encryption parameters follow the method frozen on the metadata row, not
// the user's current setting, so objects stored under an abandoned method
// stay retrievable. Only SSE-C needs key material on a get; SSE-S3 and
// SSE-KMS objects decrypt server-side without any request headers, even
// when the stored kms key id has since been cleared.
func (s *FileService) Download(ctx context.Context, userID string, key string) ([]byte, string, error) {
	cfg, err := s.loadCompleteConfig(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	meta, err := s.repomanager.FileMetadata(s.db).GetByKey(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if meta.UserID != userID {
		return nil, "", common.ErrNotFound
	}

	creds, bucket, err := s.connection(cfg)
	if err != nil {
		return nil, "", err
	}

	var params *storage.EncryptionParams
	if meta.Method == models.MethodCustom {
		params, err = ResolveEncryptionParams(cfg, meta.Method, s.secrets)
		if err != nil {
			return nil, "", err
		}
	}

	sealed, err := s.store.GetObject(ctx, creds, bucket, key, params)
	if err != nil {
		return nil, "", err
	}

	data, err := s.payloads.Open(sealed)
	if err != nil {
		return nil, "", err
	}

	return data, meta.FileName, nil
}

// List returns display-safe rows for all of the user's uploaded files.
func (s *FileService) List(ctx context.Context, userID string) ([]FileListItem, error) {
	if _, err := s.loadCompleteConfig(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.repomanager.FileMetadata(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]FileListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, FileListItem{FileName: row.FileName, Key: row.Key, Method: row.Method})
	}
	return items, nil
}
