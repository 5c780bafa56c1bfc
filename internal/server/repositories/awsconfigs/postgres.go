package awsconfigs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/dbx"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
)

// PostgresRepository implements AWS config storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.AWSConfig, error) {
	query :=
		`SELECT id, user_id, access_key, secret_key, region, bucket_name,
		        encryption_method, kms_key_id, custom_key, created_at, updated_at
		 FROM aws_configs
		 WHERE user_id = $1
		 `

	cfg := &models.AWSConfig{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cfg.ID, &cfg.UserID, &cfg.AccessKey, &cfg.SecretKey, &cfg.Region, &cfg.BucketName,
		&cfg.Method, &cfg.KMSKeyID, &cfg.CustomKey, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cfg, nil
}

func (r *PostgresRepository) CreateDefault(ctx context.Context, userID string) error {
	query :=
		`INSERT INTO aws_configs (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertCredentials(ctx context.Context, userID, accessKeyToken, secretKeyToken, region, bucketName string) error {
	query :=
		`INSERT INTO aws_configs (user_id, access_key, secret_key, region, bucket_name)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id)
		 DO UPDATE SET
		 	access_key = EXCLUDED.access_key,
		 	secret_key = EXCLUDED.secret_key,
		 	region = EXCLUDED.region,
		 	bucket_name = EXCLUDED.bucket_name,
		 	updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query, userID, accessKeyToken, secretKeyToken, region, bucketName)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateEncryption(ctx context.Context, userID string, method models.EncryptionMethod, kmsKeyIDToken, customKeyToken *string) error {
	query :=
		`UPDATE aws_configs
		 SET encryption_method = $2, kms_key_id = $3, custom_key = $4, updated_at = now()
		 WHERE user_id = $1
		 `

	result, err := r.db.ExecContext(ctx, query, userID, string(method), kmsKeyIDToken, customKeyToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
