package filemetadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/dbx"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). Rows are created at successful upload and never
// mutated afterwards.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, meta *models.FileMetadata) (*models.FileMetadata, error) {
	query :=
		`INSERT INTO file_metadata (user_id, key, file_name, encryption_method)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		meta.UserID, meta.Key, meta.FileName, string(meta.Method)).Scan(&meta.ID, &meta.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return meta, nil
}

func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*models.FileMetadata, error) {
	query :=
		`SELECT id, user_id, key, file_name, encryption_method, created_at
		 FROM file_metadata
		 WHERE key = $1
		 `

	meta := &models.FileMetadata{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&meta.ID, &meta.UserID, &meta.Key, &meta.FileName, &meta.Method, &meta.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return meta, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.FileMetadata, error) {
	query :=
		`SELECT id, user_id, key, file_name, encryption_method, created_at
		 FROM file_metadata
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select file metadata: %w", err)
	}
	defer rows.Close()

	var result []*models.FileMetadata
	for rows.Next() {
		var item models.FileMetadata
		if err := rows.Scan(&item.ID, &item.UserID, &item.Key, &item.FileName, &item.Method, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
