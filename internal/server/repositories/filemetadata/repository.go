package filemetadata

import (
	"context"

	"github.com/dmitrijs2005/s3vault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, meta *models.FileMetadata) (*models.FileMetadata, error)
	GetByKey(ctx context.Context, key string) (*models.FileMetadata, error)
	ListByUser(ctx context.Context, userID string) ([]*models.FileMetadata, error)
}
