package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/s3vault/internal/dbx"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/awsconfigs"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/filemetadata"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/s3vault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	AWSConfigs(db dbx.DBTX) awsconfigs.Repository
	FileMetadata(db dbx.DBTX) filemetadata.Repository
}
