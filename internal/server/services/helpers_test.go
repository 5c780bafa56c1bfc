package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/cryptox"
	"github.com/dmitrijs2005/s3vault/internal/dbx"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
	awsconfigsrepo "github.com/dmitrijs2005/s3vault/internal/server/repositories/awsconfigs"
	filemetadatarepo "github.com/dmitrijs2005/s3vault/internal/server/repositories/filemetadata"
	refreshtokensrepo "github.com/dmitrijs2005/s3vault/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/s3vault/internal/server/repositories/users"
	"github.com/dmitrijs2005/s3vault/internal/server/storage"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newSecretCodec(t *testing.T) *cryptox.SecretCodec {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	c, err := cryptox.NewSecretCodec(key)
	require.NoError(t, err)
	return c
}

func newPayloadCodec(t *testing.T) *cryptox.PayloadCodec {
	t.Helper()
	c, err := cryptox.NewPayloadCodec("test-passphrase")
	require.NoError(t, err)
	return c
}

func strptr(s string) *string { return &s }

// completeConfig builds a configured AWSConfig with encrypted credentials.
func completeConfig(t *testing.T, codec *cryptox.SecretCodec, userID string, method models.EncryptionMethod) *models.AWSConfig {
	t.Helper()
	accessKey, err := codec.Encrypt("AKIA-TEST")
	require.NoError(t, err)
	secretKey, err := codec.Encrypt("secret-test")
	require.NoError(t, err)
	return &models.AWSConfig{
		ID:         "cfg-1",
		UserID:     userID,
		AccessKey:  &accessKey,
		SecretKey:  &secretKey,
		Region:     strptr("eu-west-1"),
		BucketName: strptr("test-bucket"),
		Method:     method,
	}
}

// --- fake repositories ---

type fakeAWSConfigRepo struct {
	cfg *models.AWSConfig

	getCalls           int
	createDefaultCalls int
	upsertCalls        int
	updateCalls        int

	lastUpsertAccessKey string
	lastUpsertSecretKey string
	lastUpsertRegion    string
	lastUpsertBucket    string

	lastUpdateMethod models.EncryptionMethod
	lastUpdateKMS    *string
	lastUpdateCustom *string
}

func (f *fakeAWSConfigRepo) Get(ctx context.Context, userID string) (*models.AWSConfig, error) {
	f.getCalls++
	if f.cfg == nil {
		return nil, common.ErrNotFound
	}
	return f.cfg, nil
}

func (f *fakeAWSConfigRepo) CreateDefault(ctx context.Context, userID string) error {
	f.createDefaultCalls++
	if f.cfg == nil {
		f.cfg = &models.AWSConfig{ID: "cfg-1", UserID: userID, Method: models.MethodAWSManaged}
	}
	return nil
}

func (f *fakeAWSConfigRepo) UpsertCredentials(ctx context.Context, userID, accessKeyToken, secretKeyToken, region, bucketName string) error {
	f.upsertCalls++
	f.lastUpsertAccessKey = accessKeyToken
	f.lastUpsertSecretKey = secretKeyToken
	f.lastUpsertRegion = region
	f.lastUpsertBucket = bucketName
	return nil
}

func (f *fakeAWSConfigRepo) UpdateEncryption(ctx context.Context, userID string, method models.EncryptionMethod, kmsKeyIDToken, customKeyToken *string) error {
	f.updateCalls++
	f.lastUpdateMethod = method
	f.lastUpdateKMS = kmsKeyIDToken
	f.lastUpdateCustom = customKeyToken
	return nil
}

type fakeFileMetaRepo struct {
	rows []*models.FileMetadata

	createCalls int
	createErr   error
	listErr     error
}

func (f *fakeFileMetaRepo) Create(ctx context.Context, meta *models.FileMetadata) (*models.FileMetadata, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	meta.ID = "meta-1"
	f.rows = append(f.rows, meta)
	return meta, nil
}

func (f *fakeFileMetaRepo) GetByKey(ctx context.Context, key string) (*models.FileMetadata, error) {
	for _, row := range f.rows {
		if row.Key == key {
			return row, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeFileMetaRepo) ListByUser(ctx context.Context, userID string) ([]*models.FileMetadata, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []*models.FileMetadata
	for _, row := range f.rows {
		if row.UserID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error

	createCalls int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.createCalls++
	return f.createErr
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	return f.delErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	a  *fakeAWSConfigRepo
	fm *fakeFileMetaRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) AWSConfigs(db dbx.DBTX) awsconfigsrepo.Repository { return m.a }
func (m *fakeRepoManager) FileMetadata(db dbx.DBTX) filemetadatarepo.Repository {
	return m.fm
}

// --- fake object store ---

type putCall struct {
	creds       storage.Credentials
	bucket      string
	key         string
	body        []byte
	contentType string
	enc         *storage.EncryptionParams
}

type getCall struct {
	creds  storage.Credentials
	bucket string
	key    string
	enc    *storage.EncryptionParams
}

type fakeObjectStore struct {
	putErr         error
	getErr         error
	listObjectsErr error
	listBucketsErr error

	getBody []byte

	putCalls         []putCall
	getCalls         []getCall
	listObjectsCalls int
	listBucketsCalls int
}

func (f *fakeObjectStore) PutObject(ctx context.Context, creds storage.Credentials, bucket, key string, body []byte, contentType string, enc *storage.EncryptionParams) error {
	f.putCalls = append(f.putCalls, putCall{creds: creds, bucket: bucket, key: key, body: body, contentType: contentType, enc: enc})
	return f.putErr
}

func (f *fakeObjectStore) GetObject(ctx context.Context, creds storage.Credentials, bucket, key string, enc *storage.EncryptionParams) ([]byte, error) {
	f.getCalls = append(f.getCalls, getCall{creds: creds, bucket: bucket, key: key, enc: enc})
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getBody, nil
}

func (f *fakeObjectStore) ListObjects(ctx context.Context, creds storage.Credentials, bucket string) error {
	f.listObjectsCalls++
	return f.listObjectsErr
}

func (f *fakeObjectStore) ListBuckets(ctx context.Context, creds storage.Credentials) error {
	f.listBucketsCalls++
	return f.listBucketsErr
}
