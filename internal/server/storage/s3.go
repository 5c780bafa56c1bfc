package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/s3vault/internal/common"
)

// Seams for testing the AWS SDK calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store talks to AWS S3 (or an S3-compatible endpoint) with per-user
// static credentials. A client is built per call because every user brings
// their own credentials and region; no client state is shared across
// requests.
type S3Store struct {
	// BaseEndpoint overrides the S3 endpoint for S3-compatible backends
	// (e.g. MinIO). Empty means real AWS.
	BaseEndpoint string
}

// NewS3Store constructs an S3Store. baseEndpoint may be empty.
func NewS3Store(baseEndpoint string) *S3Store {
	return &S3Store{BaseEndpoint: baseEndpoint}
}

func (s *S3Store) client(ctx context.Context, creds Credentials) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(creds.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKey,
			creds.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	var optFns []func(*s3.Options)
	if s.BaseEndpoint != "" {
		endpoint := s.BaseEndpoint
		optFns = append(optFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return newS3ClientFromConfig(cfg, optFns...), nil
}

func (s *S3Store) PutObject(ctx context.Context, creds Credentials, bucket, key string, body []byte, contentType string, enc *EncryptionParams) error {
	client, err := s.client(ctx, creds)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if enc != nil {
		if enc.ServerSideEncryption != "" {
			input.ServerSideEncryption = types.ServerSideEncryption(enc.ServerSideEncryption)
		}
		if enc.KMSKeyID != "" {
			input.SSEKMSKeyId = aws.String(enc.KMSKeyID)
		}
		if enc.CustomerAlgorithm != "" {
			input.SSECustomerAlgorithm = aws.String(enc.CustomerAlgorithm)
			input.SSECustomerKey = aws.String(enc.CustomerKey)
			input.SSECustomerKeyMD5 = aws.String(enc.CustomerKeyMD5)
		}
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: put object: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *S3Store) GetObject(ctx context.Context, creds Credentials, bucket, key string, enc *EncryptionParams) ([]byte, error) {
	client, err := s.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if enc != nil && enc.CustomerAlgorithm != "" {
		input.SSECustomerAlgorithm = aws.String(enc.CustomerAlgorithm)
		input.SSECustomerKey = aws.String(enc.CustomerKey)
		input.SSECustomerKeyMD5 = aws.String(enc.CustomerKeyMD5)
	}

	out, err := client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: get object: %v", common.ErrStorage, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read object body: %v", common.ErrStorage, err)
	}
	return data, nil
}

func (s *S3Store) ListObjects(ctx context.Context, creds Credentials, bucket string) error {
	client, err := s.client(ctx, creds)
	if err != nil {
		return err
	}

	if _, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("%w: list objects: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *S3Store) ListBuckets(ctx context.Context, creds Credentials) error {
	client, err := s.client(ctx, creds)
	if err != nil {
		return err
	}

	if _, err := client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return fmt.Errorf("%w: list buckets: %v", common.ErrStorage, err)
	}
	return nil
}
