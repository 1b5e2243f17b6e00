package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

const s3KeyPrefix = "listings/"

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage implements both IFileUploader and IFileReader on a bucket.
// Photo ids are object keys without the "listings/" prefix.
type S3Storage struct {
	bucket string
	client s3API
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	loadOpts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		loadOpts = append(loadOpts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Storage{bucket: cfg.AwsS3Bucket, client: s3.NewFromConfig(awsCfg)}, nil
}

func (s *S3Storage) IsAuthorized() bool {
	return s.bucket != ""
}

// Upload stores data under listings/{uuid}_{filename} and returns the id part.
func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if !s.IsAuthorized() {
		return "", ErrNotAuthorized
	}
	id := uuid.NewString() + "_" + unsafeKeyChars.ReplaceAllString(filename, "_")
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s3KeyPrefix + id),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ContentTypeFor(filename)),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", filename, err)
	}
	log.Printf("Uploaded %s to s3://%s/%s%s", filename, s.bucket, s3KeyPrefix, id)
	return id, nil
}

func (s *S3Storage) FetchMetadata(ctx context.Context, id string) (*FileMeta, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + id),
	})
	if err != nil {
		return nil, s3Error(id, err)
	}
	meta := &FileMeta{
		ID:       id,
		Name:     id,
		MimeType: aws.ToString(out.ContentType),
		Size:     aws.ToInt64(out.ContentLength),
	}
	if out.LastModified != nil {
		meta.ModifiedTime = *out.LastModified
	}
	return meta, nil
}

func (s *S3Storage) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + id),
	})
	if err != nil {
		return nil, s3Error(id, err)
	}
	return out.Body, nil
}

func s3Error(id string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrFileNotFound, id)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrFileForbidden, id)
		}
	}
	return fmt.Errorf("s3 request for %s: %w", id, err)
}
