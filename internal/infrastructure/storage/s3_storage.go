package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"soundtrack-server/services/upload-api/internal/config"
	"soundtrack-server/services/upload-api/internal/infrastructure/logger"
	"soundtrack-server/services/upload-api/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("object storage backend is not configured; set S3_* to enable uploads")

// S3Storage handles uploads and downloads to S3-compatible storage.
type S3Storage struct {
	bucket       string
	region       string
	endpoint     string
	usePathStyle bool
	client       *s3.Client
	log          zerolog.Logger
	disabled     bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	componentLog := logger.Component(log, "s3-storage")
	store := &S3Storage{
		bucket:       strings.TrimSpace(cfg.S3Bucket),
		region:       cfg.S3Region,
		endpoint:     strings.TrimSuffix(cfg.S3Endpoint, "/"),
		usePathStyle: cfg.S3UsePathStyle,
		log:          componentLog,
	}

	accessKey := strings.TrimSpace(cfg.S3AccessKeyID)
	secretKey := strings.TrimSpace(cfg.S3SecretKey)
	if store.bucket == "" || accessKey == "" || secretKey == "" {
		componentLog.Warn().Msg("S3_BUCKET or credentials are not set; uploads will be disabled until configured")
		store.disabled = true
		return store, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return store, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

// Upload writes a blob at key. The write is atomic from the caller's
// perspective: the object either becomes retrievable at key or not at all.
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		metrics.RecordStorageOperation("put", "error", time.Since(start).Seconds())
		return err
	}
	metrics.RecordStorageOperation("put", "success", time.Since(start).Seconds())

	s.log.Debug().Str("key", key).Int64("bytes", size).Msg("blob written to s3")
	return nil
}

// Download reads a blob back from storage.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, "", err
	}

	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.RecordStorageOperation("get", "error", time.Since(start).Seconds())
		return nil, "", err
	}
	metrics.RecordStorageOperation("get", "success", time.Since(start).Seconds())

	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// URL returns the unsigned display URL for a key. Not a security boundary.
func (s *S3Storage) URL(key string) string {
	if s.disabled {
		return ""
	}
	if s.endpoint != "" {
		if s.usePathStyle {
			return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
		}
		return fmt.Sprintf("%s/%s", s.endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Health performs a HeadBucket request against the configured bucket.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
