package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"coastalstay/internal/app/policies"
	"coastalstay/internal/infra/config"
)

const photoCacheControl = "public, max-age=31536000, immutable"

var ErrNotConfigured = errors.New("s3: photo storage is not configured")

type Params struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
	}
}

// PhotoStore keeps property photos in an S3-compatible bucket. The bucket is
// created and made publicly readable on first use.
type PhotoStore struct {
	bucket        string
	publicBaseURL string
	client        *minio.Client
	logger        *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewPhotoStore connects to the bucket endpoint in params.
func NewPhotoStore(params Params, logger *slog.Logger) (*PhotoStore, error) {
	endpoint := strings.TrimSpace(params.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(params.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(params.AccessKey), strings.TrimSpace(params.SecretKey), ""),
		Secure: params.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(params.PublicEndpoint)
	if base == "" {
		scheme := "http://"
		if params.UseSSL {
			scheme = "https://"
		}
		base = endpoint
		if !strings.Contains(base, "://") {
			base = scheme + base
		}
	}
	return &PhotoStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

// Upload stores the photo under key and returns its public URL.
func (s *PhotoStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if size <= 0 {
		size = -1
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: photoCacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := s.objectURL(key)
	if s.logger != nil {
		s.logger.Info("photo stored", "bucket", s.bucket, "key", key, "bytes", info.Size, "url", publicURL)
	}
	return publicURL, nil
}

// Ready reports whether the bucket is reachable, for /readyz.
func (s *PhotoStore) Ready(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	return nil
}

// ensureBucket retries on every call until the bucket is set up once.
func (s *PhotoStore) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s3: create bucket: %w", err)
		}
		if err := s.allowPublicRead(ctx); err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Info("photo bucket created", "bucket", s.bucket)
		}
	}
	s.bucketReady = true
	return nil
}

func (s *PhotoStore) allowPublicRead(ctx context.Context) error {
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("s3: set bucket policy: %w", err)
	}
	return nil
}

func (s *PhotoStore) objectURL(key string) string {
	return s.publicBaseURL + "/" + s.bucket + "/" + strings.TrimLeft(key, "/")
}

// NoopStore is used when S3 is not configured.
type NoopStore struct{}

func (NoopStore) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var (
	_ policies.PhotoStorage = (*PhotoStore)(nil)
	_ policies.PhotoStorage = NoopStore{}
)
