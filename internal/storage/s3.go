package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jorgecardleitao/private-jets/internal/logging"
)

// S3Config configures the remote object-storage backend. Endpoint is any
// S3-compatible service; the published datasets live on DigitalOcean
// Spaces (fra1, bucket private-jets) with world-readable objects.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

const (
	DefaultEndpoint = "fra1.digitaloceanspaces.com"
	DefaultRegion   = "fra1"
	DefaultBucket   = "private-jets"
)

// S3 is a Backend over an S3-compatible object store. Built without
// credentials it performs anonymous reads and refuses writes, which is
// how the public datasets are consumed by third parties.
type S3 struct {
	client *minio.Client
	bucket string
	region string
	canPut bool
}

// Ensure S3 implements Backend
var _ Backend = (*S3)(nil)

// NewS3 builds a read-write backend when both keys are set and an
// anonymous read-only backend when they are empty.
func NewS3(cfg S3Config) (*S3, error) {
	opts := &minio.Options{
		Secure: true,
		Region: cfg.Region,
	}
	canPut := cfg.AccessKey != "" && cfg.SecretKey != ""
	if canPut {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing object storage client: %w", err)
	}

	return &S3{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		canPut: canPut,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet. Only
// meaningful for writable backends.
func (s *S3) EnsureBucket(ctx context.Context) error {
	if !s.canPut {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err == nil && exists {
			return nil
		}
		if err == nil {
			err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
			if err == nil {
				return nil
			}
		}
		lastErr = err
		logging.Warn("bucket check failed, retrying", "bucket", s.bucket, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return fmt.Errorf("ensuring bucket %s: %w", s.bucket, lastErr)
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte) error {
	if !s.canPut {
		return fmt.Errorf("putting %s: backend is read-only", key)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeFor(key),
		// the datasets are public; anyone can read them without credentials
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *S3) CanPut() bool {
	return s.canPut
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
