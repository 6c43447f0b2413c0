package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"stayhub/internal/app/policies"
	"stayhub/internal/infra/storage/imagedata"
)

type Options struct {
	Endpoint      string
	PublicBaseURL string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
}

// ImageHost stores listing images in an S3-compatible bucket and returns public URLs.
type ImageHost struct {
	bucket         string
	publicBaseURL  string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewImageHost(opts Options, logger *slog.Logger) (*ImageHost, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(opts.PublicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &ImageHost{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

func (h *ImageHost) Upload(ctx context.Context, listingID string, encoded string) (string, error) {
	data, contentType, err := imagedata.Decode(encoded)
	if err != nil {
		return "", err
	}
	if err := h.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := ObjectKey(listingID, uuid.NewString(), contentType)
	_, err = h.client.PutObject(ctx, h.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := h.objectURL(key)
	if h.logger != nil {
		h.logger.InfoContext(ctx, "listing image stored", "bucket", h.bucket, "key", key, "listing_id", listingID)
	}
	return publicURL, nil
}

// Ready reports whether the bucket can be reached.
func (h *ImageHost) Ready(ctx context.Context) error {
	if _, err := h.client.BucketExists(ctx, h.bucket); err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	return nil
}

// ObjectKey places images under listings/<listing id>/.
func ObjectKey(listingID, name, contentType string) string {
	return fmt.Sprintf("listings/%s/%s%s", strings.Trim(listingID, "/"), name, imagedata.Extension(contentType))
}

func (h *ImageHost) ensureBucket(ctx context.Context) error {
	h.bucketInitOnce.Do(func() {
		exists, err := h.client.BucketExists(ctx, h.bucket)
		if err != nil {
			h.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{}); err != nil {
			h.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, h.bucket)
		if err := h.client.SetBucketPolicy(ctx, h.bucket, policy); err != nil {
			h.bucketInitErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return h.bucketInitErr
}

func (h *ImageHost) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", h.publicBaseURL, h.bucket, strings.TrimLeft(key, "/"))
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.ImageHost = (*ImageHost)(nil)
