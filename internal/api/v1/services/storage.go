package services

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ArchiveConfig holds the MinIO connection settings for the audio archive.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var _ ArchiveStorage = (*MinioArchive)(nil)

// MinioArchive stores uploaded audio in a MinIO (or S3-compatible) bucket.
type MinioArchive struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	logger   *zap.Logger
}

// NewMinioArchive connects to MinIO and makes sure the bucket exists.
func NewMinioArchive(ctx context.Context, cfg ArchiveConfig, logger *zap.Logger) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MinioArchive{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		logger:   logger,
	}, nil
}

// Archive uploads the file and returns its object URL. The key embeds the
// upload time and content hash so identical uploads never collide.
func (a *MinioArchive) Archive(ctx context.Context, localPath, user, contentHash, originalName string) (string, error) {
	if user == "" {
		user = "anonymous"
	}
	hashPart := contentHash
	if len(hashPart) > 12 {
		hashPart = hashPart[:12]
	}
	ext := filepath.Ext(originalName)
	key := fmt.Sprintf("audio/%s/%d-%s%s", user, time.Now().Unix(), hashPart, ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := a.client.FPutObject(ctx, a.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": originalName,
			"content-hash":  contentHash,
		},
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}

	a.logger.Debug("archived upload",
		zap.String("key", key),
		zap.Int64("size", info.Size))

	return a.objectURL(key), nil
}

func (a *MinioArchive) objectURL(key string) string {
	scheme := "http"
	if a.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, a.endpoint, a.bucket, key)
}
