package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Articulate/config"
	"Articulate/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 录音对象存储，兼容 S3 的任意服务
type MinioStore struct {
	client     *minio.Client
	bucket     string
	region     string
	presignTTL time.Duration
}

// NewMinioStore 创建 MinIO 客户端；不发起网络请求
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		// 固定 region 后签名无需查询桶位置
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ttl := cfg.S3PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MinioStore{client: client, bucket: cfg.S3Bucket, region: cfg.S3Region, presignTTL: ttl}, nil
}

// Bucket returns the configured bucket name.
func (s *MinioStore) Bucket() string {
	return s.bucket
}

// PresignTTL returns how long issued URLs stay valid.
func (s *MinioStore) PresignTTL() time.Duration {
	return s.presignTTL
}

// EnsureBucket 检查存储桶，不存在时创建
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		logger.Info("存储桶已存在", logger.String("bucket", s.bucket))
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("成功创建存储桶", logger.String("bucket", s.bucket))
	return nil
}

// CreateUploadURL returns a presigned PUT URL; the client must send the same Content-Type.
func (s *MinioStore) CreateUploadURL(ctx context.Context, key, contentType string) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, s.presignTTL, nil, headers)
	if err != nil {
		return "", fmt.Errorf("presign upload %s: %w", key, err)
	}
	return u.String(), nil
}

// CreateDownloadURL returns a presigned GET URL.
func (s *MinioStore) CreateDownloadURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign download %s: %w", key, err)
	}
	return u.String(), nil
}

// DeleteObject removes key; deleting a missing key is not an error.
func (s *MinioStore) DeleteObject(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}
