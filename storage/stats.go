package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Add folds one object into the totals.
func (b *BucketStats) Add(obj ObjectInfo) {
	b.TotalObjects++
	b.TotalSize += obj.Size
	if obj.LastModified.After(b.LastModified) {
		b.LastModified = obj.LastModified
	}
}

// ListObjects 列出前缀下的所有对象并统计
func (s *MinioStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		info := ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		}
		stats.Add(info)
		objects = append(objects, info)
	}

	return objects, stats, nil
}

// Usage 按文件类型统计前缀下的占用
func (s *MinioStore) Usage(ctx context.Context, prefix string) (map[string]int64, error) {
	objects, _, err := s.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return UsageByKind(objects), nil
}

// UsageByKind sums object sizes per coarse kind (audio, image, ...).
func UsageByKind(objects []ObjectInfo) map[string]int64 {
	usage := make(map[string]int64)
	for _, obj := range objects {
		usage[inferKind(obj.Key)] += obj.Size
	}
	return usage
}

// inferKind 从文件名推断类型
func inferKind(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp3", ".wav", ".flac", ".m4a", ".aac", ".ogg", ".webm":
		return "audio"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".avi", ".mov", ".mkv":
		return "video"
	default:
		return "other"
	}
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
