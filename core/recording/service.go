// Package recording manages uploaded practice recordings and their time-ranged annotations.
package recording

import (
	"context"
	"time"

	"Articulate/repository"
)

// ObjectStore is the blob side of a recording.
type ObjectStore interface {
	CreateUploadURL(ctx context.Context, key, contentType string) (string, error)
	CreateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// Service 录音与标注业务逻辑
type Service struct {
	recordings  repository.RecordingRepository
	annotations repository.AnnotationRepository
	objects     ObjectStore
	now         func() time.Time
}

// NewService 创建录音服务
func NewService(recordings repository.RecordingRepository, annotations repository.AnnotationRepository, objects ObjectStore) *Service {
	return &Service{
		recordings:  recordings,
		annotations: annotations,
		objects:     objects,
		now:         time.Now,
	}
}
