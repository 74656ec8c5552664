package repository

import (
	"context"
	"fmt"

	"Articulate/model"

	"gorm.io/gorm"
)

// AnnotationRepository 录音标注数据访问接口；调用方负责先校验录音归属
type AnnotationRepository interface {
	ListByRecording(ctx context.Context, recordingID string) ([]model.RecordingAnnotation, error)
	Create(ctx context.Context, a *model.RecordingAnnotation) error
	GetByID(ctx context.Context, recordingID, id string) (*model.RecordingAnnotation, error)
	Update(ctx context.Context, a *model.RecordingAnnotation) error
	// Delete reports how many rows matched (id, recordingID).
	Delete(ctx context.Context, recordingID, id string) (int64, error)
}

type gormAnnotationRepository struct {
	db *gorm.DB
}

// NewGormAnnotationRepository 创建 GORM 标注仓库
func NewGormAnnotationRepository(db *gorm.DB) AnnotationRepository {
	return &gormAnnotationRepository{db: db}
}

func (r *gormAnnotationRepository) ListByRecording(ctx context.Context, recordingID string) ([]model.RecordingAnnotation, error) {
	out := []model.RecordingAnnotation{}
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("start_sec ASC").Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return out, nil
}

func (r *gormAnnotationRepository) Create(ctx context.Context, a *model.RecordingAnnotation) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create annotation: %w", translate(err))
	}
	return nil
}

func (r *gormAnnotationRepository) GetByID(ctx context.Context, recordingID, id string) (*model.RecordingAnnotation, error) {
	var a model.RecordingAnnotation
	err := r.db.WithContext(ctx).
		Where("id = ? AND recording_id = ?", id, recordingID).
		First(&a).Error
	if err != nil {
		return nil, notFound(err, "Annotation")
	}
	return &a, nil
}

// Update writes the mutable columns of a.
func (r *gormAnnotationRepository) Update(ctx context.Context, a *model.RecordingAnnotation) error {
	res := r.db.WithContext(ctx).Model(&model.RecordingAnnotation{}).
		Where("id = ? AND recording_id = ?", a.ID, a.RecordingID).
		Updates(map[string]interface{}{
			"start_sec": a.StartSec,
			"end_sec":   a.EndSec,
			"color":     a.Color,
			"comment":   a.Comment,
		})
	if res.Error != nil {
		return fmt.Errorf("update annotation: %w", res.Error)
	}
	return nil
}

func (r *gormAnnotationRepository) Delete(ctx context.Context, recordingID, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recording_id = ?", id, recordingID).
		Delete(&model.RecordingAnnotation{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete annotation: %w", res.Error)
	}
	return res.RowsAffected, nil
}
