package repository

import (
	"context"
	"fmt"

	"Articulate/model"

	"gorm.io/gorm"
)

// RecordingRepository 录音数据访问接口
type RecordingRepository interface {
	List(ctx context.Context, ownerID string) ([]model.Recording, error)
	Create(ctx context.Context, rec *model.Recording) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Recording, error)
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.Recording, error)
	// Delete removes the recording and its annotations, returning the deleted row.
	Delete(ctx context.Context, ownerID, id string) (*model.Recording, error)
	Count(ctx context.Context, ownerID string) (int64, error)
}

type gormRecordingRepository struct {
	db *gorm.DB
}

// NewGormRecordingRepository 创建 GORM 录音仓库
func NewGormRecordingRepository(db *gorm.DB) RecordingRepository {
	return &gormRecordingRepository{db: db}
}

func (r *gormRecordingRepository) List(ctx context.Context, ownerID string) ([]model.Recording, error) {
	var out []model.Recording
	err := r.db.WithContext(ctx).Scopes(ForOwner(ownerID)).
		Order("recorded_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return out, nil
}

func (r *gormRecordingRepository) Create(ctx context.Context, rec *model.Recording) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recording: %w", translate(err))
	}
	return nil
}

func (r *gormRecordingRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Recording, error) {
	var rec model.Recording
	err := r.db.WithContext(ctx).Scopes(ForOwner(ownerID)).
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, notFound(err, "Recording")
	}
	return &rec, nil
}

func (r *gormRecordingRepository) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.Recording, error) {
	if _, err := r.GetByID(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		err := r.db.WithContext(ctx).Model(&model.Recording{}).
			Scopes(ForOwner(ownerID)).
			Where("id = ?", id).
			Updates(changes).Error
		if err != nil {
			return nil, fmt.Errorf("update recording: %w", translate(err))
		}
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *gormRecordingRepository) Delete(ctx context.Context, ownerID, id string) (*model.Recording, error) {
	var rec model.Recording
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ForOwner(ownerID)).Where("id = ?", id).First(&rec).Error; err != nil {
			return notFound(err, "Recording")
		}
		if err := tx.Where("recording_id = ?", rec.ID).Delete(&model.RecordingAnnotation{}).Error; err != nil {
			return fmt.Errorf("delete annotations: %w", err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("delete recording: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormRecordingRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Recording{}).Scopes(ForOwner(ownerID)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count recordings: %w", err)
	}
	return n, nil
}
