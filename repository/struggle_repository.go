package repository

import (
	"context"
	"fmt"

	"Articulate/model"

	"gorm.io/gorm"
)

// StruggleRepository 难点数据访问接口
type StruggleRepository interface {
	List(ctx context.Context, ownerID string) ([]model.Struggle, error)
	Create(ctx context.Context, s *model.Struggle) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Struggle, error)
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.Struggle, error)
	Delete(ctx context.Context, ownerID, id string) error
	Count(ctx context.Context, ownerID string) (int64, error)
	// OwnedIDs returns the subset of ids that belong to ownerID.
	OwnedIDs(ctx context.Context, ownerID string, ids []string) ([]string, error)
}

type gormStruggleRepository struct {
	db *gorm.DB
}

// NewGormStruggleRepository 创建 GORM 难点仓库
func NewGormStruggleRepository(db *gorm.DB) StruggleRepository {
	return &gormStruggleRepository{db: db}
}

func (r *gormStruggleRepository) List(ctx context.Context, ownerID string) ([]model.Struggle, error) {
	var out []model.Struggle
	err := r.db.WithContext(ctx).Scopes(ForOwner(ownerID)).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list struggles: %w", err)
	}
	return out, nil
}

func (r *gormStruggleRepository) Create(ctx context.Context, s *model.Struggle) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create struggle: %w", translate(err))
	}
	return nil
}

func (r *gormStruggleRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Struggle, error) {
	var s model.Struggle
	err := r.db.WithContext(ctx).Scopes(ForOwner(ownerID)).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, notFound(err, "Struggle")
	}
	return &s, nil
}

func (r *gormStruggleRepository) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.Struggle, error) {
	if _, err := r.GetByID(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		err := r.db.WithContext(ctx).Model(&model.Struggle{}).
			Scopes(ForOwner(ownerID)).
			Where("id = ?", id).
			Updates(changes).Error
		if err != nil {
			return nil, fmt.Errorf("update struggle: %w", translate(err))
		}
	}
	return r.GetByID(ctx, ownerID, id)
}

// Delete removes the struggle, its sets with their cards, and every tag that names it.
func (r *gormStruggleRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Struggle
		if err := tx.Scopes(ForOwner(ownerID)).Where("id = ?", id).First(&s).Error; err != nil {
			return notFound(err, "Struggle")
		}

		var setIDs []string
		if err := tx.Model(&model.PracticeSet{}).
			Scopes(ForOwner(ownerID)).
			Where("struggle_id = ?", id).
			Pluck("id", &setIDs).Error; err != nil {
			return fmt.Errorf("collect struggle sets: %w", err)
		}
		if err := deleteSets(tx, setIDs); err != nil {
			return err
		}
		if err := tx.Where("struggle_id = ?", id).Delete(&model.PracticeCardTag{}).Error; err != nil {
			return fmt.Errorf("delete struggle tags: %w", err)
		}
		if err := tx.Delete(&s).Error; err != nil {
			return fmt.Errorf("delete struggle: %w", err)
		}
		return nil
	})
}

func (r *gormStruggleRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Struggle{}).Scopes(ForOwner(ownerID)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count struggles: %w", err)
	}
	return n, nil
}

func (r *gormStruggleRepository) OwnedIDs(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []string
	err := r.db.WithContext(ctx).Model(&model.Struggle{}).
		Scopes(ForOwner(ownerID)).
		Where("id IN ?", ids).
		Pluck("id", &out).Error
	if err != nil {
		return nil, fmt.Errorf("check struggle ownership: %w", err)
	}
	return out, nil
}
