package repository

import (
	"context"
	"fmt"

	"Articulate/core/numbering"
	"Articulate/model"

	"gorm.io/gorm"
)

// PracticeSetRepository 练习集数据访问接口
type PracticeSetRepository interface {
	List(ctx context.Context, ownerID string, filter model.PracticeSetFilter) ([]model.PracticeSet, error)
	Create(ctx context.Context, set *model.PracticeSet) error
	GetByID(ctx context.Context, ownerID, id string) (*model.PracticeSet, error)
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.PracticeSet, error)
	Delete(ctx context.Context, ownerID, id string) error
	Count(ctx context.Context, ownerID string) (int64, error)
	// CountByStruggle returns the number of struggle-section sets per struggle id.
	CountByStruggle(ctx context.Context, ownerID string) (map[string]int, error)
	MaxSetIndex(ctx context.Context, scope numbering.Scope) (int, error)
}

type gormPracticeSetRepository struct {
	db *gorm.DB
}

// NewGormPracticeSetRepository 创建 GORM 练习集仓库
func NewGormPracticeSetRepository(db *gorm.DB) PracticeSetRepository {
	return &gormPracticeSetRepository{db: db}
}

func (r *gormPracticeSetRepository) List(ctx context.Context, ownerID string, filter model.PracticeSetFilter) ([]model.PracticeSet, error) {
	q := r.db.WithContext(ctx).Scopes(ForOwner(ownerID))
	if filter.SectionType != "" {
		q = q.Where("section_type = ?", filter.SectionType)
	}
	if filter.StruggleID != "" {
		q = q.Where("struggle_id = ?", filter.StruggleID)
	}

	var out []model.PracticeSet
	if err := q.Order("date_bucket_london DESC").Order("set_index ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list practice sets: %w", err)
	}
	return out, nil
}

func (r *gormPracticeSetRepository) Create(ctx context.Context, set *model.PracticeSet) error {
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return fmt.Errorf("create practice set: %w", translate(err))
	}
	return nil
}

func (r *gormPracticeSetRepository) GetByID(ctx context.Context, ownerID, id string) (*model.PracticeSet, error) {
	var set model.PracticeSet
	err := r.db.WithContext(ctx).Scopes(ForOwner(ownerID)).
		Where("id = ?", id).
		First(&set).Error
	if err != nil {
		return nil, notFound(err, "Practice set")
	}
	return &set, nil
}

func (r *gormPracticeSetRepository) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (*model.PracticeSet, error) {
	if _, err := r.GetByID(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		err := r.db.WithContext(ctx).Model(&model.PracticeSet{}).
			Scopes(ForOwner(ownerID)).
			Where("id = ?", id).
			Updates(changes).Error
		if err != nil {
			return nil, fmt.Errorf("update practice set: %w", translate(err))
		}
	}
	return r.GetByID(ctx, ownerID, id)
}

// Delete 删除练习集及其卡片和标签
func (r *gormPracticeSetRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set model.PracticeSet
		if err := tx.Scopes(ForOwner(ownerID)).Where("id = ?", id).First(&set).Error; err != nil {
			return notFound(err, "Practice set")
		}
		return deleteSets(tx, []string{set.ID})
	})
}

// deleteSets removes the given sets with their cards and tags inside tx.
func deleteSets(tx *gorm.DB, setIDs []string) error {
	if len(setIDs) == 0 {
		return nil
	}
	if err := deleteCardsOfSets(tx, setIDs); err != nil {
		return err
	}
	if err := tx.Where("id IN ?", setIDs).Delete(&model.PracticeSet{}).Error; err != nil {
		return fmt.Errorf("delete practice sets: %w", err)
	}
	return nil
}

func deleteCardsOfSets(tx *gorm.DB, setIDs []string) error {
	var cardIDs []string
	if err := tx.Model(&model.PracticeCard{}).Where("set_id IN ?", setIDs).Pluck("id", &cardIDs).Error; err != nil {
		return fmt.Errorf("collect cards: %w", err)
	}
	if len(cardIDs) == 0 {
		return nil
	}
	if err := tx.Where("card_id IN ?", cardIDs).Delete(&model.PracticeCardTag{}).Error; err != nil {
		return fmt.Errorf("delete card tags: %w", err)
	}
	if err := tx.Where("id IN ?", cardIDs).Delete(&model.PracticeCard{}).Error; err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	return nil
}

func (r *gormPracticeSetRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PracticeSet{}).Scopes(ForOwner(ownerID)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count practice sets: %w", err)
	}
	return n, nil
}

func (r *gormPracticeSetRepository) CountByStruggle(ctx context.Context, ownerID string) (map[string]int, error) {
	var rows []struct {
		StruggleScope string
		SetCount      int
	}
	err := r.db.WithContext(ctx).Model(&model.PracticeSet{}).
		Select("struggle_scope, COUNT(*) AS set_count").
		Scopes(ForOwner(ownerID)).
		Where("section_type = ?", model.SectionStruggle).
		Group("struggle_scope").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count sets per struggle: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.StruggleScope] = row.SetCount
	}
	return counts, nil
}

// MaxSetIndex 返回作用域内最大的 set_index，没有记录时为 0
func (r *gormPracticeSetRepository) MaxSetIndex(ctx context.Context, scope numbering.Scope) (int, error) {
	var max int
	row := r.db.WithContext(ctx).Model(&model.PracticeSet{}).
		Select("COALESCE(MAX(set_index), 0)").
		Where("user_id = ? AND section_type = ? AND struggle_scope = ? AND date_bucket_london = ?",
			scope.OwnerID, scope.SectionType, scope.StruggleID, scope.DateBucket).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("max set index: %w", err)
	}
	return max, nil
}
