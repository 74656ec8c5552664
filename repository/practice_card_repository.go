package repository

import (
	"context"
	"fmt"

	"Articulate/model"

	"gorm.io/gorm"
)

// PracticeCardRepository 卡片及标签数据访问接口
type PracticeCardRepository interface {
	ListBySet(ctx context.Context, setID string) ([]model.PracticeCard, error)
	Create(ctx context.Context, card *model.PracticeCard) error
	// CreateBatch inserts all cards in one statement.
	CreateBatch(ctx context.Context, cards []model.PracticeCard) error
	DeleteBySet(ctx context.Context, setID string) error
	CountBySet(ctx context.Context, setID string) (int64, error)
	Preview(ctx context.Context, setID string, limit int) ([]model.PracticeSetPreviewCard, error)

	CreateTags(ctx context.Context, tags []model.PracticeCardTag) error
	ListTags(ctx context.Context, cardIDs []string) ([]model.CardTagView, error)
}

type gormPracticeCardRepository struct {
	db *gorm.DB
}

// NewGormPracticeCardRepository 创建 GORM 卡片仓库
func NewGormPracticeCardRepository(db *gorm.DB) PracticeCardRepository {
	return &gormPracticeCardRepository{db: db}
}

func (r *gormPracticeCardRepository) ListBySet(ctx context.Context, setID string) ([]model.PracticeCard, error) {
	var cards []model.PracticeCard
	err := r.db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("order_index ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (r *gormPracticeCardRepository) Create(ctx context.Context, card *model.PracticeCard) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return fmt.Errorf("create card: %w", translate(err))
	}
	return nil
}

func (r *gormPracticeCardRepository) CreateBatch(ctx context.Context, cards []model.PracticeCard) error {
	if len(cards) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&cards).Error; err != nil {
		return fmt.Errorf("create cards: %w", translate(err))
	}
	return nil
}

// DeleteBySet 删除练习集下所有卡片及其标签
func (r *gormPracticeCardRepository) DeleteBySet(ctx context.Context, setID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCardsOfSets(tx, []string{setID})
	})
}

func (r *gormPracticeCardRepository) CountBySet(ctx context.Context, setID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PracticeCard{}).Where("set_id = ?", setID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (r *gormPracticeCardRepository) Preview(ctx context.Context, setID string, limit int) ([]model.PracticeSetPreviewCard, error) {
	out := []model.PracticeSetPreviewCard{}
	err := r.db.WithContext(ctx).Model(&model.PracticeCard{}).
		Select("id, order_index, sentence").
		Where("set_id = ?", setID).
		Order("order_index ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("preview cards: %w", err)
	}
	return out, nil
}

func (r *gormPracticeCardRepository) CreateTags(ctx context.Context, tags []model.PracticeCardTag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&tags).Error; err != nil {
		return fmt.Errorf("create card tags: %w", translate(err))
	}
	return nil
}

// ListTags 返回卡片标签，并带上难点标题
func (r *gormPracticeCardRepository) ListTags(ctx context.Context, cardIDs []string) ([]model.CardTagView, error) {
	out := []model.CardTagView{}
	if len(cardIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		CardID        string
		StruggleID    string
		StruggleTitle *string
	}
	err := r.db.WithContext(ctx).Table("practice_card_tags AS t").
		Select("t.card_id, t.struggle_id, s.title AS struggle_title").
		Joins("LEFT JOIN struggles s ON s.id = t.struggle_id").
		Where("t.card_id IN ?", cardIDs).
		Order("t.card_id ASC").Order("t.struggle_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list card tags: %w", err)
	}

	for _, row := range rows {
		view := model.CardTagView{CardID: row.CardID, StruggleID: row.StruggleID}
		if row.StruggleTitle != nil {
			view.Struggles = &model.StruggleRef{ID: row.StruggleID, Title: *row.StruggleTitle}
		}
		out = append(out, view)
	}
	return out, nil
}
