package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContourSteady   = "steady"
	ContourRiseFall = "rise_fall"
	ContourRise     = "rise"
	ContourFall     = "fall"
)

// PracticeCard 一张句子卡片，带 IPA、重音和语调标注。同一练习集内 order_index 唯一
type PracticeCard struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	SetID          string    `json:"set_id" gorm:"size:36;not null;uniqueIndex:idx_card_set_order,priority:1"`
	OrderIndex     int       `json:"order_index" gorm:"not null;uniqueIndex:idx_card_set_order,priority:2"`
	Sentence       string    `json:"sentence" gorm:"type:text;not null"`
	IPA            string    `json:"ipa" gorm:"column:ipa;type:text;not null"`
	StressMap      string    `json:"stress_map" gorm:"type:text;not null"`
	IntonationText string    `json:"intonation_text" gorm:"type:text;not null"`
	ContourPattern string    `json:"contour_pattern" gorm:"size:20;not null;default:'rise_fall'"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (PracticeCard) TableName() string {
	return "practice_cards"
}

func (c *PracticeCard) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// PracticeCardTag 卡片与难点的多对多关联，与卡片所在练习集的难点无关
type PracticeCardTag struct {
	CardID     string    `json:"card_id" gorm:"primaryKey;size:36"`
	StruggleID string    `json:"struggle_id" gorm:"primaryKey;size:36;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (PracticeCardTag) TableName() string {
	return "practice_card_tags"
}

// CardInput 单张卡片的输入
type CardInput struct {
	OrderIndex     *int     `json:"order_index" validate:"required,gte=0"`
	Sentence       string   `json:"sentence" validate:"required"`
	IPA            string   `json:"ipa" validate:"required"`
	StressMap      string   `json:"stress_map" validate:"required"`
	IntonationText string   `json:"intonation_text" validate:"required"`
	ContourPattern string   `json:"contour_pattern" validate:"omitempty,oneof=steady rise_fall rise fall"`
	StruggleIDs    []string `json:"struggle_ids" validate:"omitempty,dive,uuid"`
}

// ToCard builds the row for setID; an empty contour falls back to rise_fall.
func (in CardInput) ToCard(setID string) PracticeCard {
	contour := in.ContourPattern
	if contour == "" {
		contour = ContourRiseFall
	}
	return PracticeCard{
		SetID:          setID,
		OrderIndex:     *in.OrderIndex,
		Sentence:       in.Sentence,
		IPA:            in.IPA,
		StressMap:      in.StressMap,
		IntonationText: in.IntonationText,
		ContourPattern: contour,
	}
}

// CreateCardRequest 单张卡片创建请求
type CreateCardRequest struct {
	SetID string `json:"set_id" validate:"required,uuid"`
	CardInput
}

// BulkCardsRequest 批量创建卡片；order_index 在一次请求内必须唯一
type BulkCardsRequest struct {
	ReplaceExisting bool        `json:"replaceExisting"`
	Cards           []CardInput `json:"cards" validate:"required,min=1,dive"`
}

// BulkCardsResult 批量创建结果
type BulkCardsResult struct {
	Inserted     int `json:"inserted"`
	TagsInserted int `json:"tagsInserted"`
}
