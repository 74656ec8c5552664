package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SectionStruggle = "struggle"
	SectionMisc     = "misc"
)

// PracticeSet 某天的一组练习；set_index 在 (用户, 分区, 难点, 日期) 范围内从 1 递增
type PracticeSet struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	UserID      string  `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_practice_set_scope,priority:1"`
	SectionType string  `json:"section_type" gorm:"size:20;not null;uniqueIndex:idx_practice_set_scope,priority:2"`
	StruggleID  *string `json:"struggle_id" gorm:"size:36;index"`
	// StruggleScope mirrors StruggleID with "" for none, so the unique index also
	// covers sets without a struggle (NULLs never collide in a unique index).
	StruggleScope    string    `json:"-" gorm:"size:36;not null;default:'';uniqueIndex:idx_practice_set_scope,priority:3"`
	DateBucketLondon string    `json:"date_bucket_london" gorm:"size:10;not null;uniqueIndex:idx_practice_set_scope,priority:4"`
	SetIndex         int       `json:"set_index" gorm:"not null;uniqueIndex:idx_practice_set_scope,priority:5"`
	Title            string    `json:"title" gorm:"size:180;not null"`
	Source           string    `json:"source" gorm:"size:80;not null;default:'manual'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PracticeSet) TableName() string {
	return "practice_sets"
}

func (p *PracticeSet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.StruggleScope = ""
	if p.StruggleID != nil {
		p.StruggleScope = *p.StruggleID
	}
	return nil
}

// StruggleRef 练习集详情里附带的难点标题
type StruggleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PracticeSetWithStruggle 练习集加上所属难点
type PracticeSetWithStruggle struct {
	PracticeSet
	Struggles *StruggleRef `json:"struggles"`
}

// CardTagView 卡片标签及难点标题
type CardTagView struct {
	CardID     string       `json:"card_id"`
	StruggleID string       `json:"struggle_id"`
	Struggles  *StruggleRef `json:"struggles"`
}

// PracticeSetDetails 练习集详情
type PracticeSetDetails struct {
	Set   PracticeSetWithStruggle `json:"set"`
	Cards []PracticeCard          `json:"cards"`
	Tags  []CardTagView           `json:"tags"`
}

// PracticeSetPrintData 打印页数据
type PracticeSetPrintData struct {
	Set   PracticeSet    `json:"set"`
	Cards []PracticeCard `json:"cards"`
}

// PracticeSetPreviewCard 预览中的单张卡片
type PracticeSetPreviewCard struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
	Sentence   string `json:"sentence"`
}

// PracticeSetPreview 练习集前几张卡片
type PracticeSetPreview struct {
	SetID      string                   `json:"set_id"`
	Cards      []PracticeSetPreviewCard `json:"cards"`
	TotalCards int64                    `json:"total_cards"`
}

// PracticeSetFilter 列表查询条件
type PracticeSetFilter struct {
	SectionType string `json:"section_type" validate:"omitempty,oneof=struggle misc"`
	StruggleID  string `json:"struggle_id" validate:"omitempty,uuid"`
}

// CreatePracticeSetRequest 创建练习集请求；date 和 set_index 可选，由服务端计算
type CreatePracticeSetRequest struct {
	SectionType string  `json:"section_type" validate:"required,oneof=struggle misc"`
	StruggleID  *string `json:"struggle_id" validate:"omitempty,uuid"`
	Date        *string `json:"date"`
	SetIndex    *int    `json:"set_index" validate:"omitempty,gt=0"`
	Title       string  `json:"title" validate:"required,min=2,max=180"`
	Source      string  `json:"source" validate:"omitempty,min=2,max=80"`
}

// UpdatePracticeSetRequest 只允许修改标题和来源
type UpdatePracticeSetRequest struct {
	Title  *string `json:"title" validate:"omitempty,min=2,max=180"`
	Source *string `json:"source" validate:"omitempty,min=2,max=80"`
}

// Changes returns the column map for a partial update.
func (r UpdatePracticeSetRequest) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if r.Title != nil {
		changes["title"] = *r.Title
	}
	if r.Source != nil {
		changes["source"] = *r.Source
	}
	return changes
}
