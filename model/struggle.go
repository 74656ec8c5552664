package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StruggleStatusActive   = "active"
	StruggleStatusArchived = "archived"
)

// Struggle 用户自定义的发音难点，练习集和卡片标签都挂在它下面
type Struggle struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"user_id" gorm:"size:64;index;not null"`
	Title       string    `json:"title" gorm:"size:180;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'active'"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Struggle) TableName() string {
	return "struggles"
}

func (s *Struggle) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = StruggleStatusActive
	}
	return nil
}

// StruggleWithCount 难点及其下属练习集数量
type StruggleWithCount struct {
	Struggle
	SetCount int `json:"set_count"`
}

// CreateStruggleRequest 创建难点请求
type CreateStruggleRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=180"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status" validate:"omitempty,oneof=active archived"`
}

// UpdateStruggleRequest 部分更新；description 显式传 null 时清空
type UpdateStruggleRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=180"`
	Description Optional[string] `json:"description" validate:"omitempty,max=5000"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active archived"`
}

// Changes returns the column map for a partial update.
func (r UpdateStruggleRequest) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if r.Title != nil {
		changes["title"] = *r.Title
	}
	if r.Description.Set {
		if r.Description.Valid {
			changes["description"] = r.Description.Value
		} else {
			changes["description"] = nil
		}
	}
	if r.Status != nil {
		changes["status"] = *r.Status
	}
	return changes
}
