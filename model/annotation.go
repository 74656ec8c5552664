package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AnnotationRed   = "red"
	AnnotationGreen = "green"
)

// RecordingAnnotation 录音上的一段时间区间评论；区间可以互相重叠
type RecordingAnnotation struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	RecordingID string    `json:"recording_id" gorm:"size:36;not null;index"`
	StartSec    float64   `json:"start_sec" gorm:"not null"`
	EndSec      float64   `json:"end_sec" gorm:"not null"`
	Color       string    `json:"color" gorm:"size:10;not null"`
	Comment     string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (RecordingAnnotation) TableName() string {
	return "recording_annotations"
}

func (a *RecordingAnnotation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// CreateAnnotationRequest 创建标注请求
type CreateAnnotationRequest struct {
	StartSec *float64 `json:"startSec" validate:"required,gte=0"`
	EndSec   *float64 `json:"endSec" validate:"required,gt=0"`
	Color    string   `json:"color" validate:"required,oneof=red green"`
	Comment  string   `json:"comment" validate:"required,min=1,max=2000"`
}

// UpdateAnnotationRequest 部分更新，未提供的字段保持原值
type UpdateAnnotationRequest struct {
	StartSec *float64 `json:"startSec" validate:"omitempty,gte=0"`
	EndSec   *float64 `json:"endSec" validate:"omitempty,gt=0"`
	Color    *string  `json:"color" validate:"omitempty,oneof=red green"`
	Comment  *string  `json:"comment" validate:"omitempty,min=1,max=2000"`
}

// Apply merges the supplied fields into a.
func (r UpdateAnnotationRequest) Apply(a *RecordingAnnotation) {
	if r.StartSec != nil {
		a.StartSec = *r.StartSec
	}
	if r.EndSec != nil {
		a.EndSec = *r.EndSec
	}
	if r.Color != nil {
		a.Color = *r.Color
	}
	if r.Comment != nil {
		a.Comment = *r.Comment
	}
}
