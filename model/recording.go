package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recording 一段练习录音的元数据；音频本体在对象存储里，由 S3Key 定位
type Recording struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	UserID           string    `json:"user_id" gorm:"size:64;index;not null"`
	RecordedAt       time.Time `json:"recorded_at" gorm:"index;not null"`
	DateBucketLondon string    `json:"date_bucket_london" gorm:"size:10;not null;index"`
	Description      string    `json:"description" gorm:"type:text"`
	SpeakingWith     string    `json:"speaking_with" gorm:"size:240"`
	DurationSec      *float64  `json:"duration_sec"`
	S3Key            string    `json:"s3_key" gorm:"column:s3_key;size:512;not null"`
	FileName         string    `json:"file_name" gorm:"size:260;not null"`
	MimeType         string    `json:"mime_type" gorm:"size:128;not null"`
	Bytes            int64     `json:"bytes" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Recording) TableName() string {
	return "recordings"
}

func (r *Recording) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// RecordingDetails 录音及其按 start_sec 排序的标注
type RecordingDetails struct {
	Recording   Recording             `json:"recording"`
	Annotations []RecordingAnnotation `json:"annotations"`
}

// CreateRecordingRequest 直接登记录音元数据
type CreateRecordingRequest struct {
	RecordedAt   any      `json:"recordedAt"`
	Description  string   `json:"description" validate:"max=2000"`
	SpeakingWith string   `json:"speakingWith" validate:"max=240"`
	DurationSec  *float64 `json:"durationSec" validate:"omitempty,gte=0"`
	S3Key        string   `json:"s3Key" validate:"required"`
	FileName     string   `json:"fileName" validate:"required"`
	MimeType     string   `json:"mimeType" validate:"required"`
	Bytes        *int64   `json:"bytes" validate:"required,gte=0"`
}

// PresignUploadRequest 申请上传地址
type PresignUploadRequest struct {
	FileName string `json:"fileName" validate:"required,max=260"`
	MimeType string `json:"mimeType" validate:"required,max=128"`
	Bytes    int64  `json:"bytes" validate:"required,gt=0"`
}

// PresignUploadResponse 上传地址和生成的对象键
type PresignUploadResponse struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	MaxBytesAccepted int64  `json:"maxBytesAccepted"`
}

// CompleteUploadRequest 上传完成后登记录音
type CompleteUploadRequest struct {
	Key          string `json:"key" validate:"required"`
	FileName     string `json:"fileName" validate:"required"`
	MimeType     string `json:"mimeType" validate:"required"`
	Bytes        int64  `json:"bytes" validate:"required,gt=0"`
	Description  string `json:"description" validate:"max=2000"`
	SpeakingWith string `json:"speakingWith" validate:"max=240"`
	RecordedAt   any    `json:"recordedAt"`
}

// UpdateRecordingRequest 部分更新；recordedAt 变化时重新计算日期桶
type UpdateRecordingRequest struct {
	Description  *string           `json:"description" validate:"omitempty,max=2000"`
	SpeakingWith *string           `json:"speakingWith" validate:"omitempty,max=240"`
	RecordedAt   any               `json:"recordedAt"`
	DurationSec  Optional[float64] `json:"durationSec" validate:"omitempty,gte=0"`
}

// DownloadURLResponse 下载地址
type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// DeleteRecordingResult 删除结果；对象删除失败不回滚数据库删除
type DeleteRecordingResult struct {
	Deleted       bool `json:"deleted"`
	ObjectDeleted bool `json:"objectDeleted"`
}
