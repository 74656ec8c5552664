package recording

import (
	"context"
	"strings"
	"time"

	"Articulate/apperr"
	"Articulate/core/timebucket"
	"Articulate/logger"
	"Articulate/model"
)

// List 按录制时间倒序
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Recording, error) {
	out, err := s.recordings.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Recording{}
	}
	return out, nil
}

// recordedAt resolves an optional client timestamp, defaulting to now.
func (s *Service) recordedAt(v any, message string) (time.Time, error) {
	if v == nil {
		return s.now().UTC(), nil
	}
	if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
		return s.now().UTC(), nil
	}
	t, err := timebucket.ParseInstant(v)
	if err != nil {
		return time.Time{}, apperr.Invalid(message)
	}
	return t.UTC(), nil
}

func checkOwnedKey(ownerID, key string) error {
	if !strings.HasPrefix(key, OwnerPrefix(ownerID)) || strings.Contains(key, "..") {
		return apperr.InvalidField("key", "must be a key issued for this account")
	}
	return nil
}

// Create registers metadata for an object that is already stored.
func (s *Service) Create(ctx context.Context, ownerID string, req model.CreateRecordingRequest) (*model.Recording, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	if err := checkOwnedKey(ownerID, req.S3Key); err != nil {
		return nil, err
	}
	at, err := s.recordedAt(req.RecordedAt, "Invalid recordedAt value")
	if err != nil {
		return nil, err
	}

	rec := &model.Recording{
		UserID:           ownerID,
		RecordedAt:       at,
		DateBucketLondon: timebucket.Bucket(at),
		Description:      req.Description,
		SpeakingWith:     req.SpeakingWith,
		DurationSec:      req.DurationSec,
		S3Key:            req.S3Key,
		FileName:         req.FileName,
		MimeType:         req.MimeType,
		Bytes:            *req.Bytes,
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PresignUpload 生成对象键和预签名上传地址
func (s *Service) PresignUpload(ctx context.Context, ownerID string, req model.PresignUploadRequest) (*model.PresignUploadResponse, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	key := ObjectKey(ownerID, req.FileName, s.now())
	url, err := s.objects.CreateUploadURL(ctx, key, req.MimeType)
	if err != nil {
		return nil, err
	}
	return &model.PresignUploadResponse{UploadURL: url, Key: key, MaxBytesAccepted: req.Bytes}, nil
}

// CompleteUpload 上传完成后写入录音记录
func (s *Service) CompleteUpload(ctx context.Context, ownerID string, req model.CompleteUploadRequest) (*model.Recording, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	if err := checkOwnedKey(ownerID, req.Key); err != nil {
		return nil, err
	}
	at, err := s.recordedAt(req.RecordedAt, "Invalid recordedAt datetime")
	if err != nil {
		return nil, err
	}

	rec := &model.Recording{
		UserID:           ownerID,
		RecordedAt:       at,
		DateBucketLondon: timebucket.Bucket(at),
		Description:      req.Description,
		SpeakingWith:     req.SpeakingWith,
		S3Key:            req.Key,
		FileName:         req.FileName,
		MimeType:         req.MimeType,
		Bytes:            req.Bytes,
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the recording with annotations ordered by start_sec.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.RecordingDetails, error) {
	rec, err := s.recordings.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	anns, err := s.annotations.ListByRecording(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &model.RecordingDetails{Recording: *rec, Annotations: anns}, nil
}

// Update 部分更新；只有显式传入 recordedAt 时才重新计算日期桶
func (s *Service) Update(ctx context.Context, ownerID, id string, req model.UpdateRecordingRequest) (*model.Recording, error) {
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.SpeakingWith != nil {
		changes["speaking_with"] = *req.SpeakingWith
	}
	if req.DurationSec.Set {
		changes["duration_sec"] = req.DurationSec.Ptr()
	}
	if req.RecordedAt != nil {
		at, err := timebucket.ParseInstant(req.RecordedAt)
		if err != nil {
			return nil, apperr.Invalid("Invalid recordedAt")
		}
		changes["recorded_at"] = at.UTC()
		changes["date_bucket_london"] = timebucket.Bucket(at)
	}
	return s.recordings.Update(ctx, ownerID, id, changes)
}

// Delete removes the row and its annotations, then the stored object.
// The object removal is best effort: a failure is logged and reported, never rolled back.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (*model.DeleteRecordingResult, error) {
	rec, err := s.recordings.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	result := &model.DeleteRecordingResult{Deleted: true, ObjectDeleted: true}
	if err := s.objects.DeleteObject(ctx, rec.S3Key); err != nil {
		logger.Warn("recording object delete failed",
			logger.String("recordingId", rec.ID),
			logger.String("key", rec.S3Key),
			logger.ErrorField(err))
		result.ObjectDeleted = false
	}
	return result, nil
}

// DownloadURL 生成预签名下载地址
func (s *Service) DownloadURL(ctx context.Context, ownerID, id string) (*model.DownloadURLResponse, error) {
	rec, err := s.recordings.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	url, err := s.objects.CreateDownloadURL(ctx, rec.S3Key)
	if err != nil {
		return nil, err
	}
	return &model.DownloadURLResponse{DownloadURL: url}, nil
}
