package recording

import (
	"context"

	"Articulate/apperr"
	"Articulate/model"
)

const errEndBeforeStart = "endSec must be greater than startSec"

// ownedRecording 校验录音归属；不存在或不属于调用者都返回 404
func (s *Service) ownedRecording(ctx context.Context, ownerID, recordingID string) (*model.Recording, error) {
	return s.recordings.GetByID(ctx, ownerID, recordingID)
}

func (s *Service) ListAnnotations(ctx context.Context, ownerID, recordingID string) ([]model.RecordingAnnotation, error) {
	rec, err := s.ownedRecording(ctx, ownerID, recordingID)
	if err != nil {
		return nil, err
	}
	return s.annotations.ListByRecording(ctx, rec.ID)
}

// CreateAnnotation requires end > start; overlapping ranges are allowed.
func (s *Service) CreateAnnotation(ctx context.Context, ownerID, recordingID string, req model.CreateAnnotationRequest) (*model.RecordingAnnotation, error) {
	rec, err := s.ownedRecording(ctx, ownerID, recordingID)
	if err != nil {
		return nil, err
	}
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}
	if *req.EndSec <= *req.StartSec {
		return nil, apperr.Invalid(errEndBeforeStart)
	}

	a := &model.RecordingAnnotation{
		RecordingID: rec.ID,
		StartSec:    *req.StartSec,
		EndSec:      *req.EndSec,
		Color:       req.Color,
		Comment:     req.Comment,
	}
	if err := s.annotations.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAnnotation applies a partial patch; the merged range must still have end > start.
func (s *Service) UpdateAnnotation(ctx context.Context, ownerID, recordingID, annotationID string, req model.UpdateAnnotationRequest) (*model.RecordingAnnotation, error) {
	rec, err := s.ownedRecording(ctx, ownerID, recordingID)
	if err != nil {
		return nil, err
	}
	if annotationID == "" {
		return nil, apperr.Invalid("annotationId query parameter is required")
	}
	if err := model.Validate("Invalid request body", req); err != nil {
		return nil, err
	}

	a, err := s.annotations.GetByID(ctx, rec.ID, annotationID)
	if err != nil {
		return nil, err
	}
	req.Apply(a)
	if a.EndSec <= a.StartSec {
		return nil, apperr.Invalid(errEndBeforeStart)
	}
	if err := s.annotations.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.annotations.GetByID(ctx, rec.ID, annotationID)
}

// DeleteAnnotation deletes by (annotationID, recordingID); a pair that matches
// nothing is not an error.
func (s *Service) DeleteAnnotation(ctx context.Context, ownerID, recordingID, annotationID string) error {
	rec, err := s.ownedRecording(ctx, ownerID, recordingID)
	if err != nil {
		return err
	}
	if annotationID == "" {
		return apperr.Invalid("annotationId query parameter is required")
	}
	_, err = s.annotations.Delete(ctx, rec.ID, annotationID)
	return err
}
