package recording

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"Articulate/apperr"
	"Articulate/internal/testdb"
	"Articulate/model"
	"Articulate/repository"
)

const (
	owner = "owner-1"
	other = "owner-2"
)

type fakeStore struct {
	mu        sync.Mutex
	deleteErr error
	deleted   []string
	uploads   map[string]string
}

func (f *fakeStore) CreateUploadURL(_ context.Context, key, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[key] = contentType
	return "https://bucket.example/" + key + "?sig=put", nil
}

func (f *fakeStore) CreateDownloadURL(_ context.Context, key string) (string, error) {
	return "https://bucket.example/" + key + "?sig=get", nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

var fixedNow = time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	gdb := testdb.Open(t)
	store := &fakeStore{}
	svc := NewService(repository.NewGormRecordingRepository(gdb), repository.NewGormAnnotationRepository(gdb), store)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func f64(v float64) *float64 { return &v }
func strPtr(s string) *string { return &s }

func uploadAndComplete(t *testing.T, svc *Service, ownerID string, recordedAt any) *model.Recording {
	t.Helper()
	ctx := context.Background()
	up, err := svc.PresignUpload(ctx, ownerID, model.PresignUploadRequest{FileName: "Chat.m4a", MimeType: "audio/mp4", Bytes: 2048})
	if err != nil {
		t.Fatalf("PresignUpload: %v", err)
	}
	rec, err := svc.CompleteUpload(ctx, ownerID, model.CompleteUploadRequest{
		Key: up.Key, FileName: "Chat.m4a", MimeType: "audio/mp4", Bytes: 2048, RecordedAt: recordedAt,
	})
	if err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	return rec
}

func TestPresignUpload(t *testing.T) {
	svc, store := newService(t)
	up, err := svc.PresignUpload(context.Background(), owner, model.PresignUploadRequest{FileName: "My Take.WAV", MimeType: "audio/wav", Bytes: 99})
	if err != nil {
		t.Fatal(err)
	}
	wantKey := "recordings/owner-1/2024/03/" + "1711927800000-my-take.wav"
	if up.Key != wantKey {
		t.Errorf("key = %q, want %q", up.Key, wantKey)
	}
	if up.MaxBytesAccepted != 99 || !strings.Contains(up.UploadURL, wantKey) {
		t.Errorf("response = %+v", up)
	}
	if store.uploads[wantKey] != "audio/wav" {
		t.Errorf("content type not passed to store: %v", store.uploads)
	}

	if _, err := svc.PresignUpload(context.Background(), owner, model.PresignUploadRequest{FileName: "a.m4a", MimeType: "audio/mp4"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero bytes err = %v", err)
	}
}

func TestCompleteUploadBucketsAndOwnership(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rec := uploadAndComplete(t, svc, owner, nil)
	if rec.DateBucketLondon != "2024-04-01" || !rec.RecordedAt.Equal(fixedNow) {
		t.Errorf("recording = %+v", rec)
	}

	explicit := uploadAndComplete(t, svc, owner, "2024-10-27T00:30:00Z")
	if explicit.DateBucketLondon != "2024-10-27" {
		t.Errorf("bucket = %s, want 2024-10-27", explicit.DateBucketLondon)
	}

	_, err := svc.CompleteUpload(ctx, owner, model.CompleteUploadRequest{
		Key: "recordings/owner-2/2024/03/1-x.m4a", FileName: "x.m4a", MimeType: "audio/mp4", Bytes: 1,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("foreign key err = %v", err)
	}
	_, err = svc.CompleteUpload(ctx, owner, model.CompleteUploadRequest{
		Key: "recordings/owner-1/2024/03/1-x.m4a", FileName: "x.m4a", MimeType: "audio/mp4", Bytes: 1, RecordedAt: "yesterday-ish",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad recordedAt err = %v", err)
	}
}

func TestCreateFromMetadata(t *testing.T) {
	svc, _ := newService(t)
	rec, err := svc.Create(context.Background(), owner, model.CreateRecordingRequest{
		RecordedAt:  float64(time.Date(2024, 7, 1, 23, 15, 0, 0, time.UTC).UnixMilli()),
		S3Key:       "recordings/owner-1/2024/07/1-a.m4a",
		FileName:    "a.m4a",
		MimeType:    "audio/mp4",
		Bytes:       new(int64),
		DurationSec: f64(12.5),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.DateBucketLondon != "2024-07-02" || rec.DurationSec == nil || *rec.DurationSec != 12.5 {
		t.Errorf("recording = %+v", rec)
	}
}

func TestUpdateRecording(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rec := uploadAndComplete(t, svc, owner, "2024-05-01T10:00:00Z")

	got, err := svc.Update(ctx, owner, rec.ID, model.UpdateRecordingRequest{Description: strPtr("with Alex")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "with Alex" || got.DateBucketLondon != "2024-05-01" {
		t.Errorf("description-only update = %+v", got)
	}

	got, err = svc.Update(ctx, owner, rec.ID, model.UpdateRecordingRequest{
		RecordedAt:  "2024-05-01T23:30:00Z",
		DurationSec: model.Optional[float64]{Set: true, Valid: true, Value: 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.DateBucketLondon != "2024-05-02" || got.DurationSec == nil || *got.DurationSec != 30 {
		t.Errorf("recordedAt update = %+v", got)
	}

	got, err = svc.Update(ctx, owner, rec.ID, model.UpdateRecordingRequest{DurationSec: model.Optional[float64]{Set: true}})
	if err != nil || got.DurationSec != nil {
		t.Fatalf("clear duration = %+v, %v", got, err)
	}

	if _, err := svc.Update(ctx, other, rec.ID, model.UpdateRecordingRequest{Description: strPtr("x")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign update err = %v", err)
	}
}

func TestDeleteRecordingObjectFailureStillDeletes(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	rec := uploadAndComplete(t, svc, owner, nil)
	if _, err := svc.CreateAnnotation(ctx, owner, rec.ID, model.CreateAnnotationRequest{StartSec: f64(0), EndSec: f64(1), Color: "red", Comment: "x"}); err != nil {
		t.Fatal(err)
	}

	store.deleteErr = errors.New("s3 unavailable")
	res, err := svc.Delete(ctx, owner, rec.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !res.Deleted || res.ObjectDeleted {
		t.Errorf("result = %+v, want deleted without object", res)
	}
	if _, err := svc.Get(ctx, owner, rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
}

func TestDeleteRecordingRemovesObject(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	rec := uploadAndComplete(t, svc, owner, nil)

	if _, err := svc.Delete(ctx, other, rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign delete err = %v", err)
	}
	res, err := svc.Delete(ctx, owner, rec.ID)
	if err != nil || !res.ObjectDeleted {
		t.Fatalf("Delete = %+v, %v", res, err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != rec.S3Key {
		t.Errorf("deleted objects = %v", store.deleted)
	}
}

func TestDownloadURL(t *testing.T) {
	svc, _ := newService(t)
	rec := uploadAndComplete(t, svc, owner, nil)
	got, err := svc.DownloadURL(context.Background(), owner, rec.ID)
	if err != nil || !strings.Contains(got.DownloadURL, rec.S3Key) {
		t.Fatalf("DownloadURL = %+v, %v", got, err)
	}
	if _, err := svc.DownloadURL(context.Background(), other, rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign download err = %v", err)
	}
}

func TestAnnotationsLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rec := uploadAndComplete(t, svc, owner, nil)

	second, err := svc.CreateAnnotation(ctx, owner, rec.ID, model.CreateAnnotationRequest{StartSec: f64(3.5), EndSec: f64(5), Color: "green", Comment: "better vowel"})
	if err != nil {
		t.Fatal(err)
	}
	first, err := svc.CreateAnnotation(ctx, owner, rec.ID, model.CreateAnnotationRequest{StartSec: f64(1), EndSec: f64(4), Color: "red", Comment: "dropped t"})
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListAnnotations(ctx, owner, rec.ID)
	if err != nil || len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("list = %+v, %v", list, err)
	}

	updated, err := svc.UpdateAnnotation(ctx, owner, rec.ID, first.ID, model.UpdateAnnotationRequest{Comment: strPtr("dropped final t")})
	if err != nil || updated.Comment != "dropped final t" || updated.StartSec != 1 || updated.Color != "red" {
		t.Fatalf("update = %+v, %v", updated, err)
	}

	// merged range must stay ordered
	if _, err := svc.UpdateAnnotation(ctx, owner, rec.ID, first.ID, model.UpdateAnnotationRequest{StartSec: f64(4)}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("inverted patch err = %v", err)
	}

	if err := svc.DeleteAnnotation(ctx, owner, rec.ID, "00000000-0000-0000-0000-000000000000"); err != nil {
		t.Errorf("delete of unknown annotation should succeed: %v", err)
	}
	if err := svc.DeleteAnnotation(ctx, owner, rec.ID, first.ID); err != nil {
		t.Fatal(err)
	}
	details, err := svc.Get(ctx, owner, rec.ID)
	if err != nil || len(details.Annotations) != 1 || details.Annotations[0].ID != second.ID {
		t.Fatalf("details = %+v, %v", details, err)
	}
}

func TestAnnotationRules(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rec := uploadAndComplete(t, svc, owner, nil)

	tests := []struct {
		name string
		req  model.CreateAnnotationRequest
	}{
		{"end equals start", model.CreateAnnotationRequest{StartSec: f64(2), EndSec: f64(2), Color: "red", Comment: "x"}},
		{"end before start", model.CreateAnnotationRequest{StartSec: f64(3), EndSec: f64(1), Color: "red", Comment: "x"}},
		{"negative start", model.CreateAnnotationRequest{StartSec: f64(-1), EndSec: f64(1), Color: "red", Comment: "x"}},
		{"bad color", model.CreateAnnotationRequest{StartSec: f64(0), EndSec: f64(1), Color: "blue", Comment: "x"}},
		{"empty comment", model.CreateAnnotationRequest{StartSec: f64(0), EndSec: f64(1), Color: "green"}},
		{"missing start", model.CreateAnnotationRequest{EndSec: f64(1), Color: "green", Comment: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateAnnotation(ctx, owner, rec.ID, tt.req); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}

	valid := model.CreateAnnotationRequest{StartSec: f64(0), EndSec: f64(1), Color: "green", Comment: "x"}
	if _, err := svc.CreateAnnotation(ctx, other, rec.ID, valid); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign create err = %v", err)
	}
	if _, err := svc.ListAnnotations(ctx, other, rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign list err = %v", err)
	}
	if err := svc.DeleteAnnotation(ctx, owner, rec.ID, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing annotationId err = %v", err)
	}
}
