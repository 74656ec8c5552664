package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"Articulate/config"
)

func newTestStore(t *testing.T) *MinioStore {
	t.Helper()
	s, err := NewMinioStore(&config.Config{
		S3Endpoint:   "localhost:9000",
		S3Region:     "us-east-1",
		S3AccessKey:  "access",
		S3SecretKey:  "secret-key",
		S3Bucket:     "recordings-test",
		S3PresignTTL: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewMinioStore: %v", err)
	}
	return s
}

func TestCreateUploadURLSignsContentType(t *testing.T) {
	s := newTestStore(t)
	raw, err := s.CreateUploadURL(context.Background(), "recordings/u1/2024/05/1-a.m4a", "audio/mp4")
	if err != nil {
		t.Fatalf("CreateUploadURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "localhost:9000" || !strings.HasPrefix(u.Path, "/recordings-test/recordings/u1/") {
		t.Errorf("unexpected url %s", raw)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "900" {
		t.Errorf("X-Amz-Expires = %q, want 900", q.Get("X-Amz-Expires"))
	}
	if !strings.Contains(q.Get("X-Amz-SignedHeaders"), "content-type") {
		t.Errorf("content-type not signed: %q", q.Get("X-Amz-SignedHeaders"))
	}
}

func TestCreateDownloadURL(t *testing.T) {
	s := newTestStore(t)
	raw, err := s.CreateDownloadURL(context.Background(), "recordings/u1/2024/05/1-a.m4a")
	if err != nil {
		t.Fatalf("CreateDownloadURL: %v", err)
	}
	if !strings.Contains(raw, "X-Amz-Signature=") {
		t.Errorf("url not signed: %s", raw)
	}
}

func TestUsageByKind(t *testing.T) {
	usage := UsageByKind([]ObjectInfo{
		{Key: "recordings/u1/a.M4A", Size: 10},
		{Key: "recordings/u1/b.mp3", Size: 5},
		{Key: "notes/readme", Size: 1},
	})
	if usage["audio"] != 15 || usage["other"] != 1 {
		t.Errorf("usage = %v", usage)
	}
}

func TestBucketStatsAdd(t *testing.T) {
	var stats BucketStats
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	stats.Add(ObjectInfo{Size: 3, LastModified: newer})
	stats.Add(ObjectInfo{Size: 4, LastModified: older})
	if stats.TotalObjects != 2 || stats.TotalSize != 7 || !stats.LastModified.Equal(newer) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		512:         "512 B",
		2048:        "2.0 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
