package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Articulate/core/auth"
	"Articulate/core/practice"
	"Articulate/core/recording"
	"Articulate/internal/testdb"
	"Articulate/repository"
)

const (
	testSecret = "test-secret"
	ownerEmail = "learner@example.com"
)

type fakeObjects struct{}

func (fakeObjects) CreateUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://bucket.example/" + key + "?sig=put", nil
}

func (fakeObjects) CreateDownloadURL(_ context.Context, key string) (string, error) {
	return "https://bucket.example/" + key + "?sig=get", nil
}

func (fakeObjects) DeleteObject(context.Context, string) error { return nil }

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	gdb := testdb.Open(t)
	struggles := repository.NewGormStruggleRepository(gdb)
	sets := repository.NewGormPracticeSetRepository(gdb)
	cards := repository.NewGormPracticeCardRepository(gdb)
	recordings := repository.NewGormRecordingRepository(gdb)
	annotations := repository.NewGormAnnotationRepository(gdb)

	tokens := auth.NewTokenService(testSecret, time.Hour, auth.NewAllowlist([]string{ownerEmail, "second@example.com"}))
	h := NewAPIHandler(
		tokens,
		practice.NewService(struggles, sets, cards, nil),
		recording.NewService(recordings, annotations, fakeObjects{}),
		Counters{Struggles: struggles, Sets: sets, Recordings: recordings},
		nil,
	)
	return &testServer{handler: NewRouter(h, limiter), tokens: tokens}
}

func (s *testServer) token(t *testing.T, subject, email string) string {
	t.Helper()
	tok, err := s.tokens.Issue(subject, email)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (s *testServer) do(t *testing.T, token, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return rr.Code
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	var out map[string]string
	if code := s.do(t, "", http.MethodGet, "/healthz", nil, &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t, nil)

	var out errorBody
	if code := s.do(t, "", http.MethodGet, "/api/v1/struggles", nil, &out); code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", code)
	}
	if out.Error != "Unauthorized" {
		t.Errorf("error = %q", out.Error)
	}

	if code := s.do(t, "not-a-jwt", http.MethodGet, "/api/v1/struggles", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d", code)
	}

	// 用同一密钥签发但邮箱不在白名单中
	other := auth.NewTokenService(testSecret, time.Hour, auth.NewAllowlist([]string{"intruder@example.com"}))
	tok, err := other.Issue("intruder", "intruder@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/bootstrap", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("not allowlisted: status = %d", code)
	}
}

func TestPreflightSkipsAuth(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/struggles", nil)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestAllowlistCheckAndBootstrap(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "owner-1", "Learner@Example.com")

	var check struct {
		Allowed bool   `json:"allowed"`
		UserID  string `json:"userId"`
		Email   string `json:"email"`
	}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/auth/allowlist-check", nil, &check); code != http.StatusOK {
		t.Fatalf("allowlist-check status = %d", code)
	}
	if !check.Allowed || check.UserID != "owner-1" || check.Email != ownerEmail {
		t.Errorf("allowlist-check = %+v", check)
	}

	var st map[string]interface{}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/struggles", map[string]string{"title": "Dark L"}, &st); code != http.StatusCreated {
		t.Fatalf("create struggle status = %d", code)
	}

	var boot bootstrapResponse
	if code := s.do(t, tok, http.MethodGet, "/api/v1/bootstrap", nil, &boot); code != http.StatusOK {
		t.Fatalf("bootstrap status = %d", code)
	}
	if boot.UserID != "owner-1" || boot.Counts.Struggles != 1 || boot.Counts.Sets != 0 || boot.Counts.Recordings != 0 {
		t.Errorf("bootstrap = %+v", boot)
	}
}

func TestPracticeSetNumberingFlow(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "owner-1", ownerEmail)

	var st struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/struggles", map[string]string{"title": "R-linking"}, &st); code != http.StatusCreated {
		t.Fatalf("create struggle status = %d", code)
	}
	if st.Status != "active" {
		t.Errorf("status = %q, want active", st.Status)
	}

	body := map[string]interface{}{
		"section_type": "struggle",
		"struggle_id":  st.ID,
		"date":         "2024-05-01",
		"title":        "Set A",
	}
	for want := 1; want <= 2; want++ {
		var set struct {
			SetIndex         int    `json:"set_index"`
			DateBucketLondon string `json:"date_bucket_london"`
		}
		if code := s.do(t, tok, http.MethodPost, "/api/v1/practice-sets", body, &set); code != http.StatusCreated {
			t.Fatalf("create set #%d status = %d", want, code)
		}
		if set.SetIndex != want || set.DateBucketLondon != "2024-05-01" {
			t.Errorf("set #%d = %+v", want, set)
		}
	}

	// 显式指定已存在的编号
	body["set_index"] = 1
	var conflict errorBody
	if code := s.do(t, tok, http.MethodPost, "/api/v1/practice-sets", body, &conflict); code != http.StatusConflict {
		t.Errorf("explicit duplicate index status = %d, want 409", code)
	}

	var overview []struct {
		ID       string `json:"id"`
		SetCount int    `json:"set_count"`
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/struggles/overview", nil, &overview); code != http.StatusOK {
		t.Fatalf("overview status = %d", code)
	}
	if len(overview) != 1 || overview[0].SetCount != 2 {
		t.Errorf("overview = %+v", overview)
	}

	var sets []map[string]interface{}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/practice-sets?section_type=struggle&struggle_id="+st.ID, nil, &sets); code != http.StatusOK {
		t.Fatalf("list sets status = %d", code)
	}
	if len(sets) != 2 {
		t.Errorf("listed %d sets, want 2", len(sets))
	}

	var bad errorBody
	if code := s.do(t, tok, http.MethodGet, "/api/v1/practice-sets?section_type=weekly", nil, &bad); code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d", code)
	}
	if bad.Error != "Invalid query" || bad.Details["section_type"] == "" {
		t.Errorf("bad filter body = %+v", bad)
	}
}

func TestBulkCardsFlow(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "owner-1", ownerEmail)

	var set struct {
		ID string `json:"id"`
	}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/practice-sets", map[string]interface{}{
		"section_type": "misc", "title": "Linking drills",
	}, &set); code != http.StatusCreated {
		t.Fatalf("create set status = %d", code)
	}

	card := func(order int) map[string]interface{} {
		return map[string]interface{}{
			"order_index":     order,
			"sentence":        fmt.Sprintf("Sentence %d", order),
			"ipa":             "ˈsɛntəns",
			"stress_map":      "SEN-tence",
			"intonation_text": "falling",
		}
	}
	bulkPath := "/api/v1/practice-sets/" + set.ID + "/cards/bulk"

	var res struct {
		Inserted     int `json:"inserted"`
		TagsInserted int `json:"tagsInserted"`
	}
	code := s.do(t, tok, http.MethodPost, bulkPath, map[string]interface{}{
		"cards": []interface{}{card(0), card(1), card(2)},
	}, &res)
	if code != http.StatusCreated || res.Inserted != 3 {
		t.Fatalf("bulk insert: status=%d result=%+v", code, res)
	}

	code = s.do(t, tok, http.MethodPost, bulkPath, map[string]interface{}{
		"replaceExisting": true,
		"cards":           []interface{}{card(5)},
	}, &res)
	if code != http.StatusCreated || res.Inserted != 1 {
		t.Fatalf("bulk replace: status=%d result=%+v", code, res)
	}

	var preview struct {
		Cards []struct {
			OrderIndex int `json:"order_index"`
		} `json:"cards"`
		TotalCards int64 `json:"total_cards"`
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/practice-sets/"+set.ID+"/preview", nil, &preview); code != http.StatusOK {
		t.Fatalf("preview status = %d", code)
	}
	if preview.TotalCards != 1 || len(preview.Cards) != 1 || preview.Cards[0].OrderIndex != 5 {
		t.Errorf("preview = %+v", preview)
	}

	// 追加一张已存在的 order_index
	if code := s.do(t, tok, http.MethodPost, bulkPath, map[string]interface{}{
		"cards": []interface{}{card(5)},
	}, nil); code != http.StatusConflict {
		t.Fatalf("bulk append existing order status = %d, want 409", code)
	}

	var bad errorBody
	code = s.do(t, tok, http.MethodPost, bulkPath, map[string]interface{}{
		"cards": []interface{}{card(1), card(1)},
	}, &bad)
	if code != http.StatusBadRequest {
		t.Fatalf("duplicate order_index status = %d", code)
	}
	if _, ok := bad.Details["cards[1].order_index"]; !ok {
		t.Errorf("details = %v", bad.Details)
	}

	if code := s.do(t, tok, http.MethodGet, "/api/v1/practice-sets/"+set.ID+"/preview?limit=50", nil, nil); code != http.StatusBadRequest {
		t.Errorf("limit=50 status = %d", code)
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/practice-sets/"+set.ID+"/preview?limit=abc", nil, nil); code != http.StatusBadRequest {
		t.Errorf("limit=abc status = %d", code)
	}

	// 其他用户看不到这个练习集
	otherTok := s.token(t, "owner-2", "second@example.com")
	var nf errorBody
	if code := s.do(t, otherTok, http.MethodGet, "/api/v1/practice-sets/"+set.ID, nil, &nf); code != http.StatusNotFound {
		t.Errorf("foreign set status = %d", code)
	}
	if nf.Error != "Practice set not found" {
		t.Errorf("foreign set error = %q", nf.Error)
	}

	var del map[string]bool
	if code := s.do(t, tok, http.MethodDelete, "/api/v1/practice-sets/"+set.ID, nil, &del); code != http.StatusOK || !del["deleted"] {
		t.Errorf("delete set: status=%d body=%v", code, del)
	}
}

func TestRecordingAnnotationFlow(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "owner-1", ownerEmail)

	var up struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
	}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/recordings/presign-upload", map[string]interface{}{
		"fileName": "Morning Chat.M4A", "mimeType": "audio/mp4", "bytes": 4096,
	}, &up); code != http.StatusOK {
		t.Fatalf("presign-upload status = %d", code)
	}

	var rec struct {
		ID               string `json:"id"`
		DateBucketLondon string `json:"date_bucket_london"`
	}
	if code := s.do(t, tok, http.MethodPost, "/api/v1/recordings/complete-upload", map[string]interface{}{
		"key": up.Key, "fileName": "Morning Chat.M4A", "mimeType": "audio/mp4", "bytes": 4096,
		"recordedAt": "2024-03-31T23:30:00Z",
	}, &rec); code != http.StatusCreated {
		t.Fatalf("complete-upload status = %d", code)
	}
	if rec.DateBucketLondon != "2024-04-01" {
		t.Errorf("bucket = %q, want 2024-04-01", rec.DateBucketLondon)
	}

	annPath := "/api/v1/recordings/" + rec.ID + "/annotations"
	for _, a := range []map[string]interface{}{
		{"startSec": 12.5, "endSec": 14, "color": "red", "comment": "flat intonation"},
		{"startSec": 3, "endSec": 6.25, "color": "green", "comment": "nice linking"},
	} {
		if code := s.do(t, tok, http.MethodPost, annPath, a, nil); code != http.StatusCreated {
			t.Fatalf("create annotation status = %d", code)
		}
	}

	var list []struct {
		ID       string  `json:"id"`
		StartSec float64 `json:"start_sec"`
	}
	if code := s.do(t, tok, http.MethodGet, annPath, nil, &list); code != http.StatusOK {
		t.Fatalf("list annotations status = %d", code)
	}
	if len(list) != 2 || list[0].StartSec != 3 || list[1].StartSec != 12.5 {
		t.Fatalf("annotations = %+v", list)
	}

	var bad errorBody
	if code := s.do(t, tok, http.MethodPatch, annPath+"?annotationId="+list[0].ID,
		map[string]interface{}{"endSec": 1}, &bad); code != http.StatusBadRequest {
		t.Errorf("inverted range status = %d", code)
	}
	if code := s.do(t, tok, http.MethodDelete, annPath, nil, nil); code != http.StatusBadRequest {
		t.Errorf("delete without annotationId status = %d", code)
	}

	var dl struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/recordings/"+rec.ID+"/presign-download", nil, &dl); code != http.StatusOK {
		t.Fatalf("presign-download status = %d", code)
	}
	if dl.DownloadURL != "https://bucket.example/"+up.Key+"?sig=get" {
		t.Errorf("downloadUrl = %q", dl.DownloadURL)
	}

	otherTok := s.token(t, "owner-2", "second@example.com")
	if code := s.do(t, otherTok, http.MethodGet, annPath, nil, nil); code != http.StatusNotFound {
		t.Errorf("foreign annotations status = %d", code)
	}

	var result struct {
		Deleted       bool `json:"deleted"`
		ObjectDeleted bool `json:"objectDeleted"`
	}
	if code := s.do(t, tok, http.MethodDelete, "/api/v1/recordings/"+rec.ID, nil, &result); code != http.StatusOK {
		t.Fatalf("delete recording status = %d", code)
	}
	if !result.Deleted || !result.ObjectDeleted {
		t.Errorf("delete result = %+v", result)
	}
	if code := s.do(t, tok, http.MethodGet, "/api/v1/recordings/"+rec.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(0.001, 1))
	tok := s.token(t, "owner-1", ownerEmail)
	otherTok := s.token(t, "owner-2", "second@example.com")

	if code := s.do(t, tok, http.MethodGet, "/api/v1/struggles", nil, nil); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	var out errorBody
	if code := s.do(t, tok, http.MethodGet, "/api/v1/struggles", nil, &out); code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", code)
	}
	// 限流按 owner 独立计算
	if code := s.do(t, otherTok, http.MethodGet, "/api/v1/struggles", nil, nil); code != http.StatusOK {
		t.Errorf("other owner status = %d", code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	l := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("owner") {
			t.Fatalf("request %d rejected with limiting disabled", i)
		}
	}
	var nilLimiter *RateLimiter
	if !nilLimiter.Allow("owner") {
		t.Error("nil limiter should allow")
	}
}
