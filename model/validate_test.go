package model

import (
	"encoding/json"
	"errors"
	"testing"

	"Articulate/apperr"
)

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *apperr.ValidationError, got %v", err)
	}
	return ve.Details
}

func TestValidateBulkCardsRequest(t *testing.T) {
	var req BulkCardsRequest
	body := `{"cards":[{"order_index":0,"sentence":"s","ipa":"i","stress_map":"m","intonation_text":"t","contour_pattern":"zigzag"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	details := validationDetails(t, Validate("Invalid request body", req))
	if _, ok := details["cards[0].contour_pattern"]; !ok {
		t.Errorf("expected contour_pattern detail, got %v", details)
	}
}

func TestValidateOrderIndexZeroIsPresent(t *testing.T) {
	var req BulkCardsRequest
	body := `{"cards":[{"order_index":0,"sentence":"s","ipa":"i","stress_map":"m","intonation_text":"t"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Validate("Invalid request body", req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateMissingOrderIndex(t *testing.T) {
	var req BulkCardsRequest
	body := `{"cards":[{"sentence":"s","ipa":"i","stress_map":"m","intonation_text":"t"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	details := validationDetails(t, Validate("Invalid request body", req))
	if details["cards[0].order_index"] != "is required" {
		t.Errorf("unexpected details %v", details)
	}
}

func TestValidateEmptyCards(t *testing.T) {
	details := validationDetails(t, Validate("Invalid request body", BulkCardsRequest{}))
	if _, ok := details["cards"]; !ok {
		t.Errorf("expected cards detail, got %v", details)
	}
}

func TestValidateOptionalDuration(t *testing.T) {
	var req UpdateRecordingRequest
	if err := json.Unmarshal([]byte(`{"durationSec":-1}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	details := validationDetails(t, Validate("Invalid request body", req))
	if _, ok := details["durationSec"]; !ok {
		t.Errorf("expected durationSec detail, got %v", details)
	}

	req = UpdateRecordingRequest{}
	if err := json.Unmarshal([]byte(`{"durationSec":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Validate("Invalid request body", req); err != nil {
		t.Errorf("null duration should be valid, got %v", err)
	}
	if !req.DurationSec.Set || req.DurationSec.Valid {
		t.Errorf("expected set-but-null optional, got %+v", req.DurationSec)
	}
}

func TestUpdateStruggleChanges(t *testing.T) {
	var req UpdateStruggleRequest
	if err := json.Unmarshal([]byte(`{"description":null,"status":"archived"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	changes := req.Changes()
	if v, ok := changes["description"]; !ok || v != nil {
		t.Errorf("expected description cleared, got %v", changes)
	}
	if changes["status"] != "archived" {
		t.Errorf("expected status archived, got %v", changes)
	}
	if _, ok := changes["title"]; ok {
		t.Errorf("title must not be touched")
	}
}

func TestValidateAnnotationColor(t *testing.T) {
	start, end := 1.0, 2.0
	req := CreateAnnotationRequest{StartSec: &start, EndSec: &end, Color: "blue", Comment: "x"}
	details := validationDetails(t, Validate("Invalid request body", req))
	if _, ok := details["color"]; !ok {
		t.Errorf("expected color detail, got %v", details)
	}
}
