package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/caseledger/internal/adapter/http/dto"
	"github.com/iho/caseledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cases?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/cases?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestRequireIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports/monthly?year=2025&month=x", nil)

	if got, err := requireIntQuery(req, "year"); err != nil || got != 2025 {
		t.Fatalf("expected 2025, got %d err=%v", got, err)
	}
	if _, err := requireIntQuery(req, "month"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for non-integer, got %v", err)
	}
	if _, err := requireIntQuery(req, "day"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing param, got %v", err)
	}
}

func TestParseBoolQuery(t *testing.T) {
	tests := map[string]bool{
		"/r?bestEffort=1":     true,
		"/r?bestEffort=true":  true,
		"/r?bestEffort=0":     false,
		"/r?bestEffort=maybe": false,
		"/r":                  false,
	}
	for target, want := range tests {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if got := parseBoolQuery(req, "bestEffort"); got != want {
			t.Fatalf("%s: expected %v, got %v", target, want, got)
		}
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"case not found", domain.ErrCaseNotFound, http.StatusNotFound},
		{"payment not found", fmt.Errorf("delete: %w", domain.ErrPaymentNotFound), http.StatusNotFound},
		{"expense not found", domain.ErrExpenseNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("amount", "must be an integer > 0"), http.StatusBadRequest},
		{"locked", domain.ErrCaseLocked, http.StatusBadRequest},
		{"hard delete disabled", domain.ErrHardDeleteDisabled, http.StatusForbidden},
		{"insufficient role", domain.ErrInsufficientRole, http.StatusForbidden},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized},
		{"inconsistency", domain.ErrInconsistentAllocation, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func TestWriteDomainError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, "failed to record payment", domain.NewValidationError("amount", "must be an integer > 0"))

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if rr.Code != http.StatusBadRequest || resp.Field != "amount" {
		t.Fatalf("expected 400 naming the field, got %d %+v", rr.Code, resp)
	}

	rr = httptest.NewRecorder()
	writeDomainError(rr, "failed", errors.New("connection refused to 10.0.0.5"))
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || resp.Message != "" {
		t.Fatalf("expected internal details to be hidden, got %d %+v", rr.Code, resp)
	}
}
