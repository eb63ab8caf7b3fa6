package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/infrastructure/auth"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printJSON(&out, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if out.String() != expected {
		t.Fatalf("unexpected json output:\n%s", out.String())
	}
}

func TestReportMonthlyCmd(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reports/monthly" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"period":{"label":"2025-03"}}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "--url", srv.URL, "--token", "abc", "report", "monthly", "2025", "3", "--best-effort")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if gotQuery != "bestEffort=1&month=3&year=2025" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if !strings.Contains(out, `"label": "2025-03"`) {
		t.Fatalf("expected indented report, got %s", out)
	}
}

func TestReportMonthlyCmd_InvalidMonth(t *testing.T) {
	if _, err := runCLI(t, "report", "monthly", "2025", "13"); err == nil {
		t.Fatalf("expected invalid month to fail before any request")
	}
}

func TestReportDailyCmd_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "2025-02-30" {
			t.Fatalf("expected date to be forwarded, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"failed to build report","message":"invalid input: date is not a calendar date"}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "--url", srv.URL, "report", "daily", "2025-02-30")

	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected a 400 api error, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "calendar date") {
		t.Fatalf("expected the server message, got %q", apiErr.Message)
	}
}

func TestReportExportCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("xlsx-bytes"))
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "march.xlsx")
	out, err := runCLI(t, "--url", srv.URL, "report", "export", "2025", "3", "-o", target)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil || string(data) != "xlsx-bytes" {
		t.Fatalf("expected workbook to be written, got %q (%v)", data, err)
	}
	if !strings.Contains(out, "wrote "+target) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBackfillCmd_DryRun(t *testing.T) {
	var method, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, query = r.Method, r.URL.RawQuery
		w.Write([]byte(`{"marked":[],"needs_review":[],"dry_run":true}`))
	}))
	defer srv.Close()

	if _, err := runCLI(t, "--url", srv.URL, "backfill", "legacy-manual", "--dry-run"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if method != http.MethodPost || query != "dryRun=1" {
		t.Fatalf("unexpected request %s ?%s", method, query)
	}
}

func TestCaseSummaryCmd(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"case":{"id":"case-1"}}`))
	}))
	defer srv.Close()

	if _, err := runCLI(t, "--url", srv.URL, "case", "summary", "case-1"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if path != "/api/v1/cases/case-1/summary" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := runCLI(t, "token", "alice", "--secret", "s3cret", "--role", "operator")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != domain.RoleOperator {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenCmd_RejectsUnknownRole(t *testing.T) {
	if _, err := runCLI(t, "token", "alice", "--secret", "s3cret", "--role", "root"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMigrateCmd_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := runCLI(t, "migrate", "version"); err == nil {
		t.Fatalf("expected missing database url to fail")
	}
}
