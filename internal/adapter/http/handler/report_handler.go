package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/caseledger/internal/adapter/http/dto"
	"github.com/iho/caseledger/internal/infrastructure/export"
	"github.com/iho/caseledger/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	MonthlyReport(ctx context.Context, year, month int, opts usecase.ReportOptions) (*usecase.PeriodReport, error)
	DailyReport(ctx context.Context, date string, opts usecase.ReportOptions) (*usecase.PeriodReport, error)
	PendingBalances(ctx context.Context, year, month int, opts usecase.ReportOptions) (*usecase.PendingReport, error)
}

// ReportCache stores rendered report bodies. Slot pins a key to the cache
// generation current at the start of a request; Get and Set address slots.
type ReportCache interface {
	Slot(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, slot string) ([]byte, bool, error)
	Set(ctx context.Context, slot string, payload []byte) error
}

// ReportHandler handles report HTTP requests.
type ReportHandler struct {
	reportUC ReportService
	cache    ReportCache
}

// NewReportHandler creates a new ReportHandler. cache may be nil.
func NewReportHandler(reportUC ReportService, cache ReportCache) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, cache: cache}
}

// Monthly returns the report of ?year=&month=.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		writeDomainError(w, "invalid parameters", err)
		return
	}
	opts := reportOptions(r)

	key := fmt.Sprintf("monthly:%04d-%02d:%t", year, month, opts.BestEffort)
	h.cached(w, r, key, func(ctx context.Context) (any, error) {
		report, err := h.reportUC.MonthlyReport(ctx, year, month, opts)
		if err != nil {
			return nil, err
		}
		return dto.PeriodReportFromUseCase(report), nil
	})
}

// Daily returns the report of ?date=YYYY-MM-DD, or of today.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	opts := reportOptions(r)

	build := func(ctx context.Context) (any, error) {
		report, err := h.reportUC.DailyReport(ctx, date, opts)
		if err != nil {
			return nil, err
		}
		return dto.PeriodReportFromUseCase(report), nil
	}

	// "today" moves, so only explicit dates are cached.
	if date == "" {
		h.cached(w, r, "", build)
		return
	}
	h.cached(w, r, fmt.Sprintf("daily:%s:%t", date, opts.BestEffort), build)
}

// Pending returns the cases still owing A or B at the end of ?year=&month=.
func (h *ReportHandler) Pending(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		writeDomainError(w, "invalid parameters", err)
		return
	}
	opts := reportOptions(r)

	key := fmt.Sprintf("pending:%04d-%02d:%t", year, month, opts.BestEffort)
	h.cached(w, r, key, func(ctx context.Context) (any, error) {
		report, err := h.reportUC.PendingBalances(ctx, year, month, opts)
		if err != nil {
			return nil, err
		}
		return dto.PendingReportFromUseCase(report), nil
	})
}

// MonthlyExport renders the monthly report as a spreadsheet download.
func (h *ReportHandler) MonthlyExport(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		writeDomainError(w, "invalid parameters", err)
		return
	}

	report, err := h.reportUC.MonthlyReport(r.Context(), year, month, reportOptions(r))
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeWorkbook(w, r, report)
}

// DailyExport renders the daily report as a spreadsheet download.
func (h *ReportHandler) DailyExport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportUC.DailyReport(r.Context(), r.URL.Query().Get("date"), reportOptions(r))
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	writeWorkbook(w, r, report)
}

// cached serves key from the cache when present, otherwise builds, stores and
// writes the response. An empty key or a nil cache bypasses caching. Cache
// failures are logged and never fail the request.
func (h *ReportHandler) cached(w http.ResponseWriter, r *http.Request, key string, build func(context.Context) (any, error)) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	useCache := h.cache != nil && key != ""

	var slot string
	if useCache {
		var err error
		if slot, err = h.cache.Slot(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("report cache unavailable")
			useCache = false
		}
	}

	if useCache {
		payload, ok, err := h.cache.Get(ctx, slot)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		} else if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	resp, err := build(ctx)
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode report", "")
		return
	}

	if useCache {
		if err := h.cache.Set(ctx, slot, payload); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
		}
		w.Header().Set("X-Cache", "MISS")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func writeWorkbook(w http.ResponseWriter, r *http.Request, report *usecase.PeriodReport) {
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render workbook")
		writeError(w, http.StatusInternalServerError, "failed to render workbook", "")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report.Period)))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func yearMonth(r *http.Request) (int, int, error) {
	year, err := requireIntQuery(r, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := requireIntQuery(r, "month")
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func reportOptions(r *http.Request) usecase.ReportOptions {
	return usecase.ReportOptions{BestEffort: parseBoolQuery(r, "bestEffort")}
}
