package handler

import (
	"context"
	"net/http"

	"github.com/iho/caseledger/internal/adapter/http/dto"
	"github.com/iho/caseledger/internal/usecase"
)

// BackfillService defines the behavior needed by AdminHandler.
type BackfillService interface {
	BackfillLegacyManual(ctx context.Context, dryRun bool) (*usecase.BackfillResult, error)
}

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	backfill BackfillService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(backfill BackfillService) *AdminHandler {
	return &AdminHandler{backfill: backfill}
}

// Backfill marks legacy fixed-amount cases as manual. ?dryRun=1 only reports.
func (h *AdminHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	result, err := h.backfill.BackfillLegacyManual(r.Context(), parseBoolQuery(r, "dryRun"))
	if err != nil {
		writeDomainError(w, "backfill failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BackfillFromUseCase(result))
}
