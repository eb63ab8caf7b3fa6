package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/caseledger/internal/adapter/http/dto"
	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// CaseService defines the behavior needed by CaseHandler.
type CaseService interface {
	CreateCase(ctx context.Context, input usecase.CreateCaseInput) (*domain.Case, error)
	GetCase(ctx context.Context, id string) (*domain.Case, error)
	ListCases(ctx context.Context, input usecase.ListCasesInput) ([]*domain.Case, error)
	UpdateCase(ctx context.Context, id string, input usecase.UpdateCaseInput) (*domain.Case, error)
	SetStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error)
	RemoveCase(ctx context.Context, id string, mode usecase.RemoveMode) (*usecase.RemoveResult, error)
	GetCaseSummary(ctx context.Context, id string) (*usecase.CaseSummary, error)
}

// CaseHandler handles case-related HTTP requests.
type CaseHandler struct {
	caseUC CaseService
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(caseUC CaseService) *CaseHandler {
	return &CaseHandler{caseUC: caseUC}
}

// Create opens a new case.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.caseUC.CreateCase(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create case", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CaseFromDomain(c))
}

// Get retrieves a case by ID.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	c, err := h.caseUC.GetCase(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get case", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CaseFromDomain(c))
}

// List lists cases, newest first.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cases, err := h.caseUC.ListCases(r.Context(), usecase.ListCasesInput{
		PatientID:   q.Get("patient_id"),
		Status:      domain.CaseStatus(q.Get("status")),
		IncludeVoid: parseBoolQuery(r, "include_void"),
		Limit:       parseIntQuery(r, "limit", 20),
	})
	if err != nil {
		writeDomainError(w, "failed to list cases", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCasesResponse{
		Cases: dto.CasesFromDomain(cases),
		Total: int64(len(cases)),
	})
}

// Update changes the fields present in the request body.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	var req dto.UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.caseUC.UpdateCase(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to update case", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CaseFromDomain(c))
}

// SetStatus moves the case through its lifecycle.
func (h *CaseHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.caseUC.SetStatus(r.Context(), id, domain.CaseStatus(req.Status))
	if err != nil {
		writeDomainError(w, "failed to set case status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CaseFromDomain(c))
}

// Remove voids the case, or deletes it with ?mode=delete.
func (h *CaseHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	mode := usecase.RemoveMode(r.URL.Query().Get("mode"))

	result, err := h.caseUC.RemoveCase(r.Context(), id, mode)
	if err != nil {
		writeDomainError(w, "failed to remove case", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RemoveCaseResponse{
		ID:          id,
		Mode:        string(result.Mode),
		AlreadyVoid: result.AlreadyVoid,
	})
}

// Summary returns the case with its movements, allocation and waterfall.
func (h *CaseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	summary, err := h.caseUC.GetCaseSummary(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get case summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CaseSummaryFromUseCase(summary))
}
