package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
	"github.com/iho/caseledger/internal/usecase/mocks"
)

func TestExpenseUseCase_RecordExpense_DefaultsToReimbursable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	caseRepo := mocks.NewMockCaseRepository(ctrl)
	expenseRepo := mocks.NewMockExpenseRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	idGen.EXPECT().Generate().Return("exp-1")
	caseRepo.EXPECT().GetByID(gomock.Any(), "case-1").Return(&domain.Case{ID: "case-1"}, nil)
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	expenseRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewExpenseUseCase(txManager, caseRepo, expenseRepo, idGen)

	date := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	expense, err := uc.RecordExpense(context.Background(), usecase.RecordExpenseInput{
		CaseID: "case-1",
		Amount: 0,
		Date:   &date,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.Kind != domain.ExpenseReimbursable {
		t.Errorf("expected reimbursable, got %s", expense.Kind)
	}
	if !expense.Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, expense.Date)
	}
}

func TestExpenseUseCase_RecordExpense_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("exp-1").AnyTimes()

	uc := usecase.NewExpenseUseCase(mocks.NewMockTransactionManager(ctrl), mocks.NewMockCaseRepository(ctrl), mocks.NewMockExpenseRepository(ctrl), idGen)

	if _, err := uc.RecordExpense(context.Background(), usecase.RecordExpenseInput{CaseID: "c", Amount: -1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative amount, got %v", err)
	}
	if _, err := uc.RecordExpense(context.Background(), usecase.RecordExpenseInput{CaseID: "c", Amount: 1, Kind: "rent"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	long := strings.Repeat("d", domain.MaxExpenseDescriptionLength+1)
	if _, err := uc.RecordExpense(context.Background(), usecase.RecordExpenseInput{CaseID: "c", Amount: 1, Description: long}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long description, got %v", err)
	}
}

func TestExpenseUseCase_DeleteExpense(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	expenseRepo := mocks.NewMockExpenseRepository(ctrl)

	expenseRepo.EXPECT().GetByID(gomock.Any(), "exp-1").Return(&domain.Expense{ID: "exp-1"}, nil)
	expenseRepo.EXPECT().GetByID(gomock.Any(), "exp-2").Return(nil, domain.ErrExpenseNotFound)
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	expenseRepo.EXPECT().Delete(gomock.Any(), tx, "exp-1").Return(nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewExpenseUseCase(txManager, mocks.NewMockCaseRepository(ctrl), expenseRepo, mocks.NewMockIDGenerator(ctrl))

	if err := uc.DeleteExpense(context.Background(), "exp-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.DeleteExpense(context.Background(), "exp-2"); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}
