package domain

import (
	"sort"
	"time"
)

// ExpenseKind separates reimbursable costs from informational ones.
type ExpenseKind string

const (
	// ExpenseReimbursable costs (lab fees) form the lab target and are recovered first.
	ExpenseReimbursable ExpenseKind = "reimbursable"
	// ExpenseOther is informational and never enters the allocation.
	ExpenseOther ExpenseKind = "other"
)

// IsValid checks if the kind is known.
func (k ExpenseKind) IsValid() bool {
	return k == ExpenseReimbursable || k == ExpenseOther
}

// Expense is a cost recorded against a case.
type Expense struct {
	ID          string
	CaseID      string
	Kind        ExpenseKind
	Description string
	Amount      int64
	Date        time.Time
	Settled     bool
	CreatedAt   time.Time
}

// Validate checks the expense amount and kind.
func (e *Expense) Validate() error {
	if e.Amount < 0 {
		return NewValidationError("amount", "must be an integer >= 0")
	}
	if e.Kind != "" && !e.Kind.IsValid() {
		return NewValidationError("kind", "must be reimbursable or other")
	}
	return nil
}

// IsReimbursable reports whether the expense counts toward the lab target.
// Rows without a kind predate the column and are reimbursable.
func (e *Expense) IsReimbursable() bool {
	return e.Kind == "" || e.Kind == ExpenseReimbursable
}

// PaymentMethod tags how a payment was collected. It never affects allocation.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
	PaymentOther    PaymentMethod = "other"
)

// PaymentMethods lists the known methods in reporting order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer, PaymentCard, PaymentOther}

// IsValid checks if the method is known.
func (m PaymentMethod) IsValid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is money collected from the payer for a case. Payments are
// immutable once recorded.
type Payment struct {
	ID        string
	CaseID    string
	Amount    int64
	Date      time.Time
	Method    PaymentMethod
	Reference string
	Notes     string
	CreatedAt time.Time
}

// Validate checks the payment amount.
func (p *Payment) Validate() error {
	if p.Amount <= 0 {
		return NewValidationError("amount", "must be an integer > 0")
	}
	return nil
}

// SortPaymentsByDate returns a copy of payments ordered ascending by date.
// Payments sharing a date keep their input order.
func SortPaymentsByDate(payments []*Payment) []*Payment {
	sorted := make([]*Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// SortExpensesByDate returns a copy of expenses ordered ascending by date.
func SortExpensesByDate(expenses []*Expense) []*Expense {
	sorted := make([]*Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
