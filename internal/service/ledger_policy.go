package service

import (
	"math"
	"strings"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MaxAmount is the largest integer a JSON number or a PostgREST numeric
// round-trips exactly (2^53-1).
const MaxAmount int64 = 1<<53 - 1

var maxAmount = decimal.NewFromInt(MaxAmount)

// addAmount adds two non-negative amounts, saturating at MaxInt64.
func addAmount(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// ParseAmount parses a form amount into whole currency units.
// Negative, fractional and non-numeric input is a validation error.
func ParseAmount(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &domain.ErrValidation{Field: field, Message: "is required"}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, &domain.ErrValidation{Field: field, Message: "must be a number"}
	}
	if d.IsNegative() {
		return 0, &domain.ErrValidation{Field: field, Message: "must not be negative"}
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, &domain.ErrValidation{Field: field, Message: "must be a whole number"}
	}
	if d.GreaterThan(maxAmount) {
		return 0, &domain.ErrValidation{Field: field, Message: "is too large"}
	}
	return d.IntPart(), nil
}

// ClassifyStatus applies the approval threshold. Income is always
// approved; an expense is pending only when it exceeds the threshold.
func ClassifyStatus(kind domain.TransactionKind, amount int64) domain.TransactionStatus {
	if kind == domain.KindExpense && amount > domain.ApprovalThreshold {
		return domain.StatusPending
	}
	return domain.StatusApproved
}

// ComputeTotals sums a ledger snapshot. Pending expenses count toward the
// expense total, rejected ones do not. The result does not depend on order.
// Sums saturate at MaxInt64 instead of wrapping, so the balance keeps its sign.
func ComputeTotals(txs []domain.Transaction) domain.Totals {
	var t domain.Totals
	for _, tx := range txs {
		switch tx.Kind {
		case domain.KindIncome:
			t.Income = addAmount(t.Income, tx.Amount)
		case domain.KindExpense:
			if tx.EffectiveStatus() != domain.StatusRejected {
				t.Expense = addAmount(t.Expense, tx.Amount)
			}
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// ListPending keeps the expenses awaiting a decision, in input order.
func ListPending(txs []domain.Transaction) []domain.Transaction {
	pending := make([]domain.Transaction, 0)
	for _, tx := range txs {
		if tx.Kind == domain.KindExpense && tx.EffectiveStatus() == domain.StatusPending {
			pending = append(pending, tx)
		}
	}
	return pending
}

// BuildTransaction validates a draft and classifies it.
func BuildTransaction(d *domain.TransactionDraft) (*domain.NewTransaction, error) {
	if !d.Kind.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	amount, err := ParseAmount("amount", d.Amount)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(d.Category)
	description := strings.TrimSpace(d.Description)
	switch {
	case category == "":
		return nil, &domain.ErrValidation{Field: "category", Message: "is required"}
	case description == "":
		return nil, &domain.ErrValidation{Field: "description", Message: "is required"}
	}
	if err := validateDate("date", d.Date, true); err != nil {
		return nil, err
	}

	return &domain.NewTransaction{
		Kind:        d.Kind,
		Category:    category,
		Amount:      amount,
		Description: description,
		Date:        d.Date,
		Status:      ClassifyStatus(d.Kind, amount),
	}, nil
}

func validateDate(field, value string, required bool) error {
	if value == "" {
		if required {
			return &domain.ErrValidation{Field: field, Message: "is required"}
		}
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return &domain.ErrValidation{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// ============================================================
// Roles
// ============================================================

var (
	financeRoles   = []domain.Role{domain.RoleAdmin, domain.RoleAccountant}
	approvalRoles  = []domain.Role{domain.RoleAdmin, domain.RolePastor}
	peopleRoles    = []domain.Role{domain.RoleAdmin, domain.RolePastor, domain.RoleReception}
	broadcastRoles = []domain.Role{domain.RoleAdmin, domain.RolePastor}
	ministryRoles  = []domain.Role{domain.RoleAdmin, domain.RolePastor}
)

func authorize(session domain.Session, action string, roles []domain.Role) error {
	if !session.Can(roles...) {
		return &domain.ErrForbidden{Action: action, Role: session.Role}
	}
	return nil
}
