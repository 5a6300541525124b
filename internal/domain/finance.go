package domain

import "time"

// ============================================================
// Ledger
// ============================================================

// ApprovalThreshold is the expense amount above which a transaction
// must be approved before it counts as settled.
const ApprovalThreshold int64 = 500000

// TransactionKind is the direction of a ledger entry.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// TransactionStatus is the approval state of a ledger entry.
type TransactionStatus string

const (
	StatusApproved TransactionStatus = "approved"
	StatusPending  TransactionStatus = "pending"
	StatusRejected TransactionStatus = "rejected"
)

// Transaction is a single income or expense entry in the ledger.
// Rows written before the approval workflow existed have no status;
// they read as approved (see EffectiveStatus).
type Transaction struct {
	ID          string            `json:"id"`
	Kind        TransactionKind   `json:"type"`
	Category    string            `json:"category"`
	Amount      int64             `json:"amount"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Status      TransactionStatus `json:"status,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// EffectiveStatus returns the status with the legacy empty value mapped to approved.
func (t Transaction) EffectiveStatus() TransactionStatus {
	if t.Status == "" {
		return StatusApproved
	}
	return t.Status
}

// TransactionDraft is the unvalidated input of a ledger submission.
// Amount is kept as text because it arrives from a form field.
type TransactionDraft struct {
	Kind        TransactionKind `json:"type"`
	Category    string          `json:"category"`
	Amount      string          `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// NewTransaction is a validated, classified transaction ready to be persisted.
type NewTransaction struct {
	Kind        TransactionKind
	Category    string
	Amount      int64
	Description string
	Date        string
	Status      TransactionStatus
}

// Totals are the aggregates derived from a ledger snapshot.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// Ledger is the full transaction list plus everything derived from it.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Totals       Totals        `json:"totals"`
	Pending      []Transaction `json:"pending"`
}

// Decision is the outcome chosen for a pending transaction.
type Decision = TransactionStatus

// ValidDecision reports whether d may be used to resolve a pending transaction.
func ValidDecision(d Decision) bool {
	return d == StatusApproved || d == StatusRejected
}

// ============================================================
// Assets
// ============================================================

// AssetCategory groups church property.
type AssetCategory string

const (
	AssetLand      AssetCategory = "Land"
	AssetBuilding  AssetCategory = "Building"
	AssetEquipment AssetCategory = "Equipment"
	AssetVehicle   AssetCategory = "Vehicle"
	AssetOther     AssetCategory = "Other"
)

// Valid reports whether c is a known asset category.
func (c AssetCategory) Valid() bool {
	switch c {
	case AssetLand, AssetBuilding, AssetEquipment, AssetVehicle, AssetOther:
		return true
	}
	return false
}

// Asset is a standalone valued item. It has no approval workflow.
type Asset struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      AssetCategory `json:"category"`
	Value         int64         `json:"value"`
	Condition     string        `json:"condition"`
	PurchasedDate string        `json:"purchased_date"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AssetDraft is the form input for registering an asset.
type AssetDraft struct {
	Name          string        `json:"name"`
	Category      AssetCategory `json:"category"`
	Value         string        `json:"value"`
	Condition     string        `json:"condition"`
	PurchasedDate string        `json:"purchased_date"`
}

// AssetRegister is the asset list with its total value.
type AssetRegister struct {
	Assets     []Asset `json:"assets"`
	TotalValue int64   `json:"total_value"`
}

// ============================================================
// Pledges
// ============================================================

// PledgeStatus tracks how much of a pledge was honoured.
type PledgeStatus string

const (
	PledgePending       PledgeStatus = "pending"
	PledgePartiallyPaid PledgeStatus = "partially_paid"
	PledgeCompleted     PledgeStatus = "completed"
)

// Pledge is a committed future contribution.
// Status is set to pending on creation and nothing in the service advances it.
type Pledge struct {
	ID           string       `json:"id"`
	MemberID     string       `json:"member_id,omitempty"`
	MemberName   string       `json:"member_name"`
	Purpose      string       `json:"purpose"`
	TargetAmount int64        `json:"target_amount"`
	PaidAmount   int64        `json:"paid_amount"`
	DueDate      string       `json:"due_date"`
	Status       PledgeStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PledgeDraft is the form input for recording a pledge.
type PledgeDraft struct {
	MemberID     string `json:"member_id,omitempty"`
	MemberName   string `json:"member_name"`
	Purpose      string `json:"purpose"`
	TargetAmount string `json:"target_amount"`
	DueDate      string `json:"due_date"`
}
