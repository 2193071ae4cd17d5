package models

import "github.com/shopspring/decimal"

// SplitStatus is the lifecycle state of one split.
//
// The only supported transition is pending → paid; it is one-way and
// idempotent. No cancellation transition is exposed.
type SplitStatus string

const (
	// SplitPending means the share has not been paid back yet.
	SplitPending SplitStatus = "pending"
	// SplitPaid means the share has been paid back to the payer.
	SplitPaid SplitStatus = "paid"
	// SplitCancelled is reserved; no transition currently produces it.
	SplitCancelled SplitStatus = "cancelled"
)

// Expense represents money paid by one member and owed by others.
// Expenses are immutable after creation except split status transitions.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the user who paid the full amount.
	PayerID string

	// Amount is the total paid, positive with 2-decimal precision.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code; matches the group currency.
	Currency string

	// Category is a free-form label used for analytics ("food", "rent").
	Category string

	// Description is a human-readable note.
	Description string

	// Date is the Unix timestamp the expense occurred.
	Date int64

	// Splits are the per-member shares. Their amounts sum to Amount
	// within a 0.01 tolerance.
	Splits []Split

	// CreatedAt is the Unix timestamp the expense was recorded.
	CreatedAt int64
}

// Split is one member's share of an expense. It is owned by its parent
// expense and never exists independently.
type Split struct {
	// ExpenseID is the parent expense.
	ExpenseID string

	// UserID is the member who owes this share.
	UserID string

	// Amount is the share, positive with 2-decimal precision.
	Amount decimal.Decimal

	// Status is the split's lifecycle state.
	Status SplitStatus

	// PaidAt is the Unix timestamp of the pending → paid transition;
	// zero while pending.
	PaidAt int64
}
