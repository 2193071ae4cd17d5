package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	// SettlementPending means the transfer is planned but not executed.
	// Pending settlements never count toward balances.
	SettlementPending SettlementStatus = "pending"
	// SettlementCompleted means the money moved from debtor to creditor.
	SettlementCompleted SettlementStatus = "completed"
	// SettlementCancelled means the planned transfer was abandoned.
	SettlementCancelled SettlementStatus = "cancelled"
)

// Settlement represents a transfer between two members that nets out ledger
// debt. Settlements are produced only by the settlement planner; they are
// never user-authored directly.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the debtor paying money out.
	FromUserID string

	// ToUserID is the creditor receiving money.
	ToUserID string

	// Amount is the transfer amount, positive with 2-decimal precision.
	Amount decimal.Decimal

	// Status is the settlement's lifecycle state.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp the settlement was planned.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}
