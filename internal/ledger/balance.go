// Package ledger implements the group ledger core: balance calculation,
// split validation, debt-simplification planning and the membership guard.
// Everything here is pure; persistence and transactions belong to the
// service layer.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

// Tolerance is the absolute amount within which two monetary values are
// considered equal. It matches the 2-decimal precision of stored amounts:
// anything below one cent is rounding noise.
var Tolerance = decimal.New(1, -2) // 0.01

// WithinTolerance reports whether d is within Tolerance of zero,
// boundary inclusive.
func WithinTolerance(d decimal.Decimal) bool {
	return d.Abs().Cmp(Tolerance) <= 0
}

// CalculateBalances computes each member's net position from the group's
// expenses and completed settlements.
//
// For each expense the payer is credited the full amount and every split's
// user is debited their share. For each completed settlement the payer
// (debtor) is credited and the receiver (creditor) is debited, closing the
// gap between them. Pending settlements are a plan, not an executed
// transfer, and are ignored.
//
// Positive balance = the group owes the member; negative = the member owes
// the group. Sums are kept at full precision; callers round to 2 decimals
// only when reporting.
func CalculateBalances(members []models.Member, expenses []models.Expense, settlements []models.Settlement) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(members))

	// Seed every current member so inactive members report an explicit zero.
	for _, m := range members {
		balances[m.UserID] = decimal.Zero
	}

	for _, e := range expenses {
		balances[e.PayerID] = balances[e.PayerID].Add(e.Amount)
		for _, s := range e.Splits {
			balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		balances[s.FromUserID] = balances[s.FromUserID].Add(s.Amount)
		balances[s.ToUserID] = balances[s.ToUserID].Sub(s.Amount)
	}

	return balances
}
