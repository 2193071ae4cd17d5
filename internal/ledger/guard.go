package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

// EnsureCanRemove checks whether actor may remove targetUserID from the
// group: members may remove themselves, admins may remove anyone.
func EnsureCanRemove(actor models.Member, targetUserID string) error {
	if actor.UserID == targetUserID {
		return nil
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	return ErrUnauthorized
}

// EnsureSettledBalance blocks a member from leaving while their net balance
// is outside Tolerance. Letting them go would lose track of unresolved
// debt, so the error carries the balance for the caller to report.
func EnsureSettledBalance(userID string, balances map[string]decimal.Decimal) error {
	bal, ok := balances[userID]
	if !ok {
		return nil
	}
	if WithinTolerance(bal) {
		return nil
	}
	return &OutstandingBalanceError{UserID: userID, Balance: bal}
}
