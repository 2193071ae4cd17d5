package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel errors for conditions that carry no extra payload.
var (
	// ErrDuplicateMember signals an addMember for an existing (group, user) pair.
	ErrDuplicateMember = errors.New("user is already a member of the group")

	// ErrNothingToSettle signals a settle request on a group whose balances
	// already net to zero. Callers surface it as a no-op, not a failure.
	ErrNothingToSettle = errors.New("all balances are settled")

	// ErrNotFound signals a missing group, member, expense or settlement.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized signals an operation by a non-member, or a removal
	// of another member by a non-admin.
	ErrUnauthorized = errors.New("not permitted")
)

// InvalidSplitMemberError reports splits naming users who are not current
// group members.
type InvalidSplitMemberError struct {
	UserIDs []string
}

func (e *InvalidSplitMemberError) Error() string {
	return fmt.Sprintf("splits reference non-members: %s", strings.Join(e.UserIDs, ", "))
}

// SplitSumMismatchError reports splits whose sum differs from the expense
// amount beyond tolerance.
type SplitSumMismatchError struct {
	ExpenseAmount decimal.Decimal
	SplitSum      decimal.Decimal
}

func (e *SplitSumMismatchError) Error() string {
	return fmt.Sprintf("splits sum to %s, expense amount is %s", e.SplitSum, e.ExpenseAmount)
}

// OutstandingBalanceError blocks a member from leaving while their net
// balance is outside tolerance.
type OutstandingBalanceError struct {
	UserID  string
	Balance decimal.Decimal
}

func (e *OutstandingBalanceError) Error() string {
	return fmt.Sprintf("member %s has outstanding balance %s", e.UserID, e.Balance.StringFixed(2))
}

// ImbalancedLedgerError reports a violated conservation invariant: total
// debt and total credit derived from the same postings must match. It means
// the stored data is corrupt, not that the user did anything wrong, so it is
// treated as fatal and logged as an alert.
type ImbalancedLedgerError struct {
	DebtorTotal   decimal.Decimal
	CreditorTotal decimal.Decimal
}

func (e *ImbalancedLedgerError) Error() string {
	return fmt.Sprintf("ledger imbalance: debtors owe %s, creditors are owed %s",
		e.DebtorTotal.StringFixed(2), e.CreditorTotal.StringFixed(2))
}
