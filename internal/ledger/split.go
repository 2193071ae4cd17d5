package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

// ValidateSplits checks explicit splits against the expense amount and the
// group's current membership.
//
// Rules, in order: every split's user must be a current member, and the
// split amounts must sum to the expense amount within Tolerance (boundary
// inclusive, so a 0.01 delta passes and 0.02 fails).
func ValidateSplits(amount decimal.Decimal, splits []models.Split, memberIDs []string) error {
	members := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}

	var unknown []string
	for _, s := range splits {
		if _, ok := members[s.UserID]; !ok {
			unknown = append(unknown, s.UserID)
		}
	}
	if len(unknown) > 0 {
		return &InvalidSplitMemberError{UserIDs: unknown}
	}

	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	if !WithinTolerance(sum.Sub(amount)) {
		return &SplitSumMismatchError{ExpenseAmount: amount, SplitSum: sum}
	}

	return nil
}

// EqualSplits divides amount equally among memberIDs, in stable (sorted)
// member order. Each share is rounded to 2 decimals and the rounding
// remainder is assigned to the first split, so the splits always sum
// exactly to the amount (10.00 over three members yields 3.34, 3.33, 3.33
// rather than drifting to 9.99).
func EqualSplits(amount decimal.Decimal, memberIDs []string) []models.Split {
	if len(memberIDs) == 0 {
		return nil
	}

	ids := make([]string, len(memberIDs))
	copy(ids, memberIDs)
	sort.Strings(ids)

	n := decimal.NewFromInt(int64(len(ids)))
	share := amount.Div(n).Round(2)
	residual := amount.Sub(share.Mul(n))

	splits := make([]models.Split, len(ids))
	for i, id := range ids {
		s := share
		if i == 0 {
			s = s.Add(residual)
		}
		splits[i] = models.Split{
			UserID: id,
			Amount: s,
			Status: models.SplitPending,
		}
	}
	return splits
}
