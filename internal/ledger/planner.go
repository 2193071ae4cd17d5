package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

// party is one side of the netting pass: a member and how much they still
// owe (debtor) or are owed (creditor).
type party struct {
	userID    string
	remaining decimal.Decimal
}

// Plan converts a balance map into a minimal ordered list of transfers that
// zero out the group's debts.
//
// Greedy two-pointer pass: debtors and creditors are sorted by magnitude
// descending (ties broken by user id so output is deterministic), then the
// largest debtor pays the largest creditor min(owed, due) until both lists
// are exhausted. O(n log n); not provably transfer-count-optimal in general
// but minimal for the common single-pass case.
//
// Emitted settlements carry from/to/amount and pending status; the caller
// assigns ids, group and timestamps and persists them atomically.
//
// Returns ErrNothingToSettle when every balance is already within
// Tolerance of zero, and an *ImbalancedLedgerError when total debt and
// total credit disagree. Balances derived from the same double-entry
// postings always conserve, so a mismatch means corrupt upstream data and
// must fail loudly instead of producing a wrong plan.
func Plan(balances map[string]decimal.Decimal) ([]models.Settlement, error) {
	var debtors, creditors []party
	for userID, bal := range balances {
		switch {
		case WithinTolerance(bal):
			// Settled; omitted from the plan.
		case bal.IsNegative():
			debtors = append(debtors, party{userID: userID, remaining: bal.Neg()})
		default:
			creditors = append(creditors, party{userID: userID, remaining: bal})
		}
	}

	if len(debtors) == 0 && len(creditors) == 0 {
		return nil, ErrNothingToSettle
	}

	debtorTotal := sumRemaining(debtors)
	creditorTotal := sumRemaining(creditors)
	if !WithinTolerance(debtorTotal.Sub(creditorTotal)) {
		return nil, &ImbalancedLedgerError{DebtorTotal: debtorTotal, CreditorTotal: creditorTotal}
	}

	sortByMagnitude(debtors)
	sortByMagnitude(creditors)

	var plan []models.Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].remaining, creditors[j].remaining)
		if amount.IsPositive() {
			plan = append(plan, models.Settlement{
				FromUserID: debtors[i].userID,
				ToUserID:   creditors[j].userID,
				Amount:     amount.Round(2),
				Status:     models.SettlementPending,
			})
		}

		debtors[i].remaining = debtors[i].remaining.Sub(amount)
		creditors[j].remaining = creditors[j].remaining.Sub(amount)

		if debtors[i].remaining.Cmp(Tolerance) < 0 {
			i++
		}
		if creditors[j].remaining.Cmp(Tolerance) < 0 {
			j++
		}
	}

	if len(plan) == 0 {
		return nil, ErrNothingToSettle
	}
	return plan, nil
}

func sumRemaining(parties []party) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range parties {
		sum = sum.Add(p.remaining)
	}
	return sum
}

// sortByMagnitude orders parties by remaining amount descending, then by
// user id ascending so equal magnitudes produce a stable plan.
func sortByMagnitude(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		cmp := parties[a].remaining.Cmp(parties[b].remaining)
		if cmp != 0 {
			return cmp > 0
		}
		return parties[a].userID < parties[b].userID
	})
}
