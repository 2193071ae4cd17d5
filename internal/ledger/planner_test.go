package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

func balances(kv map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv))
	for userID, amount := range kv {
		out[userID] = dec(amount)
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     []models.Settlement
	}{
		{
			name:     "two debtors one creditor, ties broken by id",
			balances: map[string]string{"alice": "20.00", "bob": "-10.00", "carol": "-10.00"},
			want: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: dec("10.00")},
				{FromUserID: "carol", ToUserID: "alice", Amount: dec("10.00")},
			},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: map[string]string{"alice": "25.00", "bob": "5.00", "carol": "-30.00"},
			want: []models.Settlement{
				{FromUserID: "carol", ToUserID: "alice", Amount: dec("25.00")},
				{FromUserID: "carol", ToUserID: "bob", Amount: dec("5.00")},
			},
		},
		{
			name:     "one transfer covers several creditors",
			balances: map[string]string{"alice": "7.00", "bob": "3.00", "carol": "-4.00", "dave": "-6.00"},
			want: []models.Settlement{
				{FromUserID: "dave", ToUserID: "alice", Amount: dec("6.00")},
				{FromUserID: "carol", ToUserID: "alice", Amount: dec("1.00")},
				{FromUserID: "carol", ToUserID: "bob", Amount: dec("3.00")},
			},
		},
		{
			name:     "members within tolerance are omitted",
			balances: map[string]string{"alice": "10.00", "bob": "-10.00", "carol": "0.005", "dave": "-0.005"},
			want: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: dec("10.00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(balances(tt.balances))
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			if len(plan) != len(tt.want) {
				t.Fatalf("got %d transfers, want %d: %+v", len(plan), len(tt.want), plan)
			}
			for i, want := range tt.want {
				got := plan[i]
				if got.FromUserID != want.FromUserID || got.ToUserID != want.ToUserID {
					t.Errorf("transfer %d = %s→%s, want %s→%s",
						i, got.FromUserID, got.ToUserID, want.FromUserID, want.ToUserID)
				}
				if !got.Amount.Equal(want.Amount) {
					t.Errorf("transfer %d amount = %s, want %s", i, got.Amount, want.Amount)
				}
				if got.Status != models.SettlementPending {
					t.Errorf("transfer %d status = %s, want pending", i, got.Status)
				}
			}
		})
	}
}

// Applying the full plan as completed settlements must reduce every balance
// to within tolerance of zero.
func TestPlanSettlesAllBalances(t *testing.T) {
	start := balances(map[string]string{
		"alice": "33.34",
		"bob":   "-12.17",
		"carol": "-0.50",
		"dave":  "-20.67",
		"erin":  "0.00",
	})

	plan, err := Plan(start)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	after := make(map[string]decimal.Decimal, len(start))
	for userID, bal := range start {
		after[userID] = bal
	}
	for _, s := range plan {
		after[s.FromUserID] = after[s.FromUserID].Add(s.Amount)
		after[s.ToUserID] = after[s.ToUserID].Sub(s.Amount)
	}

	for userID, bal := range after {
		if !WithinTolerance(bal) {
			t.Errorf("balance for %s after settling = %s, want within tolerance of 0", userID, bal)
		}
	}
}

func TestPlanDeterminism(t *testing.T) {
	input := map[string]string{"alice": "10.00", "bob": "-5.00", "carol": "-5.00"}

	first, err := Plan(balances(input))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Plan(balances(input))
		if err != nil {
			t.Fatalf("Plan failed: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("plan length changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range again {
			if again[j].FromUserID != first[j].FromUserID || again[j].ToUserID != first[j].ToUserID {
				t.Fatalf("plan order changed between runs at %d", j)
			}
		}
	}
}

func TestPlanNothingToSettle(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
	}{
		{"empty", map[string]string{}},
		{"all zero", map[string]string{"alice": "0", "bob": "0"}},
		{"all within tolerance", map[string]string{"alice": "0.009", "bob": "-0.009"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(balances(tt.balances))
			if !errors.Is(err, ErrNothingToSettle) {
				t.Fatalf("expected ErrNothingToSettle, got plan=%v err=%v", plan, err)
			}
		})
	}
}

func TestPlanImbalancedLedger(t *testing.T) {
	// A creditor with no matching debtor cannot come from consistent
	// double-entry postings; the planner must fail loudly.
	_, err := Plan(balances(map[string]string{"alice": "5.00"}))

	var imbalance *ImbalancedLedgerError
	if !errors.As(err, &imbalance) {
		t.Fatalf("expected ImbalancedLedgerError, got %v", err)
	}
	if !imbalance.CreditorTotal.Equal(dec("5.00")) {
		t.Errorf("creditor total = %s, want 5.00", imbalance.CreditorTotal)
	}
	if !imbalance.DebtorTotal.IsZero() {
		t.Errorf("debtor total = %s, want 0", imbalance.DebtorTotal)
	}
}
