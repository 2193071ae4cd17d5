package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

func member(userID string) models.Member {
	return models.Member{GroupID: "g1", UserID: userID, Role: models.RoleMember}
}

func expense(payer, amount string, shares map[string]string) models.Expense {
	e := models.Expense{GroupID: "g1", PayerID: payer, Amount: dec(amount)}
	for userID, share := range shares {
		e.Splits = append(e.Splits, models.Split{
			UserID: userID,
			Amount: dec(share),
			Status: models.SplitPending,
		})
	}
	return e
}

func TestCalculateBalances(t *testing.T) {
	members := []models.Member{member("alice"), member("bob"), member("carol")}

	tests := []struct {
		name        string
		expenses    []models.Expense
		settlements []models.Settlement
		want        map[string]string
	}{
		{
			name: "no activity yields explicit zeros",
			want: map[string]string{"alice": "0", "bob": "0", "carol": "0"},
		},
		{
			name: "payer credited, splits debited",
			expenses: []models.Expense{
				expense("alice", "30.00", map[string]string{"alice": "10.00", "bob": "10.00", "carol": "10.00"}),
			},
			want: map[string]string{"alice": "20", "bob": "-10", "carol": "-10"},
		},
		{
			name: "completed settlement closes the gap",
			expenses: []models.Expense{
				expense("alice", "30.00", map[string]string{"alice": "10.00", "bob": "10.00", "carol": "10.00"}),
			},
			settlements: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: dec("10.00"), Status: models.SettlementCompleted},
			},
			want: map[string]string{"alice": "10", "bob": "0", "carol": "-10"},
		},
		{
			name: "pending settlements are a plan, not a transfer",
			expenses: []models.Expense{
				expense("alice", "30.00", map[string]string{"alice": "10.00", "bob": "10.00", "carol": "10.00"}),
			},
			settlements: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: dec("10.00"), Status: models.SettlementPending},
				{FromUserID: "carol", ToUserID: "alice", Amount: dec("10.00"), Status: models.SettlementCancelled},
			},
			want: map[string]string{"alice": "20", "bob": "-10", "carol": "-10"},
		},
		{
			name: "multiple expenses accumulate without rounding drift",
			expenses: []models.Expense{
				expense("alice", "10.00", map[string]string{"alice": "3.34", "bob": "3.33", "carol": "3.33"}),
				expense("bob", "10.00", map[string]string{"alice": "3.34", "bob": "3.33", "carol": "3.33"}),
				expense("carol", "10.00", map[string]string{"alice": "3.34", "bob": "3.33", "carol": "3.33"}),
			},
			want: map[string]string{"alice": "-0.02", "bob": "0.01", "carol": "0.01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := CalculateBalances(members, tt.expenses, tt.settlements)

			if len(balances) != len(tt.want) {
				t.Fatalf("got %d balances, want %d", len(balances), len(tt.want))
			}
			for userID, want := range tt.want {
				got, ok := balances[userID]
				if !ok {
					t.Errorf("no balance for %s", userID)
					continue
				}
				if !got.Equal(dec(want)) {
					t.Errorf("balance for %s = %s, want %s", userID, got, want)
				}
			}

			// Double-entry invariant: balances always sum to zero.
			sum := decimal.Zero
			for _, bal := range balances {
				sum = sum.Add(bal)
			}
			if !sum.IsZero() {
				t.Errorf("balances sum to %s, want 0", sum)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0", true},
		{"0.009", true},
		{"0.01", true}, // boundary inclusive
		{"-0.01", true},
		{"0.011", false},
		{"0.02", false},
		{"-0.02", false},
	}
	for _, tt := range tests {
		if got := WithinTolerance(dec(tt.value)); got != tt.want {
			t.Errorf("WithinTolerance(%s) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
