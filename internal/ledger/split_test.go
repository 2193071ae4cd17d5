package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateSplits(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	tests := []struct {
		name    string
		amount  decimal.Decimal
		splits  []models.Split
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "exact sum passes",
			amount: dec("30.00"),
			splits: []models.Split{
				{UserID: "alice", Amount: dec("10.00")},
				{UserID: "bob", Amount: dec("10.00")},
				{UserID: "carol", Amount: dec("10.00")},
			},
		},
		{
			name:   "delta exactly at tolerance passes",
			amount: dec("10.00"),
			splits: []models.Split{
				{UserID: "alice", Amount: dec("4.00")},
				{UserID: "bob", Amount: dec("6.01")},
			},
		},
		{
			name:   "delta beyond tolerance fails",
			amount: dec("10.00"),
			splits: []models.Split{
				{UserID: "alice", Amount: dec("4.00")},
				{UserID: "bob", Amount: dec("6.02")},
			},
			wantErr: func(t *testing.T, err error) {
				var mismatch *SplitSumMismatchError
				if !errors.As(err, &mismatch) {
					t.Fatalf("expected SplitSumMismatchError, got %v", err)
				}
				if !mismatch.SplitSum.Equal(dec("10.02")) {
					t.Errorf("split sum = %s, want 10.02", mismatch.SplitSum)
				}
				if !mismatch.ExpenseAmount.Equal(dec("10.00")) {
					t.Errorf("expense amount = %s, want 10.00", mismatch.ExpenseAmount)
				}
			},
		},
		{
			name:   "non-member split fails with offending ids",
			amount: dec("10.00"),
			splits: []models.Split{
				{UserID: "alice", Amount: dec("5.00")},
				{UserID: "mallory", Amount: dec("5.00")},
			},
			wantErr: func(t *testing.T, err error) {
				var invalid *InvalidSplitMemberError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidSplitMemberError, got %v", err)
				}
				if len(invalid.UserIDs) != 1 || invalid.UserIDs[0] != "mallory" {
					t.Errorf("offending ids = %v, want [mallory]", invalid.UserIDs)
				}
			},
		},
		{
			name:   "membership checked before sum",
			amount: dec("10.00"),
			splits: []models.Split{
				{UserID: "mallory", Amount: dec("99.00")},
			},
			wantErr: func(t *testing.T, err error) {
				var invalid *InvalidSplitMemberError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidSplitMemberError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplits(tt.amount, tt.splits, members)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateSplits failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.wantErr(t, err)
		})
	}
}

func TestEqualSplits(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		members []string
		want    map[string]string
	}{
		{
			name:    "even division",
			amount:  dec("30.00"),
			members: []string{"alice", "bob", "carol"},
			want:    map[string]string{"alice": "10", "bob": "10", "carol": "10"},
		},
		{
			name:    "residual cent goes to first member in sorted order",
			amount:  dec("10.00"),
			members: []string{"carol", "alice", "bob"},
			want:    map[string]string{"alice": "3.34", "bob": "3.33", "carol": "3.33"},
		},
		{
			name:    "negative residual when rounding up",
			amount:  dec("10.00"),
			members: []string{"a", "b", "c", "d", "e", "f"}, // 10/6 = 1.67 rounded, 6*1.67 = 10.02
			want:    map[string]string{"a": "1.65", "b": "1.67", "c": "1.67", "d": "1.67", "e": "1.67", "f": "1.67"},
		},
		{
			name:    "single member takes everything",
			amount:  dec("7.77"),
			members: []string{"alice"},
			want:    map[string]string{"alice": "7.77"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := EqualSplits(tt.amount, tt.members)
			if len(splits) != len(tt.members) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.members))
			}

			sum := decimal.Zero
			for _, s := range splits {
				want := dec(tt.want[s.UserID])
				if !s.Amount.Equal(want) {
					t.Errorf("split for %s = %s, want %s", s.UserID, s.Amount, want)
				}
				if s.Status != models.SplitPending {
					t.Errorf("split for %s status = %s, want pending", s.UserID, s.Status)
				}
				sum = sum.Add(s.Amount)
			}

			// Splits must sum exactly to the amount, not just within tolerance.
			if !sum.Equal(tt.amount) {
				t.Errorf("splits sum to %s, want exactly %s", sum, tt.amount)
			}
		})
	}
}

func TestEqualSplitsNoMembers(t *testing.T) {
	if splits := EqualSplits(dec("10.00"), nil); splits != nil {
		t.Errorf("expected nil splits for no members, got %v", splits)
	}
}
