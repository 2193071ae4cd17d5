package ledger

import (
	"errors"
	"testing"

	"github.com/splitbook/splitbook/internal/models"
)

func TestEnsureCanRemove(t *testing.T) {
	admin := models.Member{GroupID: "g1", UserID: "alice", Role: models.RoleAdmin}
	regular := models.Member{GroupID: "g1", UserID: "bob", Role: models.RoleMember}

	tests := []struct {
		name    string
		actor   models.Member
		target  string
		wantErr bool
	}{
		{"member removes self", regular, "bob", false},
		{"admin removes self", admin, "alice", false},
		{"admin removes other", admin, "bob", false},
		{"member cannot remove other", regular, "carol", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureCanRemove(tt.actor, tt.target)
			if tt.wantErr && !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestEnsureSettledBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		wantErr bool
	}{
		{"zero balance leaves", "0", false},
		{"within tolerance leaves", "0.009", false},
		{"negative within tolerance leaves", "-0.009", false},
		{"exactly 0.02 is blocked", "0.02", true},
		{"debt is blocked", "-15.50", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bals := balances(map[string]string{"alice": tt.balance})
			err := EnsureSettledBalance("alice", bals)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected leave to be permitted, got %v", err)
				}
				return
			}

			var outstanding *OutstandingBalanceError
			if !errors.As(err, &outstanding) {
				t.Fatalf("expected OutstandingBalanceError, got %v", err)
			}
			if !outstanding.Balance.Equal(dec(tt.balance)) {
				t.Errorf("error balance = %s, want %s", outstanding.Balance, tt.balance)
			}
		})
	}
}

func TestEnsureSettledBalanceUnknownMember(t *testing.T) {
	// A member with no ledger activity has no entry; that is a zero balance.
	if err := EnsureSettledBalance("ghost", balances(nil)); err != nil {
		t.Fatalf("expected no error for unknown member, got %v", err)
	}
}
