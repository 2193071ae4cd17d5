package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
	"github.com/splitbook/splitbook/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitbook-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Roommates", Currency: "USD", OwnerID: "alice"}

	t.Run("CreateGroup generates ID and defaults", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if group.Settings.DefaultSplitType != models.SplitTypeEqual {
			t.Errorf("default split type = %s, want equal", group.Settings.DefaultSplitType)
		}
		if group.Settings.InvitePolicy != models.InvitePolicyAnyMember {
			t.Errorf("invite policy = %s, want any_member", group.Settings.InvitePolicy)
		}
	})

	t.Run("GetGroup round-trips settings", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" || got.Currency != "USD" || got.OwnerID != "alice" {
			t.Errorf("unexpected group: %+v", got)
		}
		if got.Settings != group.Settings {
			t.Errorf("settings = %+v, want %+v", got.Settings, group.Settings)
		}
	})

	t.Run("GetGroup missing wraps ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Members insert, list and delete", func(t *testing.T) {
		for _, userID := range []string{"alice", "bob", "carol"} {
			role := models.RoleMember
			if userID == "alice" {
				role = models.RoleAdmin
			}
			err := store.InsertMember(ctx, &models.Member{GroupID: group.ID, UserID: userID, Role: role})
			if err != nil {
				t.Fatalf("InsertMember(%s) failed: %v", userID, err)
			}
		}

		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 3 {
			t.Fatalf("got %d members, want 3", len(members))
		}
		// Stable user id ordering.
		if members[0].UserID != "alice" || members[2].UserID != "carol" {
			t.Errorf("unexpected member order: %+v", members)
		}

		admin, err := store.GetMember(ctx, group.ID, "alice")
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if admin.Role != models.RoleAdmin {
			t.Errorf("alice role = %s, want admin", admin.Role)
		}

		if err := store.InsertMember(ctx, &models.Member{GroupID: group.ID, UserID: "temp"}); err != nil {
			t.Fatalf("InsertMember(temp) failed: %v", err)
		}
		if err := store.DeleteMember(ctx, group.ID, "temp"); err != nil {
			t.Fatalf("DeleteMember failed: %v", err)
		}
		if err := store.DeleteMember(ctx, group.ID, "temp"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on double delete, got %v", err)
		}
	})

	var expenseID string
	t.Run("InsertExpense persists splits exactly", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     "alice",
			Amount:      dec("30.00"),
			Currency:    "USD",
			Category:    "food",
			Description: "groceries",
			Splits: []models.Split{
				{UserID: "alice", Amount: dec("10.00")},
				{UserID: "bob", Amount: dec("10.00")},
				{UserID: "carol", Amount: dec("10.00")},
			},
		}
		if err := store.InsertExpense(ctx, expense); err != nil {
			t.Fatalf("InsertExpense failed: %v", err)
		}
		expenseID = expense.ID

		got, err := store.GetExpense(ctx, expenseID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("30.00")) {
			t.Errorf("amount = %s, want 30.00", got.Amount)
		}
		if len(got.Splits) != 3 {
			t.Fatalf("got %d splits, want 3", len(got.Splits))
		}
		for _, s := range got.Splits {
			if !s.Amount.Equal(dec("10.00")) {
				t.Errorf("split for %s = %s, want 10.00", s.UserID, s.Amount)
			}
			if s.Status != models.SplitPending {
				t.Errorf("split for %s status = %s, want pending", s.UserID, s.Status)
			}
		}
	})

	t.Run("UpdateSplitStatus transitions one split", func(t *testing.T) {
		if err := store.UpdateSplitStatus(ctx, expenseID, "bob", models.SplitPaid, 12345); err != nil {
			t.Fatalf("UpdateSplitStatus failed: %v", err)
		}
		got, err := store.GetExpense(ctx, expenseID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		for _, s := range got.Splits {
			wantStatus := models.SplitPending
			if s.UserID == "bob" {
				wantStatus = models.SplitPaid
			}
			if s.Status != wantStatus {
				t.Errorf("split for %s status = %s, want %s", s.UserID, s.Status, wantStatus)
			}
			if s.UserID == "bob" && s.PaidAt != 12345 {
				t.Errorf("bob paid_at = %d, want 12345", s.PaidAt)
			}
		}
	})

	t.Run("InsertSettlements batch and list", func(t *testing.T) {
		batch := []*models.Settlement{
			{GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: dec("10.00"), Status: models.SettlementPending},
			{GroupID: group.ID, FromUserID: "carol", ToUserID: "alice", Amount: dec("10.00"), Status: models.SettlementPending},
		}
		if err := store.InsertSettlements(ctx, batch); err != nil {
			t.Fatalf("InsertSettlements failed: %v", err)
		}
		for _, s := range batch {
			if s.ID == "" {
				t.Error("Expected settlement ID to be generated")
			}
		}

		settlements, err := store.ListSettlements(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(settlements) != 2 {
			t.Fatalf("got %d settlements, want 2", len(settlements))
		}

		if err := store.UpdateSettlementStatus(ctx, batch[0].ID, models.SettlementCompleted, 99999); err != nil {
			t.Fatalf("UpdateSettlementStatus failed: %v", err)
		}
		got, err := store.GetSettlement(ctx, batch[0].ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.Status != models.SettlementCompleted || got.UpdatedAt != 99999 {
			t.Errorf("settlement after update = %+v", got)
		}
	})

	t.Run("Users create and fetch", func(t *testing.T) {
		user := &models.User{Name: "Dave", Email: "dave@example.com", PasswordHash: "x"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		byEmail, err := store.GetUserByEmail(ctx, "dave@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byEmail.ID != user.ID || byID.Email != user.Email {
			t.Errorf("user round-trip mismatch: %+v vs %+v", byEmail, byID)
		}
	})
}

func TestInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Currency: "EUR", OwnerID: "alice"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("rollback leaves no partial writes", func(t *testing.T) {
		sentinel := fmt.Errorf("boom")
		err := store.InTx(ctx, func(tx storage.Store) error {
			if err := tx.InsertMember(ctx, &models.Member{GroupID: group.ID, UserID: "bob"}); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}

		if _, err := store.GetMember(ctx, group.ID, "bob"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected rolled-back member to be absent, got %v", err)
		}
	})

	t.Run("commit persists writes", func(t *testing.T) {
		err := store.InTx(ctx, func(tx storage.Store) error {
			return tx.InsertMember(ctx, &models.Member{GroupID: group.ID, UserID: "carol"})
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}
		if _, err := store.GetMember(ctx, group.ID, "carol"); err != nil {
			t.Fatalf("expected committed member, got %v", err)
		}
	})

	t.Run("nested InTx joins the enclosing transaction", func(t *testing.T) {
		err := store.InTx(ctx, func(tx storage.Store) error {
			return tx.InTx(ctx, func(inner storage.Store) error {
				return inner.InsertMember(ctx, &models.Member{GroupID: group.ID, UserID: "dave"})
			})
		})
		if err != nil {
			t.Fatalf("nested InTx failed: %v", err)
		}
		if _, err := store.GetMember(ctx, group.ID, "dave"); err != nil {
			t.Fatalf("expected committed member, got %v", err)
		}
	})
}
