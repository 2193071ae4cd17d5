package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
	"github.com/splitbook/splitbook/internal/storage"
)

// Analytics is a read-only composition over the group's ledger: spend and
// settlement totals, per-member balances and per-category totals. Balances
// are derived on demand, never cached; amounts are rounded to 2 decimals
// here, at the reporting boundary.
type Analytics struct {
	GroupID          string
	Currency         string
	TotalExpenses    decimal.Decimal
	TotalSettled     decimal.Decimal
	ExpenseCount     int
	MemberBalances   map[string]decimal.Decimal
	CategoryTotals   map[string]decimal.Decimal
	PendingTransfers int
}

// GetBalances computes the group's current net balances; members only.
func (s *GroupService) GetBalances(ctx context.Context, actorID, groupID string) (map[string]decimal.Decimal, error) {
	slog.Info("GetBalances request received", "group_id", groupID, "actor_id", actorID)

	var balances map[string]decimal.Decimal
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetMember(ctx, groupID, actorID); err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
			}
			return err
		}
		var err error
		balances, err = groupBalances(ctx, tx, groupID)
		return err
	})
	if err != nil {
		slog.Error("GetBalances failed", "group_id", groupID, "error", err)
		return nil, err
	}

	for userID, bal := range balances {
		balances[userID] = bal.Round(2)
	}
	return balances, nil
}

// GetAnalytics builds the group's analytics snapshot; members only.
func (s *GroupService) GetAnalytics(ctx context.Context, actorID, groupID string) (*Analytics, error) {
	slog.Info("GetAnalytics request received", "group_id", groupID, "actor_id", actorID)

	analytics := &Analytics{
		GroupID:        groupID,
		TotalExpenses:  decimal.Zero,
		TotalSettled:   decimal.Zero,
		CategoryTotals: make(map[string]decimal.Decimal),
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		analytics.Currency = group.Currency

		if _, err := tx.GetMember(ctx, groupID, actorID); err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
			}
			return err
		}

		members, err := tx.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		expenses, err := tx.ListExpenses(ctx, groupID)
		if err != nil {
			return err
		}
		settlements, err := tx.ListSettlements(ctx, groupID)
		if err != nil {
			return err
		}

		for _, e := range expenses {
			analytics.TotalExpenses = analytics.TotalExpenses.Add(e.Amount)
			category := e.Category
			if category == "" {
				category = "uncategorized"
			}
			analytics.CategoryTotals[category] = analytics.CategoryTotals[category].Add(e.Amount)
		}
		analytics.ExpenseCount = len(expenses)

		for _, st := range settlements {
			switch st.Status {
			case models.SettlementCompleted:
				analytics.TotalSettled = analytics.TotalSettled.Add(st.Amount)
			case models.SettlementPending:
				analytics.PendingTransfers++
			}
		}

		analytics.MemberBalances = ledger.CalculateBalances(members, expenses, settlements)
		return nil
	})
	if err != nil {
		slog.Error("GetAnalytics failed", "group_id", groupID, "error", err)
		return nil, err
	}

	for userID, bal := range analytics.MemberBalances {
		analytics.MemberBalances[userID] = bal.Round(2)
	}
	for category, total := range analytics.CategoryTotals {
		analytics.CategoryTotals[category] = total.Round(2)
	}
	analytics.TotalExpenses = analytics.TotalExpenses.Round(2)
	analytics.TotalSettled = analytics.TotalSettled.Round(2)

	slog.Info("GetAnalytics successful",
		"group_id", groupID,
		"expenses_count", analytics.ExpenseCount,
		"members_count", len(analytics.MemberBalances),
	)
	return analytics, nil
}
