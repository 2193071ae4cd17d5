package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
	"github.com/splitbook/splitbook/internal/storage"
)

// AddExpense records an expense and its splits atomically. When no explicit
// splits are supplied the amount is divided equally among all current
// members, with the rounding remainder assigned to the first member so the
// split-sum invariant holds exactly. Explicit splits must name current
// members and sum to the amount within tolerance.
func (s *GroupService) AddExpense(ctx context.Context, actorID, groupID string, input ExpenseInput) (*models.Expense, error) {
	slog.Info("AddExpense request received",
		"group_id", groupID,
		"actor_id", actorID,
		"payer_id", input.PayerID,
		"amount", input.Amount.String(),
		"splits_count", len(input.Splits),
	)

	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidArgument, input.Amount)
	}

	expense := &models.Expense{
		GroupID:     groupID,
		PayerID:     input.PayerID,
		Amount:      input.Amount.Round(2),
		Category:    input.Category,
		Description: input.Description,
		Date:        input.Date,
	}
	var group *models.Group

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		group, err = tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if input.Currency != "" && input.Currency != group.Currency {
			return fmt.Errorf("%w: expense currency %s does not match group currency %s",
				ErrInvalidArgument, input.Currency, group.Currency)
		}
		expense.Currency = group.Currency

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
		memberIDs := make([]string, len(members))
		for i, m := range members {
			memberIDs[i] = m.UserID
		}

		if expense.PayerID == "" {
			expense.PayerID = actorID
		}
		if !contains(memberIDs, expense.PayerID) {
			return &ledger.InvalidSplitMemberError{UserIDs: []string{expense.PayerID}}
		}

		if len(input.Splits) == 0 {
			if group.Settings.DefaultSplitType == models.SplitTypeExact {
				return fmt.Errorf("%w: group requires explicit splits", ErrInvalidArgument)
			}
			expense.Splits = ledger.EqualSplits(expense.Amount, memberIDs)
			return tx.InsertExpense(ctx, expense)
		}

		splits := make([]models.Split, len(input.Splits))
		for i, in := range input.Splits {
			if !in.Amount.IsPositive() {
				return fmt.Errorf("%w: split amount must be positive, got %s for %s",
					ErrInvalidArgument, in.Amount, in.UserID)
			}
			splits[i] = models.Split{
				UserID: in.UserID,
				Amount: in.Amount.Round(2),
				Status: models.SplitPending,
			}
		}
		if err := ledger.ValidateSplits(expense.Amount, splits, memberIDs); err != nil {
			return err
		}
		expense.Splits = splits
		return tx.InsertExpense(ctx, expense)
	})
	if err != nil {
		slog.Error("AddExpense failed", "group_id", groupID, "error", err)
		return nil, err
	}

	expensesCreated.Inc()
	slog.Info("Expense added", "group_id", groupID, "expense_id", expense.ID)
	s.notifier.ExpenseAdded(ctx, group, expense)
	return expense, nil
}

// GetExpense retrieves one expense with its splits; members only.
func (s *GroupService) GetExpense(ctx context.Context, actorID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, expense.GroupID, actorID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("user %s is not a member of group %s: %w", actorID, expense.GroupID, ledger.ErrUnauthorized)
		}
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves a group's expenses, newest first; members only.
func (s *GroupService) ListExpenses(ctx context.Context, actorID, groupID string) ([]models.Expense, error) {
	if _, err := s.store.GetMember(ctx, groupID, actorID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
		}
		return nil, err
	}
	return s.store.ListExpenses(ctx, groupID)
}

// MarkSplitPaid transitions the actor's own split on an expense from
// pending to paid. Marking a split that is already paid is a no-op
// returning the unchanged split; this is the only expense mutation
// permitted after creation. When the transition leaves every split of the
// expense paid, the notification hook fires.
func (s *GroupService) MarkSplitPaid(ctx context.Context, actorID, expenseID string) (*models.Split, error) {
	slog.Info("MarkSplitPaid request received", "expense_id", expenseID, "actor_id", actorID)

	var (
		result    *models.Split
		group     *models.Group
		expense   *models.Expense
		fullyPaid bool
	)

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		expense, err = tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}

		var split *models.Split
		for i := range expense.Splits {
			if expense.Splits[i].UserID == actorID {
				split = &expense.Splits[i]
				break
			}
		}
		if split == nil {
			return fmt.Errorf("user %s has no split on expense %s: %w", actorID, expenseID, ledger.ErrUnauthorized)
		}

		if split.Status == models.SplitPaid {
			// Idempotent: re-marking a paid split changes nothing.
			result = split
			return nil
		}

		split.Status = models.SplitPaid
		split.PaidAt = time.Now().Unix()
		if err := tx.UpdateSplitStatus(ctx, expenseID, actorID, split.Status, split.PaidAt); err != nil {
			return err
		}
		result = split

		fullyPaid = true
		for _, sp := range expense.Splits {
			if sp.Status != models.SplitPaid {
				fullyPaid = false
				break
			}
		}
		if fullyPaid {
			group, err = tx.GetGroup(ctx, expense.GroupID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("MarkSplitPaid failed", "expense_id", expenseID, "error", err)
		return nil, err
	}

	slog.Info("Split marked paid", "expense_id", expenseID, "user_id", actorID, "fully_paid", fullyPaid)
	if fullyPaid {
		s.notifier.SplitFullyPaid(ctx, group, expense)
	}
	return result, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
