package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
)

// InsertExpense persists an expense together with all of its splits.
// Callers run this inside InTx; the expense row and its split rows are
// never visible separately.
func (s *SQLiteStore) InsertExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount, currency, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount.String(),
		expense.Currency, expense.Category, expense.Description, expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		if split.Status == "" {
			split.Status = models.SplitPending
		}

		_, err = s.q.ExecContext(ctx,
			"INSERT INTO splits (expense_id, user_id, amount, status, paid_at) VALUES (?, ?, ?, ?, ?)",
			split.ExpenseID, split.UserID, split.Amount.String(), string(split.Status), split.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string

	err := s.q.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount, currency, category, description, date, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &amount,
		&expense.Currency, &expense.Category, &expense.Description, &expense.Date, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if expense.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse expense amount %q: %w", amount, err)
	}

	if expense.Splits, err = s.listSplits(ctx, expense.ID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves all expenses of a group, splits included, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, currency, category, description, date, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var amount string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &amount,
			&e.Currency, &e.Category, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse expense amount %q: %w", amount, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if expenses[i].Splits, err = s.listSplits(ctx, expenses[i].ID); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// UpdateSplitStatus sets one split's status and paid-at timestamp.
func (s *SQLiteStore) UpdateSplitStatus(ctx context.Context, expenseID, userID string, status models.SplitStatus, paidAt int64) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE splits SET status = ?, paid_at = ? WHERE expense_id = ? AND user_id = ?",
		string(status), paidAt, expenseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check split update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("split for %s on expense %s: %w", userID, expenseID, ledger.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) listSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT expense_id, user_id, amount, status, paid_at FROM splits WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		var amount, status string
		if err := rows.Scan(&sp.ExpenseID, &sp.UserID, &amount, &status, &sp.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if sp.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse split amount %q: %w", amount, err)
		}
		sp.Status = models.SplitStatus(status)
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}
