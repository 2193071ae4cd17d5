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

// InsertSettlements persists a batch of settlements. Callers run this
// inside InTx so one planning run is recorded all-or-nothing; a partially
// persisted plan would leave the ledger internally inconsistent.
func (s *SQLiteStore) InsertSettlements(ctx context.Context, settlements []*models.Settlement) error {
	now := time.Now().Unix()
	for _, settlement := range settlements {
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.CreatedAt == 0 {
			settlement.CreatedAt = now
		}
		if settlement.UpdatedAt == 0 {
			settlement.UpdatedAt = settlement.CreatedAt
		}

		_, err := s.q.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
			settlement.Amount.String(), string(settlement.Status), settlement.CreatedAt, settlement.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount, status string

	err := s.q.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, status, created_at, updated_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	).Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&amount, &status, &settlement.CreatedAt, &settlement.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if settlement.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse settlement amount %q: %w", amount, err)
	}
	settlement.Status = models.SettlementStatus(status)
	return settlement, nil
}

// ListSettlements retrieves all settlements of a group, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, status, created_at, updated_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var st models.Settlement
		var amount, status string
		if err := rows.Scan(&st.ID, &st.GroupID, &st.FromUserID, &st.ToUserID,
			&amount, &status, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if st.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse settlement amount %q: %w", amount, err)
		}
		st.Status = models.SettlementStatus(status)
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// UpdateSettlementStatus sets one settlement's status and updated-at.
func (s *SQLiteStore) UpdateSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, updatedAt int64) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE settlements SET status = ?, updated_at = ? WHERE id = ?",
		string(status), updatedAt, settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settlement update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, ledger.ErrNotFound)
	}
	return nil
}
