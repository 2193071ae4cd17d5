package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
)

// InsertMember adds a membership row.
func (s *SQLiteStore) InsertMember(ctx context.Context, member *models.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		member.GroupID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves one membership row.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, userID string) (*models.Member, error) {
	member := &models.Member{}
	var role string

	err := s.q.QueryRowContext(ctx,
		"SELECT group_id, user_id, role, joined_at FROM members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&member.GroupID, &member.UserID, &role, &member.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s in group %s: %w", userID, groupID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	member.Role = models.Role(role)
	return member, nil
}

// ListMembers retrieves all memberships of a group ordered by user id.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT group_id, user_id, role, joined_at FROM members WHERE group_id = ? ORDER BY user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.GroupID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// DeleteMember removes a membership row.
func (s *SQLiteStore) DeleteMember(ctx context.Context, groupID, userID string) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check member delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s in group %s: %w", userID, groupID, ledger.ErrNotFound)
	}
	return nil
}
