package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/models"
)

// CreateGroup persists a new group to the database.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Settings.DefaultSplitType == "" {
		group.Settings.DefaultSplitType = models.SplitTypeEqual
	}
	if group.Settings.InvitePolicy == "" {
		group.Settings.InvitePolicy = models.InvitePolicyAnyMember
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO groups (id, name, currency, owner_id, default_split_type, invite_policy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Currency, group.OwnerID,
		string(group.Settings.DefaultSplitType), string(group.Settings.InvitePolicy), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var splitType, invitePolicy string

	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, currency, owner_id, default_split_type, invite_policy, created_at
		 FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Currency, &group.OwnerID, &splitType, &invitePolicy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Settings = models.GroupSettings{
		DefaultSplitType: models.SplitType(splitType),
		InvitePolicy:     models.InvitePolicy(invitePolicy),
	}
	return group, nil
}

// UpdateGroupSettings replaces a group's name and settings.
func (s *SQLiteStore) UpdateGroupSettings(ctx context.Context, group *models.Group) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE groups SET name = ?, default_split_type = ?, invite_policy = ? WHERE id = ?`,
		group.Name, string(group.Settings.DefaultSplitType), string(group.Settings.InvitePolicy), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check group update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", group.ID, ledger.ErrNotFound)
	}
	return nil
}
