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

// CreateGroup creates a group and inserts its creator as the admin member,
// atomically.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID string, input CreateGroupInput) (*models.Group, error) {
	slog.Info("CreateGroup request received", "owner_id", ownerID, "name", input.Name, "currency", input.Currency)

	if input.Name == "" || input.Currency == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: name, currency and owner are required", ErrInvalidArgument)
	}

	group := &models.Group{
		Name:     input.Name,
		Currency: input.Currency,
		OwnerID:  ownerID,
		Settings: models.GroupSettings{
			DefaultSplitType: models.SplitType(input.DefaultSplitType),
			InvitePolicy:     models.InvitePolicy(input.InvitePolicy),
		},
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		return tx.InsertMember(ctx, &models.Member{
			GroupID: group.ID,
			UserID:  ownerID,
			Role:    models.RoleAdmin,
		})
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup retrieves a group; only members may read it.
func (s *GroupService) GetGroup(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, groupID, actorID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
		}
		return nil, err
	}
	return group, nil
}

// UpdateGroup replaces a group's name and settings; admins only.
func (s *GroupService) UpdateGroup(ctx context.Context, actorID string, group *models.Group) (*models.Group, error) {
	slog.Info("UpdateGroup request received", "group_id", group.ID, "actor_id", actorID)

	var updated *models.Group
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		actor, err := tx.GetMember(ctx, group.ID, actorID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, group.ID, ledger.ErrUnauthorized)
			}
			return err
		}
		if actor.Role != models.RoleAdmin {
			return fmt.Errorf("group updates require admin role: %w", ledger.ErrUnauthorized)
		}
		if err := tx.UpdateGroupSettings(ctx, group); err != nil {
			return err
		}
		updated, err = tx.GetGroup(ctx, group.ID)
		return err
	})
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("Group updated", "group_id", group.ID)
	return updated, nil
}

// AddMember adds a user to a group with role member. The actor must be a
// member themselves, and an admin when the group's invite policy requires
// it. Adding an existing member fails with ErrDuplicateMember and mutates
// nothing.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) (*models.Member, error) {
	slog.Info("AddMember request received", "group_id", groupID, "actor_id", actorID, "user_id", userID)

	member := &models.Member{GroupID: groupID, UserID: userID, Role: models.RoleMember}
	var group *models.Group

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		group, err = tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}

		actor, err := tx.GetMember(ctx, groupID, actorID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
			}
			return err
		}
		if group.Settings.InvitePolicy == models.InvitePolicyAdmin && actor.Role != models.RoleAdmin {
			return fmt.Errorf("invite policy requires admin role: %w", ledger.ErrUnauthorized)
		}

		if _, err := tx.GetMember(ctx, groupID, userID); err == nil {
			return fmt.Errorf("user %s in group %s: %w", userID, groupID, ledger.ErrDuplicateMember)
		} else if !errors.Is(err, ledger.ErrNotFound) {
			return err
		}

		return tx.InsertMember(ctx, member)
	})
	if err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Member added", "group_id", groupID, "user_id", userID)
	s.notifier.MemberAdded(ctx, group, member)
	return member, nil
}

// RemoveMember removes a user from a group. Members may remove themselves;
// only admins may remove another member. The removal is blocked with an
// OutstandingBalanceError while the member's net balance is outside
// tolerance, so the ledger never loses track of unresolved debt.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	slog.Info("RemoveMember request received", "group_id", groupID, "actor_id", actorID, "user_id", userID)

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		actor, err := tx.GetMember(ctx, groupID, actorID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
			}
			return err
		}
		if err := ledger.EnsureCanRemove(*actor, userID); err != nil {
			return fmt.Errorf("removing %s from group %s: %w", userID, groupID, err)
		}
		if _, err := tx.GetMember(ctx, groupID, userID); err != nil {
			return err
		}

		balances, err := groupBalances(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := ledger.EnsureSettledBalance(userID, balances); err != nil {
			return err
		}

		return tx.DeleteMember(ctx, groupID, userID)
	})
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", userID)
	return nil
}

// ListMembers retrieves a group's members; members only.
func (s *GroupService) ListMembers(ctx context.Context, actorID, groupID string) ([]models.Member, error) {
	if _, err := s.store.GetMember(ctx, groupID, actorID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
		}
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// groupBalances reads the group's full ledger state and computes net
// balances. Called inside transactions so the state read is the state
// acted on.
func groupBalances(ctx context.Context, tx storage.Store, groupID string) (map[string]decimal.Decimal, error) {
	members, err := tx.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := tx.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := tx.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.CalculateBalances(members, expenses, settlements), nil
}
