// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitbook/splitbook/internal/models"
)

// Store defines the interface for ledger storage operations. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Missing rows are reported by wrapping ledger.ErrNotFound.
type Store interface {
	// InTx runs fn against a transaction-scoped Store and commits if fn
	// returns nil, rolling back otherwise. Calls on the scoped store see
	// uncommitted writes; a nested InTx joins the enclosing transaction.
	// Every compound ledger operation runs inside one InTx so concurrent
	// requests rely on the database's isolation, not in-process locks.
	InTx(ctx context.Context, fn func(Store) error) error

	// CreateGroup persists a new group. ID and CreatedAt are populated by
	// the store when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroupSettings replaces a group's name and settings.
	UpdateGroupSettings(ctx context.Context, group *models.Group) error

	// InsertMember adds a membership row.
	InsertMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves one membership row.
	GetMember(ctx context.Context, groupID, userID string) (*models.Member, error)

	// ListMembers retrieves all memberships of a group ordered by user id.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// DeleteMember removes a membership row.
	DeleteMember(ctx context.Context, groupID, userID string) error

	// InsertExpense persists an expense together with all of its splits.
	InsertExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses retrieves all expenses of a group, splits included,
	// newest first.
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	// UpdateSplitStatus sets one split's status and paid-at timestamp.
	UpdateSplitStatus(ctx context.Context, expenseID, userID string, status models.SplitStatus, paidAt int64) error

	// InsertSettlements persists a batch of settlements; all or none.
	InsertSettlements(ctx context.Context, settlements []*models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlements retrieves all settlements of a group, newest first.
	ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)

	// UpdateSettlementStatus sets one settlement's status and updated-at.
	UpdateSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus, updatedAt int64) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
