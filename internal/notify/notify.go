// Package notify defines the fire-and-forget notification hook the ledger
// service calls after successful operations. Implementations deliver push,
// email or SMS; delivery failure must never fail the ledger operation, so
// the interface returns nothing and implementations swallow (and log) their
// own errors.
package notify

import (
	"context"
	"log/slog"

	"github.com/splitbook/splitbook/internal/models"
)

// Notifier receives ledger events after they are committed.
type Notifier interface {
	MemberAdded(ctx context.Context, group *models.Group, member *models.Member)
	ExpenseAdded(ctx context.Context, group *models.Group, expense *models.Expense)
	SplitFullyPaid(ctx context.Context, group *models.Group, expense *models.Expense)
	GroupSettled(ctx context.Context, group *models.Group, settlements []*models.Settlement)
}

// LogNotifier logs events via slog. It is the default when no delivery
// backend is configured.
type LogNotifier struct{}

var _ Notifier = (*LogNotifier)(nil)

func (LogNotifier) MemberAdded(ctx context.Context, group *models.Group, member *models.Member) {
	slog.InfoContext(ctx, "notify: member added", "group_id", group.ID, "user_id", member.UserID)
}

func (LogNotifier) ExpenseAdded(ctx context.Context, group *models.Group, expense *models.Expense) {
	slog.InfoContext(ctx, "notify: expense added",
		"group_id", group.ID, "expense_id", expense.ID, "amount", expense.Amount.StringFixed(2))
}

func (LogNotifier) SplitFullyPaid(ctx context.Context, group *models.Group, expense *models.Expense) {
	slog.InfoContext(ctx, "notify: expense fully paid", "group_id", group.ID, "expense_id", expense.ID)
}

func (LogNotifier) GroupSettled(ctx context.Context, group *models.Group, settlements []*models.Settlement) {
	slog.InfoContext(ctx, "notify: group settled", "group_id", group.ID, "transfers", len(settlements))
}
