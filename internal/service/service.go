// Package service orchestrates the ledger core against the store. Every
// public operation runs inside one store transaction; the database's
// isolation is the only concurrency-correctness mechanism, the services
// themselves are stateless and hold no locks.
package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/notify"
	"github.com/splitbook/splitbook/internal/storage"
)

// ErrInvalidArgument flags malformed input (non-positive amount, wrong
// currency, missing fields). Callers map it to a bad-request response.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	expensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitbook_expenses_created_total",
		Help: "Number of expenses recorded.",
	})
	settlementsPlanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitbook_settlements_planned_total",
		Help: "Number of settlement transfers emitted by the planner.",
	})
	ledgerImbalances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitbook_ledger_imbalance_total",
		Help: "Conservation violations detected by the planner. Any increase means corrupt data and should alert.",
	})
)

// GroupService exposes the group ledger operations: groups, membership,
// expenses, settlements and analytics.
type GroupService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewGroupService creates a GroupService with the given storage backend and
// notification hook. Pass notify.LogNotifier{} when no delivery backend is
// configured.
func NewGroupService(store storage.Store, notifier notify.Notifier) *GroupService {
	return &GroupService{store: store, notifier: notifier}
}

// CreateGroupInput carries the fields of a createGroup request.
type CreateGroupInput struct {
	Name     string
	Currency string
	// DefaultSplitType and InvitePolicy are optional; the store applies
	// defaults (equal, any_member) when empty.
	DefaultSplitType string
	InvitePolicy     string
}

// SplitInput is one explicit share of a new expense.
type SplitInput struct {
	UserID string
	Amount decimal.Decimal
}

// ExpenseInput carries the fields of an addExpense request. When Splits is
// empty the expense is divided per the group's default split type.
type ExpenseInput struct {
	PayerID     string
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	Date        int64
	Splits      []SplitInput
}
