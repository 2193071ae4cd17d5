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

// SettleGroup computes the group's net balances and persists a minimal plan
// of pending transfers that zeroes them out. The read, the planning and the
// batch insert happen in one transaction, so two concurrent settle calls
// cannot both succeed and double-create transfers.
//
// Returns ledger.ErrNothingToSettle when balances already net to zero;
// callers surface that as an explicit no-op.
func (s *GroupService) SettleGroup(ctx context.Context, actorID, groupID string) ([]*models.Settlement, error) {
	slog.Info("SettleGroup request received", "group_id", groupID, "actor_id", actorID)

	var plan []*models.Settlement
	var group *models.Group

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		group, err = tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := tx.GetMember(ctx, groupID, actorID); err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
			}
			return err
		}

		balances, err := groupBalances(ctx, tx, groupID)
		if err != nil {
			return err
		}

		transfers, err := ledger.Plan(balances)
		if err != nil {
			return err
		}

		now := time.Now().Unix()
		plan = make([]*models.Settlement, len(transfers))
		for i := range transfers {
			transfers[i].GroupID = groupID
			transfers[i].CreatedAt = now
			transfers[i].UpdatedAt = now
			plan[i] = &transfers[i]
		}
		return tx.InsertSettlements(ctx, plan)
	})
	if err != nil {
		var imbalance *ledger.ImbalancedLedgerError
		if errors.As(err, &imbalance) {
			// Data corruption, not user error. Alert loudly.
			ledgerImbalances.Inc()
			slog.Error("ALERT: ledger imbalance detected",
				"group_id", groupID,
				"debtor_total", imbalance.DebtorTotal.StringFixed(2),
				"creditor_total", imbalance.CreditorTotal.StringFixed(2),
			)
			return nil, err
		}
		if errors.Is(err, ledger.ErrNothingToSettle) {
			slog.Info("SettleGroup: nothing to settle", "group_id", groupID)
			return nil, err
		}
		slog.Error("SettleGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}

	settlementsPlanned.Add(float64(len(plan)))
	slog.Info("Group settled", "group_id", groupID, "transfers", len(plan))
	s.notifier.GroupSettled(ctx, group, plan)
	return plan, nil
}

// CompleteSettlement marks a pending settlement as completed, recording
// that the money actually moved. Only the debtor or the creditor of the
// transfer may complete it. Completing an already-completed settlement is a
// no-op; completing a cancelled one fails.
func (s *GroupService) CompleteSettlement(ctx context.Context, actorID, settlementID string) (*models.Settlement, error) {
	slog.Info("CompleteSettlement request received", "settlement_id", settlementID, "actor_id", actorID)

	var settlement *models.Settlement
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		settlement, err = tx.GetSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		if actorID != settlement.FromUserID && actorID != settlement.ToUserID {
			return fmt.Errorf("user %s is not a party to settlement %s: %w", actorID, settlementID, ledger.ErrUnauthorized)
		}

		switch settlement.Status {
		case models.SettlementCompleted:
			return nil
		case models.SettlementCancelled:
			return fmt.Errorf("%w: settlement %s is cancelled", ErrInvalidArgument, settlementID)
		}

		settlement.Status = models.SettlementCompleted
		settlement.UpdatedAt = time.Now().Unix()
		return tx.UpdateSettlementStatus(ctx, settlementID, settlement.Status, settlement.UpdatedAt)
	})
	if err != nil {
		slog.Error("CompleteSettlement failed", "settlement_id", settlementID, "error", err)
		return nil, err
	}

	slog.Info("Settlement completed", "settlement_id", settlementID)
	return settlement, nil
}

// ListSettlements retrieves a group's settlements, newest first; members only.
func (s *GroupService) ListSettlements(ctx context.Context, actorID, groupID string) ([]models.Settlement, error) {
	if _, err := s.store.GetMember(ctx, groupID, actorID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("user %s is not a member of group %s: %w", actorID, groupID, ledger.ErrUnauthorized)
		}
		return nil, err
	}
	return s.store.ListSettlements(ctx, groupID)
}
