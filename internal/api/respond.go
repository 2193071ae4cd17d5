package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitbook/splitbook/internal/auth"
	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/service"
)

// errorBody is the JSON shape of every error response. Detail carries the
// structured payload of domain errors (offending ids, numeric deltas) so
// clients can render a precise message.
type errorBody struct {
	Error  string         `json:"error"`
	Detail map[string]any `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses and structured bodies.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidSplit *ledger.InvalidSplitMemberError
		sumMismatch  *ledger.SplitSumMismatchError
		outstanding  *ledger.OutstandingBalanceError
		imbalance    *ledger.ImbalancedLedgerError
	)

	switch {
	case errors.As(err, &invalidSplit):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  invalidSplit.Error(),
			Detail: map[string]any{"user_ids": invalidSplit.UserIDs},
		})
	case errors.As(err, &sumMismatch):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: sumMismatch.Error(),
			Detail: map[string]any{
				"expense_amount": sumMismatch.ExpenseAmount.StringFixed(2),
				"split_sum":      sumMismatch.SplitSum.StringFixed(2),
			},
		})
	case errors.As(err, &outstanding):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: outstanding.Error(),
			Detail: map[string]any{
				"user_id": outstanding.UserID,
				"balance": outstanding.Balance.StringFixed(2),
			},
		})
	case errors.As(err, &imbalance):
		// Upstream data corruption; never expose internals to the client.
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal ledger inconsistency"})
	case errors.Is(err, ledger.ErrDuplicateMember):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, ledger.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}
