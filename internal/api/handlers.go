package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/splitbook/splitbook/internal/ledger"
	"github.com/splitbook/splitbook/internal/middleware"
	"github.com/splitbook/splitbook/internal/models"
	"github.com/splitbook/splitbook/internal/service"
)

// All amounts in the JSON API are decimal strings ("12.34"), never floats.

type groupResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Currency         string `json:"currency"`
	OwnerID          string `json:"owner_id"`
	DefaultSplitType string `json:"default_split_type"`
	InvitePolicy     string `json:"invite_policy"`
	CreatedAt        int64  `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:               g.ID,
		Name:             g.Name,
		Currency:         g.Currency,
		OwnerID:          g.OwnerID,
		DefaultSplitType: string(g.Settings.DefaultSplitType),
		InvitePolicy:     string(g.Settings.InvitePolicy),
		CreatedAt:        g.CreatedAt,
	}
}

type memberResponse struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

func toMemberResponse(m *models.Member) memberResponse {
	return memberResponse{GroupID: m.GroupID, UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
}

type splitResponse struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
	Status string `json:"status"`
	PaidAt int64  `json:"paid_at,omitempty"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        int64           `json:"date"`
	Splits      []splitResponse `json:"splits"`
	CreatedAt   int64           `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	splits := make([]splitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = splitResponse{
			UserID: s.UserID,
			Amount: s.Amount.StringFixed(2),
			Status: string(s.Status),
			PaidAt: s.PaidAt,
		}
	}
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount.StringFixed(2),
		Currency:    e.Currency,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

type settlementResponse struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount.StringFixed(2),
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func balancesToStrings(balances map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(balances))
	for userID, bal := range balances {
		out[userID] = bal.StringFixed(2)
	}
	return out
}

func (a *API) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string `json:"name"`
		Currency         string `json:"currency"`
		DefaultSplitType string `json:"default_split_type"`
		InvitePolicy     string `json:"invite_policy"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := a.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), service.CreateGroupInput{
		Name:             req.Name,
		Currency:         req.Currency,
		DefaultSplitType: req.DefaultSplitType,
		InvitePolicy:     req.InvitePolicy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (a *API) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := a.groups.GetGroup(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (a *API) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string `json:"name"`
		DefaultSplitType string `json:"default_split_type"`
		InvitePolicy     string `json:"invite_policy"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := a.groups.UpdateGroup(r.Context(), middleware.GetUserID(r.Context()), &models.Group{
		ID:   mux.Vars(r)["group_id"],
		Name: req.Name,
		Settings: models.GroupSettings{
			DefaultSplitType: models.SplitType(req.DefaultSplitType),
			InvitePolicy:     models.InvitePolicy(req.InvitePolicy),
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.groups.ListMembers(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]memberResponse, len(members))
	for i := range members {
		out[i] = toMemberResponse(&members[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := a.groups.AddMember(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"], req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (a *API) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := a.groups.RemoveMember(r.Context(), middleware.GetUserID(r.Context()), vars["group_id"], vars["user_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.groups.ListExpenses(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayerID     string `json:"payer_id"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        int64  `json:"date"`
		Splits      []struct {
			UserID string `json:"user_id"`
			Amount string `json:"amount"`
		} `json:"splits"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "amount must be a decimal string"})
		return
	}

	input := service.ExpenseInput{
		PayerID:     req.PayerID,
		Amount:      amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
	for _, s := range req.Splits {
		splitAmount, err := decimal.NewFromString(s.Amount)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "split amount must be a decimal string"})
			return
		}
		input.Splits = append(input.Splits, service.SplitInput{UserID: s.UserID, Amount: splitAmount})
	}

	expense, err := a.groups.AddExpense(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"], input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (a *API) handleMarkSplitPaid(w http.ResponseWriter, r *http.Request) {
	split, err := a.groups.MarkSplitPaid(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["expense_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splitResponse{
		UserID: split.UserID,
		Amount: split.Amount.StringFixed(2),
		Status: string(split.Status),
		PaidAt: split.PaidAt,
	})
}

type settleResponse struct {
	Settlements     []settlementResponse `json:"settlements"`
	NothingToSettle bool                 `json:"nothing_to_settle"`
}

func (a *API) handleSettleGroup(w http.ResponseWriter, r *http.Request) {
	plan, err := a.groups.SettleGroup(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if errors.Is(err, ledger.ErrNothingToSettle) {
		// Explicit no-op, not a failure.
		writeJSON(w, http.StatusOK, settleResponse{Settlements: []settlementResponse{}, NothingToSettle: true})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	out := settleResponse{Settlements: make([]settlementResponse, len(plan))}
	for i, s := range plan {
		out.Settlements[i] = toSettlementResponse(s)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := a.groups.ListSettlements(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]settlementResponse, len(settlements))
	for i := range settlements {
		out[i] = toSettlementResponse(&settlements[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCompleteSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := a.groups.CompleteSettlement(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["settlement_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (a *API) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := a.groups.GetBalances(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": balancesToStrings(balances)})
}

type analyticsResponse struct {
	GroupID          string            `json:"group_id"`
	Currency         string            `json:"currency"`
	TotalExpenses    string            `json:"total_expenses"`
	TotalSettled     string            `json:"total_settled"`
	ExpenseCount     int               `json:"expense_count"`
	MemberBalances   map[string]string `json:"member_balances"`
	CategoryTotals   map[string]string `json:"category_totals"`
	PendingTransfers int               `json:"pending_transfers"`
}

func (a *API) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := a.groups.GetAnalytics(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return
	}

	categories := make(map[string]string, len(analytics.CategoryTotals))
	for category, total := range analytics.CategoryTotals {
		categories[category] = total.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		GroupID:          analytics.GroupID,
		Currency:         analytics.Currency,
		TotalExpenses:    analytics.TotalExpenses.StringFixed(2),
		TotalSettled:     analytics.TotalSettled.StringFixed(2),
		ExpenseCount:     analytics.ExpenseCount,
		MemberBalances:   balancesToStrings(analytics.MemberBalances),
		CategoryTotals:   categories,
		PendingTransfers: analytics.PendingTransfers,
	})
}
