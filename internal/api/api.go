// Package api exposes the ledger service over HTTP JSON. It owns routing,
// request decoding and the mapping from domain errors to status codes; all
// ledger semantics live in the service layer.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/splitbook/splitbook/internal/auth"
	"github.com/splitbook/splitbook/internal/middleware"
	"github.com/splitbook/splitbook/internal/service"
)

// API wires the HTTP routes to the ledger and auth services.
type API struct {
	router     *mux.Router
	groups     *service.GroupService
	auth       *service.AuthService
	jwtManager *auth.JWTManager
	origins    []string
}

// New builds the API with all routes registered.
func New(groups *service.GroupService, authSvc *service.AuthService, jwtManager *auth.JWTManager, allowedOrigins []string) *API {
	a := &API{
		router:     mux.NewRouter(),
		groups:     groups,
		auth:       authSvc,
		jwtManager: jwtManager,
		origins:    allowedOrigins,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.Use(middleware.Logging, middleware.Metrics)

	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	// Auth endpoints
	a.router.HandleFunc("/api/auth/register", a.handleRegister).Methods("POST")
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuth(a.jwtManager))

	protected.HandleFunc("/groups", a.handleCreateGroup).Methods("POST")
	protected.HandleFunc("/groups/{group_id}", a.handleGetGroup).Methods("GET")
	protected.HandleFunc("/groups/{group_id}", a.handleUpdateGroup).Methods("PUT")

	protected.HandleFunc("/groups/{group_id}/members", a.handleListMembers).Methods("GET")
	protected.HandleFunc("/groups/{group_id}/members", a.handleAddMember).Methods("POST")
	protected.HandleFunc("/groups/{group_id}/members/{user_id}", a.handleRemoveMember).Methods("DELETE")

	protected.HandleFunc("/groups/{group_id}/expenses", a.handleListExpenses).Methods("GET")
	protected.HandleFunc("/groups/{group_id}/expenses", a.handleAddExpense).Methods("POST")
	protected.HandleFunc("/expenses/{expense_id}/pay", a.handleMarkSplitPaid).Methods("POST")

	protected.HandleFunc("/groups/{group_id}/settle", a.handleSettleGroup).Methods("POST")
	protected.HandleFunc("/groups/{group_id}/settlements", a.handleListSettlements).Methods("GET")
	protected.HandleFunc("/settlements/{settlement_id}/complete", a.handleCompleteSettlement).Methods("POST")

	protected.HandleFunc("/groups/{group_id}/balances", a.handleGetBalances).Methods("GET")
	protected.HandleFunc("/groups/{group_id}/analytics", a.handleGetAnalytics).Methods("GET")
}

// Handler returns the fully wrapped HTTP handler, CORS included.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   a.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	return c.Handler(a.router)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
