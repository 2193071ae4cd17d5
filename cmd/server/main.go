package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/splitbook/splitbook/internal/api"
	"github.com/splitbook/splitbook/internal/auth"
	"github.com/splitbook/splitbook/internal/config"
	"github.com/splitbook/splitbook/internal/notify"
	"github.com/splitbook/splitbook/internal/service"
	"github.com/splitbook/splitbook/internal/storage/sqlite"
	"github.com/splitbook/splitbook/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager)
	groupSvc := service.NewGroupService(store, notify.LogNotifier{})

	handler := api.New(groupSvc, authSvc, jwtManager, cfg.AllowedOrigins).Handler()

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
