// Package main initializes and starts the account authenticator
// service: configuration, logging, the account store, the
// authenticator backend and bridge, the account manager, and the HTTP
// API over the blocking client.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/k9mail/accountauth/internal/accountmanager"
	"github.com/k9mail/accountauth/internal/authenticator"
	"github.com/k9mail/accountauth/internal/client"
	"github.com/k9mail/accountauth/internal/config"
	"github.com/k9mail/accountauth/internal/db"
	"github.com/k9mail/accountauth/internal/logger"
	"github.com/k9mail/accountauth/internal/repository"
	"github.com/k9mail/accountauth/internal/server/handler/http"
	"github.com/k9mail/accountauth/internal/store"
	"github.com/k9mail/accountauth/internal/verify"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Select the account store: PostgreSQL when a DSN is configured,
	// in-memory otherwise.
	var accountStore interface {
		authenticator.AccountStore
		accountmanager.Store
	}
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		accountStore = repository.NewPostgresAccountStore(postgresDB)
		zapLogger.Info("using postgres account store")
	} else {
		accountStore = store.NewMemoryStore()
		zapLogger.Info("using in-memory account store")
	}

	// Assemble the authenticator stack: backend, bridge, manager.
	checker := verify.NewChecker(zapLogger)
	backend := authenticator.NewBackend(accountStore, checker, zapLogger)
	bridge := authenticator.NewBridge(backend, zapLogger)

	manager := accountmanager.New(accountStore, zapLogger)
	manager.RegisterAuthenticator(authenticator.AccountType, bridge)

	// The blocking client backs the HTTP handlers.
	accountClient := client.New(manager, zapLogger)
	accountHandler := &http.AccountHandler{AccountService: accountClient}

	// Build the router with middleware and routes.
	router := http.NewRouter(accountHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		if err := server.ListenAndServeTLS(options.TLSCert, options.TLSKey); err != nil {
			zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
		}
		return
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
