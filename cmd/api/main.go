package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davquintana/contactbook-backend/internal/api"
	"github.com/davquintana/contactbook-backend/internal/auth"
	"github.com/davquintana/contactbook-backend/internal/config"
	"github.com/davquintana/contactbook-backend/internal/db"
	"github.com/davquintana/contactbook-backend/internal/logger"
	"github.com/davquintana/contactbook-backend/internal/metrics"
	"github.com/davquintana/contactbook-backend/internal/repository"
	"github.com/davquintana/contactbook-backend/internal/repository/memory"
	"github.com/davquintana/contactbook-backend/internal/repository/postgres"
	"github.com/davquintana/contactbook-backend/internal/services"
	"github.com/davquintana/contactbook-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users    repository.Users
		contacts repository.Contacts
		audits   repository.AuditLogs
	)
	if cfg.DatabaseURL == "memory" {
		// Ephemeral store for local development.
		repos := memory.NewRepositories(memory.NewStore())
		users, contacts, audits = repos.Users, repos.Contacts, repos.AuditLogs
		log.Warn("using in-memory store, data will not survive a restart")
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}

		repos := postgres.NewRepositories(pool)
		users, contacts, audits = repos.Users, repos.Contacts, repos.AuditLogs
	}

	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	accountSvc := services.NewAccountService(users, audits, wp, cfg)
	contactSvc := services.NewContactService(contacts, users, audits, wp)

	metrics.Init()
	r := api.NewRouter(cfg, tm, accountSvc, contactSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
