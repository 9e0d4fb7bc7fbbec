package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Keoroanthony/go-ordertrack/configs"
	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/handlers"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/notifier"
	"github.com/Keoroanthony/go-ordertrack/internal/server"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "ordertrack",
	Short:        "Customer and order tracking with SMS confirmations",
	SilenceUsage: true,
	RunE:         runServe,
}

// ordertrack serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

// ordertrack migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := boot()

		gdb, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}

		log.Info("database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// boot loads .env, reads the configuration and installs the process logger.
func boot() (config.AppConfig, *slog.Logger) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.IsProduction())
	slog.SetDefault(log)

	return cfg, log
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log := boot()
	ctx := cmd.Context()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("SESSION_SECRET is not set; using the insecure default")
	}

	// ── storage ──
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	store := db.NewStore(gdb)

	// ── notifications ──
	sms := notifier.NewSMSClient(config.LoadAfricaTalkingConfig(), log)
	log.Info("sms notifier ready", "mode", sms.Mode())

	receipts, err := notifier.NewEmailNotifier(ctx, config.LoadEmailConfig(), log)
	if err != nil {
		log.Warn("order receipts disabled", "error", err)
		receipts = notifier.NewEmailNotifierWithAPI(nil, "", log)
	}
	log.Info("receipt notifier ready", "mode", receipts.Mode())

	// ── login ──
	var provider auth.Provider
	if p, err := auth.NewOIDCProvider(ctx, cfg.OAuth); err != nil {
		log.Warn("login disabled", "error", err)
	} else {
		provider = p
	}

	router := server.NewRouter(server.Deps{
		Logger:   log,
		Session:  session.Options{Secret: cfg.SessionSecret, Secure: cfg.IsProduction()},
		Auth:     auth.NewHandler(provider, store),
		Handlers: handlers.New(store, sms, receipts),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
