package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/api"
	"github.com/perchard/trustbind/internal/app"
	"github.com/perchard/trustbind/internal/app/maintenance"
	"github.com/perchard/trustbind/internal/database"
	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/internal/signing"
	"github.com/perchard/trustbind/pkg/logger"
	"github.com/perchard/trustbind/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trustbind-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	key, err := signing.ParseKey(cfg.Crypto.SigningKey)
	if err != nil {
		return fmt.Errorf("parse signing key: %w", err)
	}
	log.Info("signing key loaded",
		zap.String("key_id", key.ID()),
		zap.String("public_key", key.PublicBase64()))

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	invites, err := services.NewInviteTokenService(db)
	if err != nil {
		return fmt.Errorf("initialise invite token service: %w", err)
	}

	accounts, err := services.NewAccountService(db)
	if err != nil {
		return fmt.Errorf("initialise account service: %w", err)
	}

	var sessionOpts []services.SessionOption
	if cfg.Sessions.Validity > 0 {
		sessionOpts = append(sessionOpts, services.WithSessionValidity(cfg.Sessions.Validity))
	}
	sessions, err := services.NewValidationSessionService(db, sessionOpts...)
	if err != nil {
		return fmt.Errorf("initialise validation session service: %w", err)
	}

	binder, err := services.NewBindService(invites, key, cfg.Crypto.ServerName)
	if err != nil {
		return fmt.Errorf("initialise bind service: %w", err)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	var cleanerOpts []maintenance.Option
	if cfg.Sessions.MaxAge > 0 {
		cleanerOpts = append(cleanerOpts, maintenance.WithSessionMaxAge(cfg.Sessions.MaxAge))
	}
	if cfg.Maintenance.SessionSchedule != "" {
		cleanerOpts = append(cleanerOpts, maintenance.WithSessionSchedule(cfg.Maintenance.SessionSchedule))
	}
	cleaner := maintenance.NewCleaner(sessions, cleanerOpts...)
	if cfg.Maintenance.Enabled {
		if err := cleaner.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		defer func() {
			stopCtx := cleaner.Stop()
			if err := cleaner.RunOnce(stopCtx); err != nil {
				log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
			}
		}()
	}

	router, err := api.NewRouter(api.Deps{
		DB:         db,
		Invites:    invites,
		Accounts:   accounts,
		Sessions:   sessions,
		Binder:     binder,
		Notifier:   notifier,
		Key:        key,
		ServerName: cfg.Crypto.ServerName,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func buildNotifier(cfg *app.Config) (*services.InviteNotifier, error) {
	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}

	templates := mail.NewTemplateStore(cfg.Email.TemplateDir)

	// The built-in template only applies when the operator has not deployed
	// one under the template root.
	onDisk := filepath.Join(cfg.Email.TemplateDir, filepath.FromSlash(services.InviteTemplateID))
	if _, err := os.Stat(onDisk); errors.Is(err, os.ErrNotExist) {
		if err := templates.Register(services.InviteTemplateID, services.DefaultInviteTemplate); err != nil {
			return nil, fmt.Errorf("register invite template: %w", err)
		}
	}

	notifier, err := services.NewInviteNotifier(mailer, templates, cfg.Email.From)
	if err != nil {
		return nil, fmt.Errorf("initialise invite notifier: %w", err)
	}
	return notifier, nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
