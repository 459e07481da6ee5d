package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/handler"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/server"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

func main() {
	var (
		configPath  string
		migrateOnly bool
	)
	pflag.StringVar(&configPath, "config", "", "path to a YAML config file")
	pflag.BoolVar(&migrateOnly, "migrate", false, "apply the database schema and exit")
	pflag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		users service.UserStore
		tasks service.TaskStore
	)
	switch cfg.Storage {
	case config.StorageMemory:
		if migrateOnly {
			slog.Error("--migrate requires mysql storage")
			os.Exit(1)
		}
		store := repository.NewMemoryStore()
		users, tasks = store.Users(), store.Tasks()
		slog.Warn("using in-memory storage, data is lost on restart")
	default:
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err != nil {
			slog.Error("database setup failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if migrateOnly || cfg.AutoMigrate {
			if err := migrate(db); err != nil {
				slog.Error("migration failed", "error", err)
				os.Exit(1)
			}
			if migrateOnly {
				return
			}
		}
		users, tasks = repository.NewUserRepository(db), repository.NewTaskRepository(db)
	}

	tokens := crypto.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := crypto.NewPasswordHasher(crypto.DefaultHashParams())

	authService := service.NewAuthService(users, tokens, hasher)
	if cfg.Admin.Username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		cancel()
		if err != nil {
			slog.Error("admin bootstrap failed", "username", cfg.Admin.Username, "error", err)
			os.Exit(1)
		}
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	r := server.NewRouter(server.Deps{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(service.NewUserService(users, hasher)),
		Tasks:     handler.NewTaskHandler(service.NewTaskService(tasks)),
		Tokens:    tokens,
		RateLimit: middleware.RateLimit(bgCtx, cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopBackground()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	slog.Info("database schema applied")
	return nil
}
