package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/teamboard/teamboard/internal/api"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/board"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/column"
	"github.com/teamboard/teamboard/internal/config"
	"github.com/teamboard/teamboard/internal/project"
	"github.com/teamboard/teamboard/internal/team"
	"github.com/teamboard/teamboard/internal/user"
	"github.com/teamboard/teamboard/internal/ws"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	userRepo := user.NewRepository(pool)
	teamRepo := team.NewRepository(pool)
	projectRepo := project.NewRepository(pool)
	boardRepo := board.NewRepository(pool)
	columnRepo := column.NewRepository(pool)
	cardRepo := card.NewRepository(pool)

	authService := auth.NewService(
		userRepo,
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTL)*time.Minute,
		time.Duration(cfg.RefreshTokenTTL)*time.Minute,
		cfg.BcryptCost,
	)

	hub := ws.NewHub()
	defer hub.CloseAll()

	dispatcher := ws.NewDispatcher(cardRepo, columnRepo, boardRepo, projectRepo, teamRepo, int64(cfg.WSWorkers))
	boardSocket := ws.NewServer(hub, dispatcher, authService, boardRepo, teamRepo)

	router := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		DBPinger:    pool,
		Version:     cfg.Version,
		Users:       userRepo,
		Teams:       teamRepo,
		Projects:    projectRepo,
		Boards:      boardRepo,
		Columns:     columnRepo,
		Cards:       cardRepo,
		BoardSocket: boardSocket,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting teamboard server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
