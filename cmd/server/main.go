// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/commit"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := auth.Init(cfg.TokenExpire); err != nil {
		logger.WithError(err).Fatal("failed to initialise auth")
	}

	var rdb *redis.Client
	if cfg.StoreBackend == config.BackendRedis || cfg.HistoryEnabled {
		var err error
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Fatal("redis unavailable")
		}
		defer rdb.Close()
	}

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendRedis:
		st = store.NewRedisStore(rdb, cfg.GameTTL, logger)
	case config.BackendMemory:
		st = store.NewMemoryStore(logger)
	default:
		logger.WithField("backend", cfg.StoreBackend).Fatal("unknown STORE_BACKEND")
	}

	committer := commit.New(st, logger)
	committer.MaxAttempts = cfg.MaxCommitAttempts
	committer.Timeout = cfg.StoreTimeout
	committer.SpecialChance = cfg.SpecialCardChance
	if cfg.HistoryEnabled {
		committer.History = cache.NewActionQueue(rdb, cfg.HistoryQueue)
	}

	if cfg.DatabaseEnabled {
		if err := database.ConnectDB(ctx, logger); err != nil {
			logger.WithError(err).Fatal("database unavailable")
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("failed to ensure schema")
		}
		committer.OnGameStart = func(ctx context.Context, s *game.GameState) {
			if err := database.StoreInitialGameState(ctx, s); err != nil {
				logger.WithError(err).WithField("game_id", s.ID).Warn("failed to store initial game state")
			}
		}
		committer.OnGameEnd = func(ctx context.Context, s *game.GameState) {
			if err := database.RecordGameResult(ctx, s); err != nil {
				logger.WithError(err).WithField("game_id", s.ID).Error("failed to record game result")
			}
		}
	}

	srv := handlers.NewGameServer(committer, logger)
	srv.AllowedOrigins = cfg.AllowedOrigins
	srv.ActionRate = rate.Limit(cfg.ActionRatePerSec)
	srv.ActionBurst = cfg.ActionRateBurst

	addr := ":" + cfg.Port
	if !cfg.IsProduction() {
		// bind to localhost outside production
		addr = "localhost:" + cfg.Port
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"store":   cfg.StoreBackend,
		"history": cfg.HistoryEnabled,
	}).Info("uno server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server exited")
	}
}
