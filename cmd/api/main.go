package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/scythe504/bingo-backend/internal/config"
	"github.com/scythe504/bingo-backend/internal/game"
	"github.com/scythe504/bingo-backend/internal/logger"
	"github.com/scythe504/bingo-backend/internal/schedule"
	"github.com/scythe504/bingo-backend/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("event store: %v", err)
	}
	defer store.Close()

	game.Init(cfg.Game, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := schedule.NewWorker(store, game.HandleEvent, cfg.Store.DrainInterval, cfg.Store.DrainLimit, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	srv := server.NewServer(cfg)
	go func() {
		log.Infof("listening on %s (store backend: %s)", srv.Addr, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("http shutdown: %v", err)
	}
	<-workerDone
}

func newStore(cfg *config.Config) (schedule.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return schedule.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, cfg.Store.RedisKey)
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return schedule.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
	case "memory":
		return schedule.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
