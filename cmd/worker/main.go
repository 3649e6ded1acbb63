package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/common/otel"
	"basegraph.app/workspaces/core/config"
	"basegraph.app/workspaces/core/db"
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/queue"
	"basegraph.app/workspaces/internal/store"
	"basegraph.app/workspaces/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "workspaces worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Orphans.Group,
		"consumer_name", cfg.Orphans.Consumer)

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Orphans.Stream)

	consumer, err := queue.NewRedisConsumer(ctx, redisClient, queue.ConsumerConfig{
		Stream:       cfg.Orphans.Stream,
		Group:        cfg.Orphans.Group,
		Consumer:     cfg.Orphans.Consumer,
		DLQStream:    cfg.Orphans.DLQStream,
		BatchSize:    10,
		Block:        5 * time.Second,
		RequeueDelay: 30 * time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	reconciler := worker.NewOrphanReconciler(identity.NewWorkOSClient(cfg.WorkOS))

	w := worker.New(consumer, reconciler, worker.Config{
		MaxAttempts: cfg.Orphans.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Orphans.Stream,
		Group:     cfg.Orphans.Group,
		Consumer:  cfg.Orphans.Consumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  time.Minute,
		BatchSize: 10,
	}, consumer, w.Handle)

	sweeper := worker.NewSessionSweeper(store.NewStores(database.Querier()).Sessions(), time.Hour)

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go reclaimer.Run(ctx)
	go sweeper.Run(ctx)

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	sweeper.Stop()
	reclaimer.Stop()

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
		cancel()
	case <-stopped:
		if err := <-errCh; err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
workspaces worker: orphaned organization reconciler
`
