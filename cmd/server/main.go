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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/workspaces/common/id"
	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/common/otel"
	"basegraph.app/workspaces/core/config"
	"basegraph.app/workspaces/core/db"
	"basegraph.app/workspaces/internal/http/middleware"
	httprouter "basegraph.app/workspaces/internal/http/router"
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/queue"
	"basegraph.app/workspaces/internal/ratelimit"
	"basegraph.app/workspaces/internal/service"
	"basegraph.app/workspaces/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "workspaces server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	workos := identity.NewWorkOSClient(cfg.WorkOS)
	stores := store.NewStores(database.Querier())

	servicesCfg := service.ServicesConfig{
		Stores:        stores,
		TxRunner:      service.NewTxRunner(database),
		Organizations: workos,
		Tokens:        workos,
		Authenticator: workos,
	}
	routerCfg := httprouter.RouterConfig{
		DashboardURL: cfg.DashboardURL,
		IsProduction: cfg.IsProduction(),
	}

	if cfg.Redis.Enabled() {
		redisClient, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		slog.InfoContext(ctx, "redis connected", "orphan_stream", cfg.Orphans.Stream)

		if cfg.Orphans.Enabled() {
			servicesCfg.Orphans = queue.NewRedisProducer(redisClient, cfg.Orphans.Stream, slog.Default())
		}
		routerCfg.Limiter = ratelimit.NewWindowLimiter(ratelimit.NewRedisCounter(redisClient), map[ratelimit.Policy]ratelimit.Rule{
			ratelimit.PolicyStandard:   {Limit: cfg.RateLimit.StandardPerWindow, Window: cfg.RateLimit.Window},
			ratelimit.PolicyHeavyWrite: {Limit: cfg.RateLimit.HeavyWritePerWindow, Window: cfg.RateLimit.Window},
		})
	} else {
		slog.WarnContext(ctx, "redis disabled: no rate limiting, orphaned organizations are only logged")
	}

	services := service.NewServices(servicesCfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, routerCfg)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, routerCfg httprouter.RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, routerCfg)

	return router
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

const banner = `
 _      __         __                              
| | /| / /__  ____/ /__ ___ ___  ___ ________ ___ 
| |/ |/ / _ \/ __/  '_/(_-</ _ \/ _ '/ __/ -_|_-< 
|__/|__/\___/_/ /_/\_\/___/ .__/\_,_/\__/\__/___/ 
                         /_/                      
`
