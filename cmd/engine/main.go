// Headless variant: runs the sync scheduler without the HTTP API, for
// deployments that serve the API and the engine from separate processes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"commentflow.app/engine/common/id"
	"commentflow.app/engine/common/logger"
	"commentflow.app/engine/common/otel"
	"commentflow.app/engine/core/config"
	"commentflow.app/engine/core/db"
	"commentflow.app/engine/internal/cache"
	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/platform/youtube"
	"commentflow.app/engine/internal/store"
	"commentflow.app/engine/internal/sync"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeEngine)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)
	slog.InfoContext(ctx, "commentflow engine starting", "env", cfg.Env, "interval", cfg.Sync.Interval.String())

	if err := id.Init(id.NodeEngine); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	var channelCache *cache.ChannelCache
	if cfg.Redis.Enabled() {
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
		channelCache = cache.NewChannelCache(redisClient, cfg.Redis.ChannelTTL)
		slog.InfoContext(ctx, "redis connected")
	}

	drafter, err := drafting.New(cfg.Drafting)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create drafter", "error", err)
		os.Exit(1)
	}

	stores := store.FromPool(database.Pool())
	engine := sync.NewEngine(youtube.NewSource(cfg.Google), drafter, stores.Comments(), stores.Accounts(), stores.Sessions(), channelCache, cfg.Sync)
	scheduler := sync.NewScheduler(engine, cfg.Sync.Interval)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Run(runCtx)

	slog.InfoContext(ctx, "shutting down...")

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}
