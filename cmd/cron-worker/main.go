package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/efarmaplus/storefront/internal/cron"
	"github.com/efarmaplus/storefront/internal/kvstore"
	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/db"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/metrics"
	"github.com/efarmaplus/storefront/pkg/migrate"
	"github.com/efarmaplus/storefront/pkg/redis"
)

// Replicas of the worker share one lock per environment so a purge cycle
// runs on a single replica.
const lockKeyFormat = "efp:cron-worker:lock:%s"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cron-worker: load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "cron-worker",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

// run purges expired database carts until ctx is canceled. Redis carts expire
// on their own, so with the redis cart store there is nothing to do.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	if cfg.FeatureFlags.CartStore != config.CartStoreDB {
		logg.Info(ctx, "cart store is not the database, nothing to purge")
		return nil
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer dbClient.Close()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer redisClient.Close()
		env := cfg.App.Env
		if env == "" {
			env = config.AppEnvDev
		}
		if lock, err = cron.NewRedisLock(redisClient, fmt.Sprintf(lockKeyFormat, env), cron.DefaultLockTTL); err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "redis not configured, run a single cron-worker replica")
	}

	expiry, err := cron.NewCartExpiryJob(kvstore.NewRepository(dbClient.DB(), cfg.Cart.TTL), logg)
	if err != nil {
		return err
	}
	registry, err := cron.NewRegistry(expiry)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Recorder: metrics.New(prometheus.NewRegistry()),
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
