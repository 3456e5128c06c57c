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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/efarmaplus/storefront/api"
	"github.com/efarmaplus/storefront/api/controllers"
	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/routes"
	"github.com/efarmaplus/storefront/internal/admin"
	"github.com/efarmaplus/storefront/internal/cart"
	"github.com/efarmaplus/storefront/internal/catalog"
	"github.com/efarmaplus/storefront/internal/cron"
	"github.com/efarmaplus/storefront/internal/kvstore"
	"github.com/efarmaplus/storefront/internal/media"
	"github.com/efarmaplus/storefront/internal/modal"
	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/db"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/metrics"
	"github.com/efarmaplus/storefront/pkg/migrate"
	"github.com/efarmaplus/storefront/pkg/redis"
	"github.com/efarmaplus/storefront/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)
	readiness := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.FeatureFlags.CartStore == config.CartStoreRedis || cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		closers = append(closers, redisClient.Close)
		readiness["redis"] = redisClient
	}

	var cartStore cart.Store
	var purger *kvstore.Repository
	switch cfg.FeatureFlags.CartStore {
	case config.CartStoreRedis:
		cartStore = redis.NewKVStore(redisClient, cfg.Cart.TTL)
	case config.CartStoreDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return fmt.Errorf("bootstrap database: %w", err)
		}
		closers = append(closers, dbClient.Close)
		readiness["database"] = dbClient
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return fmt.Errorf("run dev migrations: %w", err)
		}
		purger = kvstore.NewRepository(dbClient.DB(), cfg.Cart.TTL)
		cartStore = purger
	default:
		return fmt.Errorf("unknown cart store %q", cfg.FeatureFlags.CartStore)
	}
	carts := cart.NewFactory(cartStore, cfg.Cart.Namespace, logg, collector)

	objectStore, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("bootstrap storage: %w", err)
	}
	uploader, err := media.NewUploader(objectStore, cfg.Media, logg, collector)
	if err != nil {
		return fmt.Errorf("create uploader: %w", err)
	}

	client, err := catalog.NewClient(cfg.RemoteAPI, catalog.WithLogger(logg))
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	products := catalog.NewProducts(client)
	users := catalog.NewUsers(client)
	orders := catalog.NewOrders(client)
	lookups := catalog.NewLookups(client)

	deps := admin.Deps{Uploader: uploader, Recorder: collector, Logger: logg}
	sessions := admin.NewRegistry(map[string]admin.Factory{
		"products": func(doc *modal.Document) admin.Page {
			return admin.NewScreen(admin.ProductsConfig(lookups), products, doc, deps)
		},
		"users": func(doc *modal.Document) admin.Page {
			return admin.NewScreen(admin.UsersConfig(lookups), users, doc, deps)
		},
		"orders": func(doc *modal.Document) admin.Page {
			return admin.NewOrdersScreen(orders, lookups, doc, deps)
		},
	})
	closers = append(closers, func() error { sessions.Close(); return nil })

	housekeeping, err := newHousekeeping(cfg, logg, sessions, purger, redisClient, collector)
	if err != nil {
		return err
	}
	go func() {
		if err := housekeeping.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "housekeeping stopped", err)
		}
	}()

	codec, err := middleware.NewSessionCodec(cfg.Session)
	if err != nil {
		return fmt.Errorf("create session codec: %w", err)
	}

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Products:       products,
		Categories:     lookups,
		Users:          users,
		Roles:          lookups,
		Carts:          carts,
		Admin:          sessions,
		Stats:          admin.NewDashboard(products, users, orders),
		Sessions:       codec,
		Observer:       collector,
		MetricsHandler: collector.Handler(),
		Readiness:      readiness,
	})
	server := api.NewServer(cfg, handler)

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       server.Addr,
		"cart_store": cfg.FeatureFlags.CartStore,
		"storage":    fmt.Sprint(objectStore),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newHousekeeping schedules the in-process jobs. Idle admin sessions live in
// this process's memory, so the sweep always runs here; expired database
// carts are purged here too unless a cron-worker owns that job.
func newHousekeeping(cfg *config.Config, logg *logger.Logger, sessions *admin.Registry, purger *kvstore.Repository, redisClient *redis.Client, rec cron.Recorder) (*cron.Service, error) {
	sweep, err := cron.NewSessionSweepJob(sessions, cfg.Session.IdleTimeout, logg)
	if err != nil {
		return nil, fmt.Errorf("create session sweep: %w", err)
	}
	jobs := []cron.Job{sweep}
	if purger != nil && redisClient == nil {
		expiry, err := cron.NewCartExpiryJob(purger, logg)
		if err != nil {
			return nil, fmt.Errorf("create cart expiry: %w", err)
		}
		jobs = append(jobs, expiry)
	}
	registry, err := cron.NewRegistry(jobs...)
	if err != nil {
		return nil, fmt.Errorf("create job registry: %w", err)
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Recorder: rec,
		Interval: time.Minute,
	})
}
