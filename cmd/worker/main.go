package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afrifood/afrifood-backend/api"
	"github.com/afrifood/afrifood-backend/internal/cron"
	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/internal/records"
	"github.com/afrifood/afrifood-backend/pkg/config"
	"github.com/afrifood/afrifood-backend/pkg/db"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/instance"
	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/metrics"
	"github.com/afrifood/afrifood-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cron cycle and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address when set")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "worker"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg, *once, *metricsAddr); err != nil {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, once bool, metricsAddr string) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bus, err := records.OpenBus(ctx, cfg, redisClient, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logg.Error(context.Background(), "error closing change bus", err)
		}
	}()

	if cfg.Store.Bus == config.StoreBusLocal {
		logg.Warn(ctx, "local change bus cannot see api writes; only the reconcile job will backfill notifications")
	}

	registry := prometheus.NewRegistry()
	if metricsAddr != "" && !once {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := api.Serve(ctx, api.NewServer(metricsAddr, mux), logg); err != nil {
				logg.Error(ctx, "metrics server stopped", err)
			}
		}()
	}
	stores, err := records.New(dbClient.DB(), docstore.Options{
		Bus:     bus.Bus,
		Logger:  logg,
		Metrics: metrics.NewFanoutMetrics(registry),
	})
	if err != nil {
		return err
	}

	emitter, err := notifications.NewEmitter(stores.Notifications, logg)
	if err != nil {
		return err
	}
	watcher, err := notifications.NewWatcher(stores.Orders, stores.Reservations, emitter, logg)
	if err != nil {
		return err
	}

	reconcile, err := cron.NewNotificationReconcileJob(cron.NotificationReconcileJobParams{
		Logger:        logg,
		Orders:        stores.Orders,
		Reservations:  stores.Reservations,
		Notifications: stores.Notifications,
		Emitter:       emitter,
		Window:        cfg.Cron.ReconcileWindow,
	})
	if err != nil {
		return err
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cron.LockName), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}
	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcile),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	deps := map[string]pinger{
		"database": dbClient,
		"redis":    redisClient,
	}
	if bus.PubSub != nil {
		deps["pubsub"] = bus.PubSub
	}
	svc, err := NewService(ServiceParams{
		Logger:  logg,
		Deps:    deps,
		Watcher: watcher,
		Cron:    scheduler,
	})
	if err != nil {
		return err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"bus":      cfg.Store.Bus,
		"once":     once,
		"instance": instance.ID("worker"),
	}), "starting worker")
	if once {
		return svc.RunOnce(ctx)
	}
	return svc.Run(ctx)
}
