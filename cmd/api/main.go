package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/afrifood/afrifood-backend/api"
	"github.com/afrifood/afrifood-backend/api/controllers"
	"github.com/afrifood/afrifood-backend/api/routes"
	"github.com/afrifood/afrifood-backend/internal/auth"
	"github.com/afrifood/afrifood-backend/internal/dashboard"
	"github.com/afrifood/afrifood-backend/internal/menu"
	"github.com/afrifood/afrifood-backend/internal/newsletter"
	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/internal/orders"
	"github.com/afrifood/afrifood-backend/internal/records"
	"github.com/afrifood/afrifood-backend/pkg/auth/session"
	"github.com/afrifood/afrifood-backend/pkg/config"
	"github.com/afrifood/afrifood-backend/pkg/contactlinks"
	"github.com/afrifood/afrifood-backend/pkg/db"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/instance"
	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/mailer"
	"github.com/afrifood/afrifood-backend/pkg/metrics"
	"github.com/afrifood/afrifood-backend/pkg/migrate"
	"github.com/afrifood/afrifood-backend/pkg/redis"
)

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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus, err := records.OpenBus(ctx, cfg, redisClient, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logg.Error(context.Background(), "error closing change bus", err)
		}
	}()

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
	bell, err := notifications.NewService(stores.Notifications)
	if err != nil {
		return err
	}

	catalog := menu.Default()
	orderService, err := orders.NewService(
		stores.Orders,
		stores.Reservations,
		catalog,
		emitter,
		orders.WithLinks(contactlinks.New(cfg.Contact.WhatsAppPhone, cfg.Contact.MessengerPage)),
	)
	if err != nil {
		return err
	}

	var welcome newsletter.WelcomeSender
	if cfg.Sendgrid.APIKey != "" {
		client, err := mailer.NewClient(
			cfg.Sendgrid.APIKey,
			mailer.Address{Email: cfg.Sendgrid.DefaultFrom, Name: cfg.Sendgrid.FromName},
			mailer.WithBaseURL(cfg.Sendgrid.BaseURL),
		)
		if err != nil {
			return err
		}
		welcome = client
	} else {
		logg.Warn(ctx, "sendgrid api key not set; welcome emails disabled")
	}
	newsletterService, err := newsletter.NewService(newsletter.Config{
		Store:          stores.Newsletter,
		Notifier:       emitter,
		Mailer:         welcome,
		Logger:         logg,
		LocateTimeout:  cfg.Newsletter.LocationTimeout,
		WelcomeTimeout: cfg.Newsletter.WelcomeTimeout,
	})
	if err != nil {
		return err
	}
	defer newsletterService.Wait()

	dashboardService, err := dashboard.NewService(
		stores.Orders,
		stores.Reservations,
		bell,
		dashboard.WithLocation(cfg.Dashboard.Location()),
		dashboard.WithNotificationWindow(cfg.Dashboard.NotificationWindow),
	)
	if err != nil {
		return err
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Admins:         auth.NewRepository(dbClient.DB()),
		Sessions:       sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	if cfg.FeatureFlags.InlineWatcher {
		watcher, err := notifications.NewWatcher(stores.Orders, stores.Reservations, emitter, logg)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
		logg.Info(ctx, "notification watcher running inline")
	}

	ready := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}
	if bus.PubSub != nil {
		ready["pubsub"] = bus.PubSub
	}

	handler := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Sessions:      sessionManager,
		Idempotency:   redisClient,
		RateLimiter:   redisClient,
		Ready:         ready,
		Gatherer:      registry,
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
		Catalog:       catalog,
		Auth:          authService,
		Orders:        orderService,
		Notifications: bell,
		Newsletter:    newsletterService,
		Dashboard:     dashboardService,
	})

	addr := ":" + cfg.App.Port
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"bus":      cfg.Store.Bus,
		"instance": instance.ID("api"),
	}), "starting api server")

	return api.Serve(ctx, api.NewServer(addr, handler), logg)
}
