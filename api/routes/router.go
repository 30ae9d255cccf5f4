package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afrifood/afrifood-backend/api/controllers"
	"github.com/afrifood/afrifood-backend/api/middleware"
	"github.com/afrifood/afrifood-backend/internal/auth"
	"github.com/afrifood/afrifood-backend/internal/dashboard"
	"github.com/afrifood/afrifood-backend/internal/menu"
	"github.com/afrifood/afrifood-backend/internal/newsletter"
	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/internal/orders"
	"github.com/afrifood/afrifood-backend/pkg/auth/session"
	"github.com/afrifood/afrifood-backend/pkg/config"
	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/metrics"
	pkgredis "github.com/afrifood/afrifood-backend/pkg/redis"
)

// rateLimiter is the slice of the redis client the login throttle needs.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps is everything the router hands to controllers and middleware.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	// Idempotency and RateLimiter are normally the same redis client.
	Idempotency pkgredis.IdempotencyStore
	RateLimiter rateLimiter
	Ready       map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Catalog       *menu.Catalog
	Auth          auth.Service
	Orders        orders.Service
	Notifications notifications.Service
	Newsletter    newsletter.Service
	Dashboard     *dashboard.Service

	// StreamHeartbeat is how often the dashboard stream sends a keep-alive comment.
	StreamHeartbeat time.Duration
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	requireAdmin := middleware.Auth(cfg.JWT, d.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.Idempotency(d.Idempotency, logg))
		r.Get("/menu", controllers.PublicMenu(d.Catalog))
		r.Post("/orders", controllers.PublicCreateOrder(d.Orders, logg))
		r.Get("/orders/{code}", controllers.PublicTrackOrder(d.Orders, logg))
		r.Post("/reservations", controllers.PublicCreateReservation(d.Orders, logg))
		r.Post("/newsletter", controllers.PublicNewsletterSubscribe(d.Newsletter, logg))
		r.Post("/newsletter/welcome-email", controllers.PublicWelcomeEmail(d.Newsletter, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(d.Auth, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/login", controllers.AdminAuthLogin(d.Auth, logg))
		r.With(requireAdmin).Post("/logout", controllers.AdminAuthLogout(d.Auth, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAdmin)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminSetOrderStatus(d.Orders, logg))
		})
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.AdminListReservations(d.Orders, logg))
			r.Patch("/{reservationId}/status", controllers.AdminSetReservationStatus(d.Orders, logg))
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminListNotifications(d.Notifications, logg))
			r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.AdminMarkNotificationRead(d.Notifications, logg))
		})
		r.Route("/newsletter", func(r chi.Router) {
			r.Get("/", controllers.AdminListSubscribers(d.Newsletter, logg))
			r.Post("/", controllers.AdminAddSubscriber(d.Newsletter, logg))
			r.Patch("/{subscriberId}", controllers.AdminEditSubscriber(d.Newsletter, logg))
			r.Delete("/{subscriberId}", controllers.AdminDeleteSubscriber(d.Newsletter, logg))
		})
		r.Get("/dashboard", controllers.AdminDashboard(d.Dashboard, logg))
		r.Get("/dashboard/stream", controllers.AdminDashboardStream(d.Dashboard, logg, d.StreamHeartbeat))
	})

	return r
}
