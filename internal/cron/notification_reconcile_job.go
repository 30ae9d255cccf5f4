package cron

import (
	"context"
	"errors"
	"time"

	"go.uber.org/multierr"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

const (
	notificationReconcileJobName = "notification_reconcile"
	defaultReconcileWindow       = 15 * time.Minute
	// Records younger than this may still have their notification in flight.
	defaultReconcileSettle = time.Minute
)

type emitter interface {
	Emit(ctx context.Context, typ enums.NotificationType, message string, data map[string]any) error
}

type NotificationReconcileJobParams struct {
	Logger        *logger.Logger
	Orders        *docstore.Collection[models.Order]
	Reservations  *docstore.Collection[models.Reservation]
	Notifications *docstore.Collection[models.Notification]
	Emitter       emitter
	Window        time.Duration
	Settle        time.Duration
	Now           func() time.Time
}

// NewNotificationReconcileJob builds the job that backfills bell entries for
// orders and reservations whose notification never got written, for example
// when a change signal was coalesced away while the watcher was busy.
func NewNotificationReconcileJob(params NotificationReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Orders == nil || params.Reservations == nil || params.Notifications == nil {
		return nil, errors.New("collections required")
	}
	if params.Emitter == nil {
		return nil, errors.New("notification emitter required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultReconcileWindow
	}
	settle := params.Settle
	if settle <= 0 {
		settle = defaultReconcileSettle
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &notificationReconcileJob{
		logg:          params.Logger,
		orders:        params.Orders,
		reservations:  params.Reservations,
		notifications: params.Notifications,
		emitter:       params.Emitter,
		window:        window,
		settle:        settle,
		now:           now,
	}, nil
}

type notificationReconcileJob struct {
	logg          *logger.Logger
	orders        *docstore.Collection[models.Order]
	reservations  *docstore.Collection[models.Reservation]
	notifications *docstore.Collection[models.Notification]
	emitter       emitter
	window        time.Duration
	settle        time.Duration
	now           func() time.Time
}

func (j *notificationReconcileJob) Name() string { return notificationReconcileJobName }

func (j *notificationReconcileJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	q := docstore.Query{
		OrderBy: "created_at ASC",
		Scopes:  []func(*gorm.DB) *gorm.DB{createdBetween(now.Add(-j.window), now.Add(-j.settle))},
	}

	orders, err := j.orders.List(ctx, q)
	if err != nil {
		return err
	}
	reservations, err := j.reservations.List(ctx, q)
	if err != nil {
		return err
	}

	var errs error
	backfilled := 0
	for _, o := range orders {
		ok, err := j.backfill(ctx, notifications.DataOrderID, o.Code, enums.NotificationTypeOrder,
			notifications.OrderMessage(o.Code, o.Name), notifications.OrderData(o))
		errs = multierr.Append(errs, err)
		if ok {
			backfilled++
		}
	}
	for _, r := range reservations {
		ok, err := j.backfill(ctx, notifications.DataReservationID, r.Code, enums.NotificationTypeReservation,
			notifications.ReservationMessage(r.Code, r.Name), notifications.ReservationData(r))
		errs = multierr.Append(errs, err)
		if ok {
			backfilled++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"orders_scanned":       len(orders),
		"reservations_scanned": len(reservations),
		"backfilled":           backfilled,
	}), "notification reconcile finished")
	return errs
}

// backfill emits a notification for code unless one already references it.
func (j *notificationReconcileJob) backfill(ctx context.Context, key, code string, typ enums.NotificationType, message string, data map[string]any) (bool, error) {
	n, err := j.notifications.Count(ctx, referencing(key, code))
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := j.emitter.Emit(ctx, typ, message, data); err != nil {
		return false, err
	}
	return true, nil
}

func createdBetween(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at >= ? AND created_at <= ?", from, to)
	}
}

func referencing(key, code string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(datatypes.JSONQuery("data").Equals(code, key))
	}
}
