package notifications

import (
	"context"
	"sync"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

// newestOnly is the window the watcher listens on: the latest record only.
var newestOnly = docstore.Query{OrderBy: "created_at DESC", Limit: 1}

// Watcher turns newly created orders and reservations into notifications,
// whichever process wrote them. The first snapshot of each subscription is
// the baseline and is never announced.
type Watcher struct {
	orders       *docstore.Collection[models.Order]
	reservations *docstore.Collection[models.Reservation]
	notifier     Notifier
	logg         *logger.Logger

	mu     sync.Mutex
	unsubs []docstore.Unsubscribe
}

func NewWatcher(
	orders *docstore.Collection[models.Order],
	reservations *docstore.Collection[models.Reservation],
	notifier Notifier,
	logg *logger.Logger,
) (*Watcher, error) {
	if orders == nil || reservations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "watcher collections required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "watcher notifier required")
	}
	return &Watcher{
		orders:       orders,
		reservations: reservations,
		notifier:     notifier,
		logg:         logg,
	}, nil
}

// baseline tracks whether a subscription has delivered its first snapshot.
// Each subscription owns one; callbacks for a subscription never overlap.
type baseline struct {
	seen bool
}

// added returns the records a snapshot introduced, or nothing for the
// baseline snapshot.
func added[T docstore.Record](state *baseline, snap docstore.Snapshot[T]) []T {
	if !state.seen {
		state.seen = true
		return nil
	}
	var out []T
	for _, ch := range snap.Changes {
		if ch.Type == docstore.ChangeAdded {
			out = append(out, ch.Record)
		}
	}
	return out
}

// Start opens both subscriptions. Notifications are written with ctx, so
// pass one that outlives the request that started the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.unsubs) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "watcher already started")
	}

	orderState := &baseline{}
	stopOrders, err := w.orders.Subscribe(ctx, newestOnly, func(snap docstore.Snapshot[models.Order]) {
		for _, o := range added(orderState, snap) {
			w.notifier.Notify(ctx, enums.NotificationTypeOrder, OrderMessage(o.Code, o.Name), map[string]any{
				DataOrderID:      o.Code,
				DataCustomerName: o.Name,
			})
		}
	})
	if err != nil {
		return err
	}

	reservationState := &baseline{}
	stopReservations, err := w.reservations.Subscribe(ctx, newestOnly, func(snap docstore.Snapshot[models.Reservation]) {
		for _, r := range added(reservationState, snap) {
			w.notifier.Notify(ctx, enums.NotificationTypeReservation, ReservationMessage(r.Code, r.Name), map[string]any{
				DataReservationID: r.Code,
				DataCustomerName:  r.Name,
			})
		}
	})
	if err != nil {
		stopOrders()
		return err
	}

	w.unsubs = []docstore.Unsubscribe{stopOrders, stopReservations}
	if w.logg != nil {
		w.logg.Info(ctx, "notification watcher started")
	}
	return nil
}

// Stop disposes both subscriptions. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubs := w.unsubs
	w.unsubs = nil
	w.mu.Unlock()

	for _, stop := range unsubs {
		stop()
	}
}
