package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

var newestFirst = docstore.Query{OrderBy: "created_at DESC"}

// Service opens dashboard sessions and one-shot views.
type Service struct {
	orders       *docstore.Collection[models.Order]
	reservations *docstore.Collection[models.Reservation]
	bell         notifications.Service
	window       int
	loc          *time.Location
	now          func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone "today" is judged in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNotificationWindow sets how many notifications are fetched for the bell.
func WithNotificationWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.window = n
		}
	}
}

func NewService(
	orders *docstore.Collection[models.Order],
	reservations *docstore.Collection[models.Reservation],
	bell notifications.Service,
	opts ...Option,
) (*Service, error) {
	if orders == nil || reservations == nil || bell == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard dependencies required")
	}
	s := &Service{
		orders:       orders,
		reservations: reservations,
		bell:         bell,
		window:       notifications.DefaultWindow,
		loc:          time.UTC,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// View loads a one-shot dashboard view.
func (s *Service) View(ctx context.Context) (View, error) {
	var errs error
	orders, err := s.orders.List(ctx, newestFirst)
	errs = multierr.Append(errs, err)
	reservations, err := s.reservations.List(ctx, newestFirst)
	errs = multierr.Append(errs, err)
	bell, err := s.bell.ListRecent(ctx, s.window)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return View{}, errs
	}

	st := state{orders: orders, reservations: reservations, notifications: bell}
	return st.view(ComputeStats(orders, s.now(), s.loc)), nil
}

const (
	loadedOrders = 1 << iota
	loadedReservations
	loadedNotifications
	loadedAll = loadedOrders | loadedReservations | loadedNotifications
)

// Session keeps a View current for one viewer.
type Session struct {
	svc      *Service
	onUpdate func(View)

	mu     sync.Mutex
	st     state
	loaded int
	closed bool
	unsubs []docstore.Unsubscribe
}

// Open subscribes to orders, reservations and the notification window.
// onUpdate receives the first View once all three have loaded and a fresh
// View after every change; calls never overlap. If any subscription fails
// the ones already opened are closed.
func (s *Service) Open(ctx context.Context, onUpdate func(View)) (*Session, error) {
	if onUpdate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "update callback required")
	}
	sess := &Session{svc: s, onUpdate: onUpdate}

	stopOrders, err := s.orders.Subscribe(ctx, newestFirst, func(snap docstore.Snapshot[models.Order]) {
		sess.apply(loadedOrders, func(st *state) { st.orders = snap.Records })
	})
	if err != nil {
		return nil, err
	}
	sess.track(stopOrders)

	stopReservations, err := s.reservations.Subscribe(ctx, newestFirst, func(snap docstore.Snapshot[models.Reservation]) {
		sess.apply(loadedReservations, func(st *state) { st.reservations = snap.Records })
	})
	if err != nil {
		sess.Close()
		return nil, err
	}
	sess.track(stopReservations)

	stopBell, err := s.bell.Subscribe(ctx, s.window, func(list []models.Notification) {
		sess.apply(loadedNotifications, func(st *state) { st.notifications = list })
	})
	if err != nil {
		sess.Close()
		return nil, err
	}
	sess.track(stopBell)

	return sess, nil
}

func (sess *Session) track(stop docstore.Unsubscribe) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.unsubs = append(sess.unsubs, stop)
}

func (sess *Session) apply(part int, update func(*state)) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	update(&sess.st)
	sess.loaded |= part
	if sess.loaded != loadedAll {
		return
	}
	sess.onUpdate(sess.st.view(ComputeStats(sess.st.orders, sess.svc.now(), sess.svc.loc)))
}

// Close disposes all subscriptions. Safe to call more than once; must not be
// called from onUpdate.
func (sess *Session) Close() {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.closed = true
	unsubs := sess.unsubs
	sess.unsubs = nil
	sess.mu.Unlock()

	for _, stop := range unsubs {
		stop()
	}
}
