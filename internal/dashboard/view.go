package dashboard

import (
	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
)

const (
	RecentOrdersShown  = 5
	NotificationsShown = 5
)

// View is everything the dashboard renders.
type View struct {
	Stats         Stats                 `json:"stats"`
	RecentOrders  []models.Order        `json:"recentOrders"`
	Orders        []models.Order        `json:"orders"`
	Reservations  []models.Reservation  `json:"reservations"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// state holds the latest snapshot of each collection and derives the View.
type state struct {
	orders        []models.Order
	reservations  []models.Reservation
	notifications []models.Notification
}

func (s state) view(stats Stats) View {
	return View{
		Stats:         stats,
		RecentOrders:  head(s.orders, RecentOrdersShown),
		Orders:        nonNil(s.orders),
		Reservations:  nonNil(s.reservations),
		Notifications: head(s.notifications, NotificationsShown),
		UnreadCount:   notifications.UnreadCount(s.notifications),
	}
}

func head[T any](list []T, n int) []T {
	if len(list) > n {
		list = list[:n]
	}
	return append(make([]T, 0, len(list)), list...)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
