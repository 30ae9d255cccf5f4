package models

import "github.com/google/uuid"

// Collection names double as table names and change-bus topics.
const (
	CollectionOrders        = "orders"
	CollectionReservations  = "reservations"
	CollectionNotifications = "notifications"
	CollectionNewsletter    = "newsletter"
)

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
