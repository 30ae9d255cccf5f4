package notifications

import (
	"fmt"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
)

// Keys used inside Notification.Data.
const (
	DataOrderID       = "orderId"
	DataReservationID = "reservationId"
	DataCustomerName  = "customerName"
	DataItem          = "item"
	DataDate          = "date"
	DataGuests        = "guests"
	DataEmail         = "email"
	DataLocation      = "location"
)

func OrderMessage(code, customer string) string {
	return fmt.Sprintf("Nouvelle commande #%s de %s", code, customer)
}

func ReservationMessage(code, customer string) string {
	return fmt.Sprintf("Nouvelle réservation #%s de %s", code, customer)
}

func NewsletterMessage(email string) string {
	return fmt.Sprintf("Nouvelle inscription newsletter: %s", email)
}

// OrderData is the payload written when an order is placed.
func OrderData(o models.Order) map[string]any {
	return map[string]any{
		DataOrderID:      o.Code,
		DataCustomerName: o.Name,
		DataItem:         o.Item,
	}
}

func ReservationData(r models.Reservation) map[string]any {
	return map[string]any{
		DataReservationID: r.Code,
		DataCustomerName:  r.Name,
		DataDate:          r.Date,
		DataGuests:        r.Guests,
	}
}

func NewsletterData(email string, loc models.Location) map[string]any {
	return map[string]any{
		DataEmail:    email,
		DataLocation: locationData(loc),
	}
}

func locationData(loc models.Location) map[string]any {
	if loc.Error != "" || !loc.Available() {
		reason := loc.Error
		if reason == "" {
			reason = "Position indisponible"
		}
		return map[string]any{"error": reason}
	}
	out := map[string]any{
		"latitude":  *loc.Latitude,
		"longitude": *loc.Longitude,
	}
	if loc.Accuracy != nil {
		out["accuracy"] = *loc.Accuracy
	}
	return out
}
