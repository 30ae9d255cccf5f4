package orders

import (
	"time"

	"github.com/afrifood/afrifood-backend/pkg/contactlinks"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/enums"
)

const (
	// DefaultAddress is used when a customer leaves the delivery address blank.
	DefaultAddress  = "Cotonou, Akpakpa"
	DefaultQuantity = 1
	DefaultGuests   = 2
	MinGuests       = 1
	MaxGuests       = 8
)

// OrderInput is a customer order as submitted. Quantity zero means one.
type OrderInput struct {
	Name     string
	Phone    string
	Address  string
	Item     string
	Quantity int
	Notes    string
}

// ReservationInput is a table booking as submitted. A nil Guests means two.
type ReservationInput struct {
	Name   string
	Email  string
	Phone  string
	Date   string
	Time   string
	Guests *int
	Notes  string
}

// OrderReceipt is what the customer gets back after ordering.
type OrderReceipt struct {
	Order models.Order       `json:"order"`
	Links contactlinks.Links `json:"links"`
}

// OrderTracking is the public view of an order looked up by its display id.
// Contact details stay private.
type OrderTracking struct {
	Code      string             `json:"id"`
	Item      string             `json:"item"`
	Quantity  int                `json:"quantity"`
	Total     int64              `json:"total"`
	Status    enums.RecordStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Links     contactlinks.Links `json:"links"`
}

// ListFilters narrows the admin lists.
type ListFilters struct {
	Status *enums.RecordStatus
	Limit  int
	Cursor string
}

type OrderPage struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

type ReservationPage struct {
	Items  []models.Reservation `json:"items"`
	Cursor string               `json:"cursor"`
}
