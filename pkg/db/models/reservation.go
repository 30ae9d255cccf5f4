package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Reservation is a table booking. Date and Time are kept as the customer typed
// them (YYYY-MM-DD and HH:MM) since they are restaurant-local wall clock values.
type Reservation struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"storageId"`
	Code      string             `gorm:"column:code;not null;index" json:"id"`
	Name      string             `gorm:"column:name;not null" json:"name"`
	Email     string             `gorm:"column:email;not null" json:"email"`
	Phone     string             `gorm:"column:phone;not null" json:"phone"`
	Date      string             `gorm:"column:date;not null" json:"date"`
	Time      string             `gorm:"column:time;not null" json:"time"`
	Guests    int                `gorm:"column:guests;not null" json:"guests"`
	Notes     string             `gorm:"column:notes" json:"notes,omitempty"`
	Status    enums.RecordStatus `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Reservation) TableName() string { return CollectionReservations }

func (r Reservation) RecordID() uuid.UUID { return r.ID }

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
