package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Order is a customer food order. ID is the storage identity; Code is the
// short display id shown to the customer and the kitchen.
type Order struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"storageId"`
	Code      string             `gorm:"column:code;not null;index" json:"id"`
	Name      string             `gorm:"column:name;not null" json:"name"`
	Phone     string             `gorm:"column:phone;not null" json:"phone"`
	Address   string             `gorm:"column:address;not null" json:"address"`
	Item      string             `gorm:"column:item;not null" json:"item"`
	Quantity  int                `gorm:"column:quantity;not null" json:"quantity"`
	Notes     string             `gorm:"column:notes" json:"notes,omitempty"`
	UnitPrice int64              `gorm:"column:unit_price;not null" json:"unitPrice"`
	Total     int64              `gorm:"column:total;not null" json:"total"`
	Status    enums.RecordStatus `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string { return CollectionOrders }

func (o Order) RecordID() uuid.UUID { return o.ID }

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}
