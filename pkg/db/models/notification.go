package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Notification is an admin bell entry. Data holds weak references such as
// orderId or reservationId (display ids), never a foreign key.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	Message   string                 `gorm:"column:message;not null" json:"message"`
	Data      datatypes.JSONMap      `gorm:"column:data" json:"data,omitempty"`
	Read      bool                   `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Notification) TableName() string { return CollectionNotifications }

func (n Notification) RecordID() uuid.UUID { return n.ID }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}
