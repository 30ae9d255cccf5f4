package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Location is either a coordinate fix or the reason none could be captured.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Available reports whether the location carries coordinates.
func (l Location) Available() bool {
	return l.Error == "" && l.Latitude != nil && l.Longitude != nil
}

// NewsletterSubscriber is one newsletter sign-up. Email is not unique; signing
// up twice yields two rows.
type NewsletterSubscriber struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Email         string                 `gorm:"column:email;not null;index"`
	Latitude      *float64               `gorm:"column:latitude"`
	Longitude     *float64               `gorm:"column:longitude"`
	Accuracy      *float64               `gorm:"column:accuracy"`
	LocationError *string                `gorm:"column:location_error"`
	Status        enums.SubscriberStatus `gorm:"column:status;type:text;not null"`
	SubscribedAt  time.Time              `gorm:"column:subscribed_at;autoCreateTime"`
}

func (NewsletterSubscriber) TableName() string { return CollectionNewsletter }

func (s NewsletterSubscriber) RecordID() uuid.UUID { return s.ID }

func (s *NewsletterSubscriber) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Location folds the location columns back into one value.
func (s NewsletterSubscriber) Location() Location {
	if s.LocationError != nil {
		return Location{Error: *s.LocationError}
	}
	return Location{Latitude: s.Latitude, Longitude: s.Longitude, Accuracy: s.Accuracy}
}

// SetLocation spreads loc over the location columns.
func (s *NewsletterSubscriber) SetLocation(loc Location) {
	if loc.Error != "" {
		msg := loc.Error
		s.LocationError = &msg
		s.Latitude, s.Longitude, s.Accuracy = nil, nil, nil
		return
	}
	s.LocationError = nil
	s.Latitude, s.Longitude, s.Accuracy = loc.Latitude, loc.Longitude, loc.Accuracy
}

func (s NewsletterSubscriber) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        uuid.UUID              `json:"id"`
		Email     string                 `json:"email"`
		Location  Location               `json:"location"`
		Status    enums.SubscriberStatus `json:"status"`
		Timestamp time.Time              `json:"timestamp"`
	}{
		ID:        s.ID,
		Email:     s.Email,
		Location:  s.Location(),
		Status:    s.Status,
		Timestamp: s.SubscribedAt,
	})
}
