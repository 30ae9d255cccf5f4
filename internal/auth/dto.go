package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest seeds an admin account outside production.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"omitempty,max=80"`
}

// AdminDTO is the admin as exposed over HTTP; it never carries the hash.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func FromModel(a *models.AdminUser) *AdminDTO {
	if a == nil {
		return nil
	}
	return &AdminDTO{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		LastLoginAt: a.LastLoginAt,
	}
}

// LoginResponse carries the bearer token for the dashboard.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *AdminDTO `json:"admin"`
}
