package newsletter

import (
	"context"
	"errors"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
)

// Location failure texts stored in location.error.
const (
	LocationUnsupported = "Géolocalisation non supportée"
	LocationTimeout     = "Timeout expired"
	LocationInvalid     = "Position invalide"
	LocationManual      = "Ajouté manuellement"
)

// Coordinates is a position fix as reported by the subscriber's browser.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Locator resolves where a subscriber signed up from. An error means no
// location could be captured; it is recorded, never returned to the caller.
type Locator interface {
	Locate(ctx context.Context, in SubscribeInput) (models.Location, error)
}

// ReportedLocator trusts the fix the browser sent with the sign-up.
type ReportedLocator struct{}

func (ReportedLocator) Locate(ctx context.Context, in SubscribeInput) (models.Location, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, err
	}
	if in.PositionError != "" {
		return models.Location{}, errors.New(in.PositionError)
	}
	if in.Position == nil {
		return models.Location{}, errors.New(LocationUnsupported)
	}
	p := in.Position
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return models.Location{}, errors.New(LocationInvalid)
	}
	lat, lng := p.Latitude, p.Longitude
	return models.Location{Latitude: &lat, Longitude: &lng, Accuracy: p.Accuracy}, nil
}

func locationFailure(err error) models.Location {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.Location{Error: LocationTimeout}
	}
	return models.Location{Error: err.Error()}
}
