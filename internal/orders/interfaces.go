package orders

import (
	"context"

	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Notifier receives the "new order" and "new reservation" announcements.
type Notifier interface {
	Notify(ctx context.Context, typ enums.NotificationType, message string, data map[string]any)
}

// PriceBook resolves unit prices by item name.
type PriceBook interface {
	Price(item string) (int64, error)
}
