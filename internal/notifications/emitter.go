package notifications

import (
	"context"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

// Notifier is the write side other services depend on.
type Notifier interface {
	Notify(ctx context.Context, typ enums.NotificationType, message string, data map[string]any)
}

// Emitter writes bell notifications.
type Emitter struct {
	store *docstore.Collection[models.Notification]
	logg  *logger.Logger
}

func NewEmitter(store *docstore.Collection[models.Notification], logg *logger.Logger) (*Emitter, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification store required")
	}
	return &Emitter{store: store, logg: logg}, nil
}

// Notify records a notification. Failures are logged and never reach the caller.
func (e *Emitter) Notify(ctx context.Context, typ enums.NotificationType, message string, data map[string]any) {
	if err := e.Emit(ctx, typ, message, data); err != nil && e.logg != nil {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"notification_type": typ.String(),
			"collection":        models.CollectionNotifications,
		})
		e.logg.Error(logCtx, "notification write failed", err)
	}
}

// Emit is Notify with the error returned, for callers that track delivery.
func (e *Emitter) Emit(ctx context.Context, typ enums.NotificationType, message string, data map[string]any) error {
	if !typ.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type")
	}
	n := &models.Notification{
		Type:    typ,
		Message: message,
		Data:    data,
		Read:    false,
	}
	_, err := e.store.Create(ctx, n)
	return err
}
