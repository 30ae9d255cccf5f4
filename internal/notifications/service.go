package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

// DefaultWindow is how many notifications the bell shows.
const DefaultWindow = 10

// Service defines the admin bell: list, read tracking and live updates.
type Service interface {
	ListRecent(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Subscribe(ctx context.Context, limit int, fn func([]models.Notification)) (docstore.Unsubscribe, error)
}

type service struct {
	store *docstore.Collection[models.Notification]
}

func NewService(store *docstore.Collection[models.Notification]) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification store required")
	}
	return &service{store: store}, nil
}

func window(limit int) docstore.Query {
	if limit <= 0 {
		limit = DefaultWindow
	}
	return docstore.Query{OrderBy: "created_at DESC", Limit: limit}
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]models.Notification, error) {
	return s.store.List(ctx, window(limit))
}

// MarkRead flips read to true. Marking an already read notification succeeds.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	return s.store.Update(ctx, id, map[string]any{"read": true})
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.store.UpdateWhere(ctx, map[string]any{"read": true}, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("read = ?", false)
	})
}

func (s *service) Subscribe(ctx context.Context, limit int, fn func([]models.Notification)) (docstore.Unsubscribe, error) {
	if fn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription callback required")
	}
	return s.store.Subscribe(ctx, window(limit), func(snap docstore.Snapshot[models.Notification]) {
		fn(snap.Records)
	})
}

// UnreadCount counts unread entries within the fetched window only.
func UnreadCount(list []models.Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
