// Package records opens one docstore collection per record kind on a shared
// connection and change bus.
package records

import (
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
)

type Stores struct {
	Orders        *docstore.Collection[models.Order]
	Reservations  *docstore.Collection[models.Reservation]
	Notifications *docstore.Collection[models.Notification]
	Newsletter    *docstore.Collection[models.NewsletterSubscriber]
}

func New(conn *gorm.DB, opts docstore.Options) (*Stores, error) {
	if opts.Bus == nil {
		// All collections must share one bus or subscribers miss writes.
		opts.Bus = docstore.NewLocalBus()
	}

	orders, err := docstore.NewCollection[models.Order](models.CollectionOrders, conn, opts)
	if err != nil {
		return nil, err
	}
	reservations, err := docstore.NewCollection[models.Reservation](models.CollectionReservations, conn, opts)
	if err != nil {
		return nil, err
	}
	notifications, err := docstore.NewCollection[models.Notification](models.CollectionNotifications, conn, opts)
	if err != nil {
		return nil, err
	}

	newsletterOpts := opts
	newsletterOpts.DefaultOrder = "subscribed_at DESC"
	newsletter, err := docstore.NewCollection[models.NewsletterSubscriber](models.CollectionNewsletter, conn, newsletterOpts)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Orders:        orders,
		Reservations:  reservations,
		Notifications: notifications,
		Newsletter:    newsletter,
	}, nil
}
