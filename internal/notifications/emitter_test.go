package notifications

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

func TestEmitWritesUnreadNotification(t *testing.T) {
	stores := newStores(t)
	emitter, err := NewEmitter(stores.Notifications, nil)
	require.NoError(t, err)
	ctx := context.Background()

	order := models.Order{Code: "AB12CD34", Name: "Koffi", Item: "Télibo"}
	require.NoError(t, emitter.Emit(ctx, enums.NotificationTypeOrder, OrderMessage(order.Code, order.Name), OrderData(order)))

	list, err := stores.Notifications.List(ctx, docstore.Query{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Nouvelle commande #AB12CD34 de Koffi", list[0].Message)
	require.Equal(t, enums.NotificationTypeOrder, list[0].Type)
	require.False(t, list[0].Read)
	require.Equal(t, "AB12CD34", list[0].Data[DataOrderID])
	require.Equal(t, "Koffi", list[0].Data[DataCustomerName])
	require.Equal(t, "Télibo", list[0].Data[DataItem])
}

func TestEmitRejectsUnknownType(t *testing.T) {
	emitter, err := NewEmitter(newStores(t).Notifications, nil)
	require.NoError(t, err)
	err = emitter.Emit(context.Background(), enums.NotificationType("sms"), "x", nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNotifySwallowsStoreFailure(t *testing.T) {
	stores, conn := newStoresWithConn(t)
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	emitter, err := NewEmitter(stores.Notifications, logg)
	require.NoError(t, err)

	closeDB(t, conn)

	require.NotPanics(t, func() {
		emitter.Notify(context.Background(), enums.NotificationTypeReservation, "x", nil)
	})
	require.Contains(t, buf.String(), "notification write failed")
}

func TestNewEmitterRequiresStore(t *testing.T) {
	_, err := NewEmitter(nil, nil)
	require.Error(t, err)
}

func TestMessages(t *testing.T) {
	require.Equal(t, "Nouvelle réservation #R1 de Ama", ReservationMessage("R1", "Ama"))
	require.Equal(t, "Nouvelle inscription newsletter: a@b.co", NewsletterMessage("a@b.co"))

	lat, lng := 6.37, 2.39
	data := NewsletterData("a@b.co", models.Location{Latitude: &lat, Longitude: &lng})
	require.Equal(t, map[string]any{"latitude": 6.37, "longitude": 2.39}, data[DataLocation])

	denied := NewsletterData("a@b.co", models.Location{Error: "User denied Geolocation"})
	require.Equal(t, map[string]any{"error": "User denied Geolocation"}, denied[DataLocation])
}
