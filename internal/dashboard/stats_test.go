package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/enums"
)

func TestComputeStats(t *testing.T) {
	wat := time.FixedZone("WAT", 3600)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, wat)

	orders := []models.Order{
		// 23:30 UTC on June 1st is 00:30 on June 2nd in Cotonou.
		{Total: 2500, Status: enums.RecordStatusPending, CreatedAt: time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)},
		{Total: 7000, Status: enums.RecordStatusReady, CreatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, wat)},
		{Total: 1500, Status: enums.RecordStatusPending, CreatedAt: time.Date(2025, 6, 1, 22, 59, 0, 0, time.UTC)},
		{Total: 500, Status: enums.RecordStatusDelivered, CreatedAt: time.Date(2025, 5, 20, 12, 0, 0, 0, wat)},
	}

	require.Equal(t, Stats{
		TotalOrders:   4,
		TotalRevenue:  11500,
		PendingOrders: 2,
		TodayOrders:   2,
	}, ComputeStats(orders, now, wat))

	// Judged in UTC the late-night order falls on June 1st.
	require.Equal(t, 1, ComputeStats(orders, now, time.UTC).TodayOrders)
}

func TestComputeStatsEmpty(t *testing.T) {
	require.Equal(t, Stats{}, ComputeStats(nil, time.Now(), nil))
}

func TestViewTruncatesLists(t *testing.T) {
	st := state{}
	for i := 0; i < 7; i++ {
		st.orders = append(st.orders, models.Order{Quantity: i})
	}
	for i := 0; i < 10; i++ {
		st.notifications = append(st.notifications, models.Notification{Read: i%2 == 0})
	}

	v := st.view(Stats{})
	require.Len(t, v.RecentOrders, RecentOrdersShown)
	require.Len(t, v.Orders, 7)
	require.Len(t, v.Notifications, NotificationsShown)
	require.Equal(t, 5, v.UnreadCount)
	require.NotNil(t, v.Reservations)
}
