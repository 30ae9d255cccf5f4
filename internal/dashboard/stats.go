// Package dashboard derives the admin dashboard view from live snapshots of
// orders, reservations and notifications.
package dashboard

import (
	"time"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/enums"
)

// Stats are the headline numbers. Revenue is in FCFA.
type Stats struct {
	TotalOrders   int   `json:"totalOrders"`
	TotalRevenue  int64 `json:"totalRevenue"`
	PendingOrders int   `json:"pendingOrders"`
	TodayOrders   int   `json:"todayOrders"`
}

// ComputeStats recomputes the numbers from a full orders snapshot. An order
// counts for today when its creation date in loc matches now's date in loc.
func ComputeStats(orders []models.Order, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	y, m, d := today.Date()

	stats := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		stats.TotalRevenue += o.Total
		if o.Status == enums.RecordStatusPending {
			stats.PendingOrders++
		}
		oy, om, od := o.CreatedAt.In(loc).Date()
		if oy == y && om == m && od == d {
			stats.TodayOrders++
		}
	}
	return stats
}
