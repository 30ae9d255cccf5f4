package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/enums"
)

const waitFor = 2 * time.Second

func collect(t *testing.T, coll *Collection[models.Order], q Query) (<-chan Snapshot[models.Order], Unsubscribe) {
	t.Helper()
	out := make(chan Snapshot[models.Order], 16)
	unsub, err := coll.Subscribe(context.Background(), q, func(s Snapshot[models.Order]) { out <- s })
	require.NoError(t, err)
	t.Cleanup(unsub)
	return out, unsub
}

func next(t *testing.T, ch <-chan Snapshot[models.Order]) Snapshot[models.Order] {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(waitFor):
		t.Fatal("no snapshot delivered")
		return Snapshot[models.Order]{}
	}
}

func TestSubscribeDeliversBaselineThenChanges(t *testing.T) {
	bus := NewLocalBus()
	coll, _ := newOrders(t, bus)
	ctx := context.Background()

	existing, err := coll.Create(ctx, sampleOrder("OLD", time.Time{}))
	require.NoError(t, err)

	snaps, _ := collect(t, coll, Query{})

	first := next(t, snaps)
	require.True(t, first.Initial)
	require.Len(t, first.Records, 1)
	require.Len(t, first.Changes, 1)
	require.Equal(t, ChangeAdded, first.Changes[0].Type)

	id, err := coll.Create(ctx, sampleOrder("NEW", time.Time{}))
	require.NoError(t, err)
	added := next(t, snaps)
	require.False(t, added.Initial)
	require.Len(t, added.Records, 2)
	require.Equal(t, []Change[models.Order]{{Type: ChangeAdded, Record: findByID(added.Records, id)}}, added.Changes)

	require.NoError(t, coll.Update(ctx, existing, map[string]any{"status": enums.RecordStatusConfirmed}))
	modified := next(t, snaps)
	require.Len(t, modified.Changes, 1)
	require.Equal(t, ChangeModified, modified.Changes[0].Type)
	require.Equal(t, enums.RecordStatusConfirmed, modified.Changes[0].Record.Status)

	require.NoError(t, coll.Delete(ctx, id))
	removed := next(t, snaps)
	require.Len(t, removed.Records, 1)
	require.Len(t, removed.Changes, 1)
	require.Equal(t, ChangeRemoved, removed.Changes[0].Type)
	require.Equal(t, id, removed.Changes[0].Record.ID)
}

func TestSubscribeWindowSkipsUnseenWrites(t *testing.T) {
	coll, _ := newOrders(t, NewLocalBus())
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := coll.Create(ctx, sampleOrder("NEWEST", base))
	require.NoError(t, err)

	snaps, _ := collect(t, coll, Query{Limit: 1})
	next(t, snaps)

	// An older record never enters the window, so nothing is delivered.
	_, err = coll.Create(ctx, sampleOrder("OLDER", base.Add(-time.Hour)))
	require.NoError(t, err)
	select {
	case s := <-snaps:
		t.Fatalf("unexpected snapshot %+v", s)
	case <-time.After(100 * time.Millisecond):
	}

	_, err = coll.Create(ctx, sampleOrder("LATEST", base.Add(time.Hour)))
	require.NoError(t, err)
	snap := next(t, snaps)
	require.Equal(t, []string{"LATEST"}, codes(snap.Records))
	require.Len(t, snap.Changes, 2)
	require.Equal(t, ChangeAdded, snap.Changes[0].Type)
	require.Equal(t, ChangeRemoved, snap.Changes[1].Type)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewLocalBus()
	coll, _ := newOrders(t, bus)
	ctx := context.Background()

	snaps, unsub := collect(t, coll, Query{})
	next(t, snaps)
	require.Equal(t, 1, bus.listenerCount(models.CollectionOrders))

	unsub()
	unsub()
	require.Equal(t, 0, bus.listenerCount(models.CollectionOrders))

	_, err := coll.Create(ctx, sampleOrder("AFTER", time.Time{}))
	require.NoError(t, err)
	select {
	case s := <-snaps:
		t.Fatalf("snapshot after unsubscribe: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	bus := NewLocalBus()
	coll, _ := newOrders(t, bus)
	ctx, cancel := context.WithCancel(context.Background())

	unsub, err := coll.Subscribe(ctx, Query{}, func(Snapshot[models.Order]) {})
	require.NoError(t, err)
	cancel()
	unsub()
	require.Equal(t, 0, bus.listenerCount(models.CollectionOrders))
}

func TestSubscribeRequiresCallback(t *testing.T) {
	coll, _ := newOrders(t, nil)
	_, err := coll.Subscribe(context.Background(), Query{}, nil)
	require.Error(t, err)
}

func TestDiff(t *testing.T) {
	a := models.Order{ID: uuid.New(), Code: "A", Status: enums.RecordStatusPending}
	b := models.Order{ID: uuid.New(), Code: "B", Status: enums.RecordStatusPending}
	bReady := b
	bReady.Status = enums.RecordStatusReady
	c := models.Order{ID: uuid.New(), Code: "C"}

	changes := diff([]models.Order{a, b}, []models.Order{c, bReady})
	require.Equal(t, []Change[models.Order]{
		{Type: ChangeAdded, Record: c},
		{Type: ChangeModified, Record: bReady},
		{Type: ChangeRemoved, Record: a},
	}, changes)

	require.Empty(t, diff([]models.Order{a}, []models.Order{a}))
}

func findByID(orders []models.Order, id uuid.UUID) models.Order {
	for _, o := range orders {
		if o.ID == id {
			return o
		}
	}
	return models.Order{}
}
