package docstore

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is one record entering, moving within or leaving a subscription's result.
type Change[T Record] struct {
	Type   ChangeType
	Record T
}

// Snapshot is the full query result at one instant plus what changed since
// the previous snapshot. The first snapshot reports every record as added.
type Snapshot[T Record] struct {
	Records []T
	Changes []Change[T]
	Initial bool
}

// Unsubscribe stops a subscription and waits until no further callbacks can
// run. It is idempotent but must not be called from inside the callback.
type Unsubscribe func()

// Subscribe delivers the current result of q to onChange, then a fresh
// snapshot after every write that alters it. The baseline load runs before
// Subscribe returns so a broken store surfaces as an error here; later
// re-query failures are logged and skipped. Callbacks run sequentially on a
// goroutine owned by the subscription, which ends on Unsubscribe or when ctx
// is done.
func (c *Collection[T]) Subscribe(ctx context.Context, q Query, onChange func(Snapshot[T])) (Unsubscribe, error) {
	if onChange == nil {
		return nil, errors.New("subscription callback required")
	}

	// Register before the baseline query so writes racing it still signal.
	signals, release := c.bus.Listen(c.name)
	baseline, err := c.load(ctx, q)
	if err != nil {
		release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.metrics.SubscriptionOpened(c.name)

	go func() {
		defer close(done)
		defer c.metrics.SubscriptionClosed(c.name)
		defer release()

		c.deliver(onChange, Snapshot[T]{Records: baseline, Changes: diff(nil, baseline), Initial: true})

		prev := baseline
		for {
			select {
			case <-subCtx.Done():
				return
			case <-signals:
			}

			next, err := c.load(subCtx, q)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				if c.logg != nil {
					c.logg.Error(c.logg.WithCollection(subCtx, c.name), "snapshot re-query failed", err)
				}
				continue
			}
			changes := diff(prev, next)
			if len(changes) == 0 {
				if c.logg != nil {
					c.logg.Debug(c.logg.WithCollection(subCtx, c.name), "change signal left result unchanged")
				}
				continue
			}
			prev = next
			c.deliver(onChange, Snapshot[T]{Records: next, Changes: changes})
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (c *Collection[T]) deliver(onChange func(Snapshot[T]), snap Snapshot[T]) {
	onChange(snap)
	c.metrics.SnapshotDelivered(c.name)
}

// diff compares two results by storage id. Added and modified records keep
// the order of next; removed records follow in the order of prev.
func diff[T Record](prev, next []T) []Change[T] {
	before := make(map[uuid.UUID]T, len(prev))
	for _, rec := range prev {
		before[rec.RecordID()] = rec
	}

	changes := []Change[T]{}
	seen := make(map[uuid.UUID]struct{}, len(next))
	for _, rec := range next {
		id := rec.RecordID()
		seen[id] = struct{}{}
		old, ok := before[id]
		switch {
		case !ok:
			changes = append(changes, Change[T]{Type: ChangeAdded, Record: rec})
		case !reflect.DeepEqual(old, rec):
			changes = append(changes, Change[T]{Type: ChangeModified, Record: rec})
		}
	}
	for _, rec := range prev {
		if _, ok := seen[rec.RecordID()]; !ok {
			changes = append(changes, Change[T]{Type: ChangeRemoved, Record: rec})
		}
	}
	return changes
}
