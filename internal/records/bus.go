package records

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/afrifood/afrifood-backend/pkg/config"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/pubsub"
)

// BusHandle owns the change bus a process opened and whatever client backs it.
type BusHandle struct {
	Bus docstore.Bus
	// PubSub is set only for the pubsub bus, so readiness checks can ping it.
	PubSub  *pubsub.Client
	closers []func() error
}

// OpenBus builds the change bus selected by cfg.Store.Bus. API and worker
// processes must agree on the bus or the watcher never sees API writes.
func OpenBus(ctx context.Context, cfg *config.Config, redisClient docstore.RedisPubSub, logg *logger.Logger) (*BusHandle, error) {
	switch cfg.Store.Bus {
	case config.StoreBusLocal:
		return &BusHandle{Bus: docstore.NewLocalBus()}, nil

	case config.StoreBusRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis client required for %s bus", config.StoreBusRedis)
		}
		bus, err := docstore.NewRedisBus(ctx, redisClient, cfg.Store.RedisChannelPrefix, logg)
		if err != nil {
			return nil, err
		}
		return &BusHandle{Bus: bus, closers: []func() error{bus.Close}}, nil

	case config.StoreBusPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, err
		}
		bus, err := docstore.NewPubSubBus(ctx, client.ChangesPublisher(), client.ChangesSubscriber(), logg)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &BusHandle{Bus: bus, PubSub: client, closers: []func() error{bus.Close, client.Close}}, nil

	default:
		return nil, fmt.Errorf("unsupported store bus %q", cfg.Store.Bus)
	}
}

// Close stops the bus and then its backing client.
func (h *BusHandle) Close() error {
	if h == nil {
		return nil
	}
	var errs error
	for _, fn := range h.closers {
		errs = multierr.Append(errs, fn())
	}
	h.closers = nil
	return errs
}
