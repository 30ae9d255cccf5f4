package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/afrifood/afrifood-backend/pkg/logger"
)

const collectionAttribute = "collection"

// PubSubBus carries change signals over a Google Pub/Sub topic. Each running
// instance needs its own subscription so every process sees every signal.
type PubSubBus struct {
	publisher  *pubsub.Publisher
	subscriber *pubsub.Subscriber
	local      *LocalBus
	logg       *logger.Logger
	cancel     context.CancelFunc
	done       chan struct{}
	once       sync.Once
}

func NewPubSubBus(ctx context.Context, publisher *pubsub.Publisher, subscriber *pubsub.Subscriber, logg *logger.Logger) (*PubSubBus, error) {
	if publisher == nil || subscriber == nil {
		return nil, errors.New("pubsub publisher and subscriber required")
	}

	recvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b := &PubSubBus{
		publisher:  publisher,
		subscriber: subscriber,
		local:      NewLocalBus(),
		logg:       logg,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go b.run(recvCtx)
	return b, nil
}

func (b *PubSubBus) run(ctx context.Context) {
	defer close(b.done)
	err := b.subscriber.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		if collection := msg.Attributes[collectionAttribute]; collection != "" {
			b.local.Notify(collection)
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) && b.logg != nil {
		b.logg.Error(ctx, "pubsub change bus receive stopped", err)
	}
}

func (b *PubSubBus) Publish(ctx context.Context, collection string) error {
	result := b.publisher.Publish(ctx, &pubsub.Message{
		Data:       []byte(collection),
		Attributes: map[string]string{collectionAttribute: collection},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish change signal: %w", err)
	}
	return nil
}

func (b *PubSubBus) Listen(collection string) (<-chan struct{}, func()) {
	return b.local.Listen(collection)
}

// Close stops receiving, flushes pending publishes and waits for the receive loop.
func (b *PubSubBus) Close() error {
	b.once.Do(func() {
		b.cancel()
		<-b.done
		b.publisher.Stop()
	})
	return nil
}
