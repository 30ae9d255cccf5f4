package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/afrifood/afrifood-backend/pkg/logger"
)

// RedisPubSub is the slice of pkg/redis.Client the bus needs.
type RedisPubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, pattern string) (<-chan *goredis.Message, func() error, error)
}

// RedisBus shares change signals between API and worker processes over Redis
// pub/sub. Channels are named <prefix>:<collection>.
type RedisBus struct {
	client  RedisPubSub
	prefix  string
	local   *LocalBus
	logg    *logger.Logger
	closeFn func() error
	done    chan struct{}
	once    sync.Once
}

func NewRedisBus(ctx context.Context, client RedisPubSub, prefix string, logg *logger.Logger) (*RedisBus, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return nil, fmt.Errorf("redis channel prefix required")
	}

	msgs, closeFn, err := client.Subscribe(ctx, prefix+":*")
	if err != nil {
		return nil, fmt.Errorf("subscribe change channels: %w", err)
	}

	b := &RedisBus{
		client:  client,
		prefix:  prefix,
		local:   NewLocalBus(),
		logg:    logg,
		closeFn: closeFn,
		done:    make(chan struct{}),
	}
	go b.run(msgs)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "pattern", prefix+":*"), "redis change bus listening")
	}
	return b, nil
}

func (b *RedisBus) run(msgs <-chan *goredis.Message) {
	defer close(b.done)
	for msg := range msgs {
		if msg == nil {
			continue
		}
		collection, ok := strings.CutPrefix(msg.Channel, b.prefix+":")
		if !ok || collection == "" {
			continue
		}
		b.local.Notify(collection)
	}
}

func (b *RedisBus) Publish(ctx context.Context, collection string) error {
	return b.client.Publish(ctx, b.channel(collection), collection)
}

func (b *RedisBus) Listen(collection string) (<-chan struct{}, func()) {
	return b.local.Listen(collection)
}

// Close stops the receive loop and waits for it to drain.
func (b *RedisBus) Close() error {
	var err error
	b.once.Do(func() {
		if b.closeFn != nil {
			err = b.closeFn()
		}
		<-b.done
	})
	return err
}

func (b *RedisBus) channel(collection string) string {
	return b.prefix + ":" + collection
}
