package bus

import (
	"context"
	"encoding/json"
	"sync"

	"MProject/logger"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Events channel. One shared channel for every node; receivers filter by
// session ownership.
const redisChannel = "match_events"

// RedisBus fans deliveries out over Redis Pub/Sub, the same instance that
// backs the match store.
type RedisBus struct {
	rdb *redis.Client

	mu       sync.Mutex
	pubsub   *redis.PubSub
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb, stopCh: make(chan struct{})}
}

func (b *RedisBus) Publish(ctx context.Context, d Delivery) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshal delivery")
	}
	if err := b.rdb.Publish(ctx, redisChannel, raw).Err(); err != nil {
		return errors.Wrap(err, "publish delivery")
	}
	return nil
}

func (b *RedisBus) Subscribe(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return errors.New("already subscribed")
	}

	ps := b.rdb.Subscribe(context.Background(), redisChannel)
	// force the SUBSCRIBE round trip so a broken connection fails here
	if _, err := ps.Receive(context.Background()); err != nil {
		_ = ps.Close()
		return errors.Wrap(err, "subscribe "+redisChannel)
	}
	b.pubsub = ps

	go func() {
		ch := ps.Channel()
		for {
			select {
			case <-b.stopCh:
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var d Delivery
				if err := json.Unmarshal([]byte(m.Payload), &d); err != nil {
					logger.Warnf("[bus] bad delivery payload: %v", err)
					continue
				}
				h(d)
			}
		}
	}()
	return nil
}

func (b *RedisBus) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.pubsub != nil {
			err = b.pubsub.Close()
		}
	})
	return err
}
