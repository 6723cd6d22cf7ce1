package bus

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"MProject/logger"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

const natsSubject = "match.events"

// NatsConfig mirrors the usual connect knobs; zero values get sane
// defaults.
type NatsConfig struct {
	Servers       []string
	Name          string // connection name, usually the gateway id
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// NatsBus is the broker-backed alternative to RedisBus for deployments
// that already run NATS. Plain core NATS, no JetStream: deliveries are
// best-effort by design.
type NatsBus struct {
	nc *nats.Conn

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewNatsBus(cfg NatsConfig) (*NatsBus, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &NatsBus{nc: nc}, nil
}

func (b *NatsBus) Publish(_ context.Context, d Delivery) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshal delivery")
	}
	if err := b.nc.Publish(natsSubject, raw); err != nil {
		return errors.Wrap(err, "publish delivery")
	}
	return nil
}

func (b *NatsBus) Subscribe(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return errors.New("already subscribed")
	}
	// no queue group: every node must see every delivery to find the owner
	sub, err := b.nc.Subscribe(natsSubject, func(m *nats.Msg) {
		var d Delivery
		if err := json.Unmarshal(m.Data, &d); err != nil {
			logger.Warnf("[bus] bad delivery payload: %v", err)
			return
		}
		h(d)
	})
	if err != nil {
		return errors.Wrap(err, "subscribe "+natsSubject)
	}
	b.sub = sub
	return nil
}

func (b *NatsBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		_ = b.sub.Drain()
		b.sub = nil
	}
	if b.nc != nil {
		return b.nc.Drain()
	}
	return nil
}
