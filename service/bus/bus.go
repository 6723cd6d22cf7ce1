package bus

import (
	"context"

	match "MProject/service/match"
)

// Delivery is one outbound event addressed to a session that may live on
// another gateway node.
type Delivery struct {
	To    string      `json:"to"`
	Event match.Event `json:"event"`
}

// Handler consumes deliveries published by any node, including this one.
// A node delivers only to sessions it owns and drops the rest.
type Handler func(Delivery)

// Bus is the cross-node fan-out channel. Publish is fire-and-forget and
// best-effort, ordered per publisher, unordered across publishers.
type Bus interface {
	Publish(ctx context.Context, d Delivery) error
	Subscribe(h Handler) error
	Close() error
}

// Noop is the single-node bus: nothing to publish to, nothing to hear.
type Noop struct{}

func (Noop) Publish(context.Context, Delivery) error { return nil }
func (Noop) Subscribe(Handler) error                 { return nil }
func (Noop) Close() error                            { return nil }
