package match

import (
	"context"
	"strings"

	"MProject/logger"
	errs "MProject/tools/errs"
)

// Emitter delivers one outbound event to a session, wherever its connection
// lives. Delivery is fire-and-forget: Emit never blocks on the peer and
// never reports whether the session saw the event.
type Emitter interface {
	Emit(ctx context.Context, to string, ev Event)
}

// Engine owns the matchmaking state machine: the waiting queue, the
// symmetric partner/room registries, relaying between partners and the
// teardown protocol. All shared state lives in the Store, so any number of
// engine instances on different nodes cooperate safely.
type Engine struct {
	store Store
	emit  Emitter
}

func NewEngine(store Store, emitter Emitter) *Engine {
	return &Engine{store: store, emit: emitter}
}

// Join pairs sid with the longest-waiting session, or parks sid in the
// queue when none is available. The atomic pop is the only synchronization
// point: two concurrent joiners can never both claim the same queued
// session. A popped stale entry for sid itself is discarded, a room of one
// must never exist.
func (e *Engine) Join(ctx context.Context, sid string) error {
	candidate, err := e.store.DequeueFront(ctx)
	if err != nil {
		return errs.ErrJoinFailed.WithDetail(err.Error())
	}

	if candidate == "" || candidate == sid {
		if err := e.store.Enqueue(ctx, sid); err != nil {
			return errs.ErrJoinFailed.WithDetail(err.Error())
		}
		e.emit.Emit(ctx, sid, EvWaiting())
		logger.Infof("[match] %s is waiting for a match", sid)
		return nil
	}

	room := RoomID(sid, candidate)
	if err := e.store.SetPartners(ctx, sid, candidate); err != nil {
		return errs.ErrJoinFailed.WithDetail(err.Error())
	}
	if err := e.store.SetRoom(ctx, sid, room); err != nil {
		return errs.ErrJoinFailed.WithDetail(err.Error())
	}
	if err := e.store.SetRoom(ctx, candidate, room); err != nil {
		return errs.ErrJoinFailed.WithDetail(err.Error())
	}

	e.emit.Emit(ctx, sid, EvMatched(candidate, room))
	e.emit.Emit(ctx, candidate, EvMatched(sid, room))
	logger.Infof("[match] matched %s with %s in %s", sid, candidate, room)
	return nil
}

// ForwardSignal relays an opaque negotiation payload to the named peer.
// A recipient that is not from's current partner is an authorization
// failure: dropped and logged, never surfaced to the sender.
func (e *Engine) ForwardSignal(ctx context.Context, from string, p *SignalPayload) error {
	if p == nil || p.To == "" || p.Data == nil {
		logger.Warnf("[relay] invalid signal payload from %s", from)
		return nil
	}

	partner, err := e.store.Partner(ctx, from)
	if err != nil {
		return errs.ErrStore.WithDetail(err.Error())
	}
	if partner != p.To {
		logger.Warnf("[relay] %s tried to signal non-partner %s", from, p.To)
		return nil
	}

	e.emit.Emit(ctx, p.To, EvSignal(from, p.Data))
	logger.Debugf("[relay] forwarded signal from %s to %s", from, p.To)
	return nil
}

// ForwardChat relays a text message to from's partner. Whitespace-only
// messages are dropped without effect; sending with no partner is the one
// precondition failure surfaced to the sender.
func (e *Engine) ForwardChat(ctx context.Context, from, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		logger.Warnf("[relay] empty chat message from %s", from)
		return nil
	}

	partner, err := e.store.Partner(ctx, from)
	if err != nil {
		return errs.ErrStore.WithDetail(err.Error())
	}
	if partner == "" {
		logger.Warnf("[relay] %s tried to send message without partner", from)
		return errs.ErrNoPartner
	}

	e.emit.Emit(ctx, partner, EvChat(msg))
	return nil
}

// Leave is the explicit teardown. Idempotent: every lookup miss is a
// benign no-op, so a second leave (or a disconnect racing it) finds
// nothing to clear and still acks.
func (e *Engine) Leave(ctx context.Context, sid string) error {
	partner, err := e.store.ClearPartners(ctx, sid)
	if err != nil {
		return errs.ErrStore.WithDetail(err.Error())
	}
	room, err := e.store.ClearRoom(ctx, sid)
	if err != nil {
		return errs.ErrStore.WithDetail(err.Error())
	}
	if room != "" {
		logger.Infof("[match] %s left room %s", sid, room)
	}

	if partner != "" {
		e.emit.Emit(ctx, partner, EvPartnerLeft(sid))
		if _, err := e.store.ClearRoom(ctx, partner); err != nil {
			logger.Errorf("[match] clear partner room on leave: %v", err)
		}
	}

	e.emit.Emit(ctx, sid, EvLeft())
	return nil
}

// Disconnect is the involuntary teardown, invoked by the gateway when the
// connection drops. The session is gone, so failures are logged and the
// teardown keeps going; nothing is surfaced.
func (e *Engine) Disconnect(ctx context.Context, sid string) {
	if err := e.store.RemoveWaiting(ctx, sid); err != nil {
		logger.Errorf("[match] remove %s from waiting: %v", sid, err)
	}

	partner, err := e.store.ClearPartners(ctx, sid)
	if err != nil {
		logger.Errorf("[match] clear partners on disconnect of %s: %v", sid, err)
	}
	if _, err := e.store.ClearRoom(ctx, sid); err != nil {
		logger.Errorf("[match] clear room on disconnect of %s: %v", sid, err)
	}

	if partner != "" {
		e.emit.Emit(ctx, partner, EvPartnerDisconnected(sid))
		if _, err := e.store.ClearRoom(ctx, partner); err != nil {
			logger.Errorf("[match] clear partner room on disconnect: %v", err)
		}
		logger.Infof("[match] %s disconnected, notified partner %s", sid, partner)
	}
}

// WaitingLen exposes the queue depth for the stats endpoint.
func (e *Engine) WaitingLen(ctx context.Context) (int64, error) {
	return e.store.WaitingLen(ctx)
}
