package match

import "context"

// Store is the shared-state contract the engine runs against. Every method
// is one atomic operation against the backing store; the engine never gets
// transactions across calls, only per-call atomicity. All methods are safe
// for concurrent use from any number of gateway nodes.
type Store interface {
	// Enqueue appends sid to the waiting queue tail, removing any stale
	// occurrence first so the queue never holds duplicates.
	Enqueue(ctx context.Context, sid string) error
	// DequeueFront pops the queue head, "" when the queue is empty.
	DequeueFront(ctx context.Context) (string, error)
	// RemoveWaiting deletes every occurrence of sid; absent is a no-op.
	RemoveWaiting(ctx context.Context, sid string) error
	// WaitingLen reports the current queue depth.
	WaitingLen(ctx context.Context) (int64, error)

	// SetPartners records the symmetric pair a<->b.
	SetPartners(ctx context.Context, a, b string) error
	// Partner resolves sid's current partner, "" when unpaired.
	Partner(ctx context.Context, sid string) (string, error)
	// ClearPartners removes both directions of sid's pairing and returns
	// the former partner, "" when sid was unpaired. Idempotent.
	ClearPartners(ctx context.Context, sid string) (string, error)

	SetRoom(ctx context.Context, sid, room string) error
	// Room resolves sid's room id, "" when none.
	Room(ctx context.Context, sid string) (string, error)
	// ClearRoom removes sid's room entry and returns the removed id,
	// "" when there was none. Idempotent.
	ClearRoom(ctx context.Context, sid string) (string, error)
}
