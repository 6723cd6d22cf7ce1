package match

import (
	"context"
	"strconv"
	"sync"
	"testing"
)

func TestMemStoreQueueFIFO(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for _, sid := range []string{"A", "B", "C"} {
		if err := s.Enqueue(ctx, sid); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []string{"A", "B", "C"} {
		got, err := s.DequeueFront(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("dequeued %q, want %q", got, want)
		}
	}
	if got, _ := s.DequeueFront(ctx); got != "" {
		t.Errorf("empty queue returned %q", got)
	}
}

func TestMemStoreEnqueueDedup(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_ = s.Enqueue(ctx, "A")
	_ = s.Enqueue(ctx, "B")
	_ = s.Enqueue(ctx, "A") // moves A to the tail, no duplicate

	if n, _ := s.WaitingLen(ctx); n != 2 {
		t.Fatalf("queue len %d, want 2", n)
	}
	first, _ := s.DequeueFront(ctx)
	second, _ := s.DequeueFront(ctx)
	if first != "B" || second != "A" {
		t.Errorf("got order %q,%q; want B,A", first, second)
	}
}

func TestMemStoreRemoveWaitingIdempotent(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_ = s.Enqueue(ctx, "A")
	if err := s.RemoveWaiting(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	// absent removal is a no-op, not an error
	if err := s.RemoveWaiting(ctx, "A"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if n, _ := s.WaitingLen(ctx); n != 0 {
		t.Errorf("queue len %d, want 0", n)
	}
}

func TestMemStoreClearPartnersBothSides(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_ = s.SetPartners(ctx, "A", "B")
	former, err := s.ClearPartners(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}
	if former != "B" {
		t.Errorf("former partner %q, want B", former)
	}
	if p, _ := s.Partner(ctx, "B"); p != "" {
		t.Errorf("partner(B) survived the clear: %q", p)
	}
	// already cleared: "" and no error
	if former, err = s.ClearPartners(ctx, "A"); err != nil || former != "" {
		t.Errorf("repeat clear got (%q, %v)", former, err)
	}
}

// Each queued session must be claimed by exactly one concurrent dequeuer.
func TestMemStoreDequeueExclusive(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	const n = 64
	for i := 0; i < n; i++ {
		_ = s.Enqueue(ctx, "s-"+strconv.Itoa(i))
	}

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sid, err := s.DequeueFront(ctx)
			if err != nil || sid == "" {
				t.Errorf("dequeue: %q %v", sid, err)
				return
			}
			mu.Lock()
			seen[sid]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("claimed %d distinct sessions, want %d", len(seen), n)
	}
	for sid, c := range seen {
		if c != 1 {
			t.Errorf("%s claimed %d times", sid, c)
		}
	}
}
