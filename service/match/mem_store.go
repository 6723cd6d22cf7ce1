package match

import (
	"context"
	"sync"
)

// MemStore is an in-process Store with the same per-call atomicity as the
// Redis adapter. Tests run against it.
type MemStore struct {
	mu       sync.Mutex
	waiting  []string
	partners map[string]string
	rooms    map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		partners: make(map[string]string),
		rooms:    make(map[string]string),
	}
}

func (s *MemStore) Enqueue(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(sid)
	s.waiting = append(s.waiting, sid)
	return nil
}

func (s *MemStore) DequeueFront(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiting) == 0 {
		return "", nil
	}
	head := s.waiting[0]
	s.waiting = s.waiting[1:]
	return head, nil
}

func (s *MemStore) RemoveWaiting(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(sid)
	return nil
}

func (s *MemStore) removeLocked(sid string) {
	out := s.waiting[:0]
	for _, v := range s.waiting {
		if v != sid {
			out = append(out, v)
		}
	}
	s.waiting = out
}

func (s *MemStore) WaitingLen(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.waiting)), nil
}

func (s *MemStore) SetPartners(_ context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners[a] = b
	s.partners[b] = a
	return nil
}

func (s *MemStore) Partner(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partners[sid], nil
}

func (s *MemStore) ClearPartners(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	partner := s.partners[sid]
	if partner != "" {
		delete(s.partners, partner)
	}
	delete(s.partners, sid)
	return partner, nil
}

func (s *MemStore) SetRoom(_ context.Context, sid, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[sid] = room
	return nil
}

func (s *MemStore) Room(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[sid], nil
}

func (s *MemStore) ClearRoom(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.rooms[sid]
	delete(s.rooms, sid)
	return room, nil
}
