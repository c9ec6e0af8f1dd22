package verification

import (
	"context"
	"sync"
	"time"
)

// Entry is the pending code for one email address
type Entry struct {
	Code      string
	ExpiresAt time.Time
}

// Store keeps at most one pending code per email. Keys are normalized emails.
// An entry stays until it is replaced or consumed, so a late verify still reports it as expired.
type Store interface {
	// Put replaces any pending code for email
	Put(ctx context.Context, email string, entry Entry) error
	// Consume checks code against the pending entry at time now and removes the entry only on a
	// match. It returns ErrNoPendingCode, ErrCodeExpired or ErrCodeMismatch otherwise.
	Consume(ctx context.Context, email, code string, now time.Time) error
}

// MemoryStore keeps codes in process memory. Codes are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Put(ctx context.Context, email string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, email, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if err := check(entry, ok, code, now); err != nil {
		return err
	}
	delete(s.entries, email)
	return nil
}

func check(entry Entry, ok bool, code string, now time.Time) error {
	switch {
	case !ok:
		return ErrNoPendingCode
	case now.After(entry.ExpiresAt):
		return ErrCodeExpired
	case entry.Code != code:
		return ErrCodeMismatch
	default:
		return nil
	}
}
