package history

import (
	"sync"
	"time"

	"github.com/intakehq/intake/internal/provider"
)

// userLog holds the turns and last-append time for a single user.
type userLog struct {
	messages []provider.Message
	lastSeen time.Time
}

// InMemoryStore is a thread-safe, in-memory implementation of Store.
// Used by tests and by configurations without a database path.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*userLog
	now   func() time.Time
}

// NewInMemoryStore creates a new empty history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[string]*userLog),
		now:   time.Now,
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) getOrCreate(uid string) *userLog {
	ul, ok := s.users[uid]
	if !ok {
		ul = &userLog{}
		s.users[uid] = ul
	}
	return ul
}

// Append adds a turn to the user's history.
func (s *InMemoryStore) Append(uid string, msg provider.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ul := s.getOrCreate(uid)
	ul.messages = append(ul.messages, msg)
	ul.lastSeen = s.now()
	return nil
}

// Recent returns the n most recent turns for a user, oldest-first.
func (s *InMemoryStore) Recent(uid string, n int) ([]provider.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ul, ok := s.users[uid]
	if !ok {
		return nil, nil
	}

	msgs := ul.messages
	if n >= len(msgs) {
		result := make([]provider.Message, len(msgs))
		copy(result, msgs)
		return result, nil
	}

	start := len(msgs) - n
	result := make([]provider.Message, n)
	copy(result, msgs[start:])
	return result, nil
}

// All returns the user's turns oldest-first, capped at MaxFetch.
func (s *InMemoryStore) All(uid string) ([]provider.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ul, ok := s.users[uid]
	if !ok {
		return nil, nil
	}

	msgs := ul.messages
	if len(msgs) > MaxFetch {
		msgs = msgs[:MaxFetch]
	}
	result := make([]provider.Message, len(msgs))
	copy(result, msgs)
	return result, nil
}

// Len returns the number of turns stored for a user.
func (s *InMemoryStore) Len(uid string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ul, ok := s.users[uid]
	if !ok {
		return 0, nil
	}
	return len(ul.messages), nil
}

// Purge removes all history for a user.
func (s *InMemoryStore) Purge(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, uid)
	return nil
}

// PurgeIdle removes all history for users idle since before the cutoff.
func (s *InMemoryStore) PurgeIdle(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int
	for uid, ul := range s.users {
		if ul.lastSeen.Before(cutoff) {
			delete(s.users, uid)
			purged++
		}
	}
	return purged, nil
}
