package chat

import (
	"context"
	"sync"

	"github.com/museumai/kiosk/backend/internal/model/chat"
)

// MemoryStore keeps conversation logs in process memory. Logs are created
// lazily on the first turn and live for the life of the process.
type MemoryStore struct {
	capacity int

	mu   sync.RWMutex
	logs map[string]*conversationLog
}

type conversationLog struct {
	mu    sync.Mutex
	turns []chat.Turn
}

// NewMemoryStore returns an empty store capped at capacity turns per
// persona. Non-positive capacities fall back to DefaultMaxHistory.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: normalizeCapacity(capacity),
		logs:     make(map[string]*conversationLog),
	}
}

// Capacity returns the per-persona history cap.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}

// AppendUser records a user turn for personaID.
func (s *MemoryStore) AppendUser(ctx context.Context, personaID, text string) error {
	return s.append(personaID, chat.NewTurn(chat.RoleUser, text))
}

// AppendAssistant records an assistant turn for personaID.
func (s *MemoryStore) AppendAssistant(ctx context.Context, personaID, text string) error {
	return s.append(personaID, chat.NewTurn(chat.RoleAssistant, text))
}

// Snapshot returns a copy of the current history for personaID, oldest first.
func (s *MemoryStore) Snapshot(_ context.Context, personaID string) ([]chat.Turn, error) {
	s.mu.RLock()
	log, ok := s.logs[personaID]
	s.mu.RUnlock()
	if !ok {
		return []chat.Turn{}, nil
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	copied := make([]chat.Turn, len(log.turns))
	copy(copied, log.turns)
	return copied, nil
}

// Reset empties the history for personaID. The log itself is kept so an
// append racing with the reset still lands in the live log.
func (s *MemoryStore) Reset(_ context.Context, personaID string) error {
	s.mu.RLock()
	log, ok := s.logs[personaID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	log.mu.Lock()
	clear(log.turns)
	log.turns = log.turns[:0]
	log.mu.Unlock()
	return nil
}

func (s *MemoryStore) append(personaID string, turn chat.Turn) error {
	if personaID == "" {
		return ErrPersonaRequired
	}

	log := s.logFor(personaID)

	log.mu.Lock()
	defer log.mu.Unlock()

	log.turns = append(log.turns, turn)
	if overflow := len(log.turns) - s.capacity; overflow > 0 {
		// Shift in place; the backing array stays at capacity+1.
		kept := copy(log.turns, log.turns[overflow:])
		clear(log.turns[kept:])
		log.turns = log.turns[:kept]
	}
	return nil
}

func (s *MemoryStore) logFor(personaID string) *conversationLog {
	s.mu.RLock()
	log, ok := s.logs[personaID]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.logs[personaID]; ok {
		return log
	}
	log = &conversationLog{turns: make([]chat.Turn, 0, s.capacity+1)}
	s.logs[personaID] = log
	return log
}
