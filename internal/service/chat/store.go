package chat

import (
	"context"
	"errors"

	"github.com/museumai/kiosk/backend/internal/model/chat"
)

// DefaultMaxHistory is the number of turns kept per persona.
const DefaultMaxHistory = 10

var (
	ErrPersonaRequired  = errors.New("persona id is required")
	ErrStoreUnavailable = errors.New("conversation store unavailable")
)

// Store is the per-persona conversation log. Appends enforce the history
// cap by evicting the oldest turns first.
type Store interface {
	AppendUser(ctx context.Context, personaID, text string) error
	AppendAssistant(ctx context.Context, personaID, text string) error
	Snapshot(ctx context.Context, personaID string) ([]chat.Turn, error)
	Reset(ctx context.Context, personaID string) error
}

func normalizeCapacity(capacity int) int {
	if capacity <= 0 {
		return DefaultMaxHistory
	}
	return capacity
}
