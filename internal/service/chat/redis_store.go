package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/museumai/kiosk/backend/internal/model/chat"
)

// RedisStore keeps each persona's log in a Redis list so several kiosk
// processes can share history. RPUSH and LTRIM run in one MULTI/EXEC
// block, so the cap holds across writers.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	capacity int
}

// NewRedisStore wraps an existing client. prefix namespaces the keys.
func NewRedisStore(client redis.UniversalClient, prefix string, capacity int) *RedisStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "kiosk"
	}
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		capacity: normalizeCapacity(capacity),
	}
}

// Ping verifies the connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Capacity returns the per-persona history cap.
func (s *RedisStore) Capacity() int {
	return s.capacity
}

func (s *RedisStore) AppendUser(ctx context.Context, personaID, text string) error {
	return s.append(ctx, personaID, chat.NewTurn(chat.RoleUser, text))
}

func (s *RedisStore) AppendAssistant(ctx context.Context, personaID, text string) error {
	return s.append(ctx, personaID, chat.NewTurn(chat.RoleAssistant, text))
}

// Snapshot reads the whole list; it is already capped.
func (s *RedisStore) Snapshot(ctx context.Context, personaID string) ([]chat.Turn, error) {
	raw, err := s.client.LRange(ctx, s.key(personaID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return decodeTurns(raw)
}

func (s *RedisStore) Reset(ctx context.Context, personaID string) error {
	if err := s.client.Del(ctx, s.key(personaID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) append(ctx context.Context, personaID string, turn chat.Turn) error {
	if personaID == "" {
		return ErrPersonaRequired
	}

	encoded, err := encodeTurn(turn)
	if err != nil {
		return err
	}

	key := s.key(personaID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, encoded)
	pipe.LTrim(ctx, key, int64(-s.capacity), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) key(personaID string) string {
	return s.prefix + ":history:" + personaID
}

func encodeTurn(turn chat.Turn) (string, error) {
	data, err := sonic.Marshal(turn)
	if err != nil {
		return "", fmt.Errorf("encode turn: %w", err)
	}
	return string(data), nil
}

func decodeTurns(raw []string) ([]chat.Turn, error) {
	turns := make([]chat.Turn, 0, len(raw))
	for i, item := range raw {
		var turn chat.Turn
		if err := sonic.UnmarshalString(item, &turn); err != nil {
			return nil, fmt.Errorf("decode turn %d: %w", i, err)
		}
		if !turn.Role.Valid() {
			return nil, fmt.Errorf("decode turn %d: unknown role %q", i, turn.Role)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
