package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museumai/kiosk/backend/internal/model/chat"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	chatservice "github.com/museumai/kiosk/backend/internal/service/chat"
)

type fakeProvider struct {
	calls    int
	model    string
	messages [][]*schema.Message
	reply    func(call int) (string, error)
}

func (f *fakeProvider) Complete(ctx context.Context, model string, messages []*schema.Message) (string, error) {
	f.calls++
	f.model = model
	f.messages = append(f.messages, messages)
	if f.reply == nil {
		return fmt.Sprintf("reply-%d", f.calls), nil
	}
	return f.reply(f.calls)
}

func newTestSession(provider ChatProvider) (*DialogueSession, *chatservice.MemoryStore) {
	store := chatservice.NewMemoryStore(chatservice.DefaultMaxHistory)
	personas := persona.NewMemoryStore(persona.Seed())
	return NewDialogueSession(personas, store, provider, Options{}), store
}

func TestRespondTwoTurnsBuildsHistory(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	session, store := newTestSession(provider)

	first, err := session.Respond(ctx, "isaac_newton", "What is gravity?")
	require.NoError(t, err)
	assert.Equal(t, "reply-1", first.Text)
	assert.Equal(t, DefaultModel, provider.model)

	turns, err := store.Snapshot(ctx, "isaac_newton")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, "What is gravity?", turns[0].Content)
	assert.Equal(t, chat.RoleAssistant, turns[1].Role)
	assert.Equal(t, "reply-1", turns[1].Content)

	_, err = session.Respond(ctx, "isaac_newton", "And inertia?")
	require.NoError(t, err)

	turns, err = store.Snapshot(ctx, "isaac_newton")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "And inertia?", turns[2].Content)
	assert.Equal(t, "reply-2", turns[3].Content)

	// second request: system + user + assistant + user
	sent := provider.messages[1]
	require.Len(t, sent, 4)
	assert.Equal(t, schema.System, sent[0].Role)
	assert.Equal(t, schema.User, sent[3].Role)
}

func TestRespondElevenCallsKeepsFiveRecentPairs(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	session, store := newTestSession(provider)

	for i := 1; i <= 11; i++ {
		_, err := session.Respond(ctx, "marie_curie", fmt.Sprintf("question-%d", i))
		require.NoError(t, err)
	}

	turns, err := store.Snapshot(ctx, "marie_curie")
	require.NoError(t, err)
	require.Len(t, turns, chatservice.DefaultMaxHistory)
	for i := 0; i < 5; i++ {
		call := 7 + i
		assert.Equal(t, fmt.Sprintf("question-%d", call), turns[2*i].Content)
		assert.Equal(t, fmt.Sprintf("reply-%d", call), turns[2*i+1].Content)
	}

	// the last request carried the system prompt plus a full history window
	last := provider.messages[len(provider.messages)-1]
	assert.Len(t, last, chatservice.DefaultMaxHistory+1)
	systemCount := 0
	for _, msg := range last {
		if msg.Role == schema.System {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Equal(t, schema.System, last[0].Role)
}

func TestRespondUnknownPersonaDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	session, store := newTestSession(provider)

	_, err := session.Respond(ctx, "nikola_tesla", "AC or DC?")
	assert.ErrorIs(t, err, persona.ErrPersonaNotFound)
	assert.Zero(t, provider.calls)

	turns, err := store.Snapshot(ctx, "nikola_tesla")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRespondEmptyInputIsRejected(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	session, store := newTestSession(provider)

	for _, text := range []string{"", "   \n\t"} {
		_, err := session.Respond(ctx, "albert_einstein", text)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err := session.Respond(ctx, "", "hello")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, provider.calls)
	turns, err := store.Snapshot(ctx, "albert_einstein")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRespondUpstreamFailureKeepsUserTurn(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{reply: func(int) (string, error) {
		return "", &UpstreamChatError{StatusCode: 500, Detail: "internal server error"}
	}}
	session, store := newTestSession(provider)

	_, err := session.Respond(ctx, "galileo_galilei", "Does it move?")
	var upstream *UpstreamChatError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 500, upstream.StatusCode)

	turns, err := store.Snapshot(ctx, "galileo_galilei")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, "Does it move?", turns[0].Content)
}

func TestRespondWrapsUntypedProviderErrors(t *testing.T) {
	provider := &fakeProvider{reply: func(int) (string, error) {
		return "", errors.New("connection reset")
	}}
	session, _ := newTestSession(provider)

	_, err := session.Respond(context.Background(), "galileo_galilei", "hello")
	var upstream *UpstreamChatError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.StatusCode)
	assert.Contains(t, upstream.Detail, "connection reset")
}

func TestRespondEmptyReplyKeepsUserTurn(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{reply: func(int) (string, error) { return "  \n ", nil }}
	session, store := newTestSession(provider)

	_, err := session.Respond(ctx, "dmitri_mendeleev", "Next element?")
	assert.ErrorIs(t, err, ErrEmptyUpstreamResponse)

	turns, err := store.Snapshot(ctx, "dmitri_mendeleev")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
}

func TestRespondTrimsReply(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{reply: func(int) (string, error) { return "\n  Eureka.  \n", nil }}
	session, store := newTestSession(provider)

	reply, err := session.Respond(ctx, "isaac_newton", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Eureka.", reply.Text)

	turns, err := store.Snapshot(ctx, "isaac_newton")
	require.NoError(t, err)
	assert.Equal(t, "Eureka.", turns[1].Content)
}

type blockingProvider struct{}

func (blockingProvider) Complete(ctx context.Context, _ string, _ []*schema.Message) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRespondTimesOut(t *testing.T) {
	store := chatservice.NewMemoryStore(10)
	session := NewDialogueSession(persona.NewMemoryStore(persona.Seed()), store, blockingProvider{}, Options{
		Model:   "test-model",
		Timeout: 20 * time.Millisecond,
	})

	_, err := session.Respond(context.Background(), "isaac_newton", "hello?")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
	assert.Equal(t, "test-model", session.Model())
}
