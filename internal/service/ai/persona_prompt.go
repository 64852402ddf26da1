package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/museumai/kiosk/backend/internal/model/chat"
	"github.com/museumai/kiosk/backend/internal/model/persona"
)

// PromptBuilder assembles the outbound message sequence for a persona:
// exactly one system message followed by the stored history.
type PromptBuilder struct {
	template prompt.ChatTemplate
}

// NewPromptBuilder compiles the system + history template.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.MessagesPlaceholder("history", true),
		),
	}
}

// Build renders the prompt. history is expected to be already capped; the
// system message never counts against that cap.
func (b *PromptBuilder) Build(ctx context.Context, p persona.Persona, history []chat.Turn) ([]*schema.Message, error) {
	messages, err := b.template.Format(ctx, map[string]any{
		"system":  p.Prompt,
		"history": toSchemaMessages(history),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt for persona %s: %w", p.ID, err)
	}
	return messages, nil
}

func toSchemaMessages(turns []chat.Turn) []*schema.Message {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
