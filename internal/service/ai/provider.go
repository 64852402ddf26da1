package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatProvider sends one chat completion request and returns the
// assistant's text. Implementations do not retry.
type ChatProvider interface {
	Complete(ctx context.Context, model string, messages []*schema.Message) (string, error)
}

// EinoProvider adapts any eino chat model, such as the Ark model built by
// config.ArkConfig.NewChatModel.
type EinoProvider struct {
	chatModel model.BaseChatModel
}

// NewEinoProvider wraps chatModel.
func NewEinoProvider(chatModel model.BaseChatModel) *EinoProvider {
	return &EinoProvider{chatModel: chatModel}
}

// Complete calls Generate, overriding the configured model name when one is given.
func (p *EinoProvider) Complete(ctx context.Context, modelName string, messages []*schema.Message) (string, error) {
	var opts []model.Option
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}

	resp, err := p.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", &UpstreamChatError{Detail: err.Error(), Err: err}
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}
