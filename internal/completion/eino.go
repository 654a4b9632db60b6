package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var ErrNoModel = errors.New("completion: chat model is required")

// ChatModel drives any eino chat model.
type ChatModel struct {
	model model.BaseChatModel
	opts  []model.Option
}

func NewChatModel(m model.BaseChatModel, opts ...model.Option) (*ChatModel, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	return &ChatModel{model: m, opts: opts}, nil
}

func (c *ChatModel) Complete(ctx context.Context, messages []Message) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.model.Generate(ctx, toSchema(messages), c.opts...)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return fragments(resp), nil
}

func toSchema(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(m.Text))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Text, nil))
		default:
			out = append(out, schema.UserMessage(m.Text))
		}
	}
	return out
}

// fragments prefers the text parts of a multi-part reply and falls back to
// the plain content.
func fragments(msg *schema.Message) []string {
	if msg == nil {
		return nil
	}
	var out []string
	for _, part := range msg.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText {
			out = append(out, part.Text)
		}
	}
	if len(out) > 0 {
		return out
	}
	if msg.Content != "" {
		return []string{msg.Content}
	}
	return nil
}
