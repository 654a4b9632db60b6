package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

const DefaultOllamaHost = "http://localhost:11434"

type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// Ollama talks to a local ollama server over its chat endpoint.
type Ollama struct {
	client *api.Client
	model  string
}

var ErrOllamaModel = errors.New("ollama: model is required")

func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.Model == "" {
		return nil, ErrOllamaModel
	}
	host := cfg.Host
	if host == "" {
		host = DefaultOllamaHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Ollama{
		client: api.NewClient(base, &http.Client{Timeout: timeout}),
		model:  cfg.Model,
	}, nil
}

func (o *Ollama) Complete(ctx context.Context, messages []Message) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: string(m.Role), Content: m.Text})
	}
	stream := false
	req := &api.ChatRequest{Model: o.model, Messages: msgs, Stream: &stream}

	var out []string
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			out = append(out, resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	return out, nil
}
