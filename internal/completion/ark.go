package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
)

const (
	DefaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	DefaultArkRegion  = "cn-beijing"
)

type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float32
	MaxTokens   *int
}

var ErrArkCredentials = errors.New("ark: model and either api key or access/secret key pair are required")

func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewArk builds a Completer backed by a Volcengine Ark endpoint.
func NewArk(ctx context.Context, cfg ArkConfig) (*ChatModel, error) {
	if !cfg.Enabled() {
		return nil, ErrArkCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultArkBaseURL
	}
	if cfg.Region == "" {
		cfg.Region = DefaultArkRegion
	}
	m, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("ark chat model: %w", err)
	}
	return NewChatModel(m)
}
