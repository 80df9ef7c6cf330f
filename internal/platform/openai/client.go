package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

const DefaultModel = "gpt-3.5-turbo"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Temperature is sent unless DisableTemperature is set; some models reject it.
	Temperature        float32
	DisableTemperature bool
	MaxTokens          int
	Timeout            time.Duration
}

// Client is a single-shot chat completion client. It never retries.
type Client struct {
	log *logger.Logger
	api *goopenai.Client
	cfg Config
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	return &Client{
		log: log.With("client", "OpenAIClient", "model", cfg.Model),
		api: goopenai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// Complete sends one system and one user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: c.cfg.MaxTokens,
	}
	if !c.cfg.DisableTemperature {
		req.Temperature = c.cfg.Temperature
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai chat completion: status=%d type=%s: %w", apiErr.HTTPStatusCode, apiErr.Type, err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	c.log.Debug("Chat completion finished",
		"took_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
	)
	return resp.Choices[0].Message.Content, nil
}
