package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider defines the completion interface used by the enrichment pipeline.
type Provider interface {
	// Complete sends one prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenAIClient implements Provider using OpenAI Chat Completions API.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string // optional
	MaxTokens int    // default per-call cap when the caller passes 0
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &OpenAIClient{client: c, model: model, maxTokens: maxTokens}
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	if maxTokens <= 0 {
		maxTokens = o.maxTokens
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
