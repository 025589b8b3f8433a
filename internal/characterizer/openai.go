package characterizer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/yudduy/ira/internal/config"
)

// NewCompleter returns the completer for the configured provider.
func NewCompleter(cfg *config.Config) (Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderMock:
		return MockCompleter{}, nil
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.LLM.Provider)
	}
}

// OpenAICompleter implements Completer with chat completions in JSON object mode.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewOpenAICompleter creates a completer from configuration. The key comes from the
// environment variable named by llm.api_key_env.
func NewOpenAICompleter(cfg *config.Config) (*OpenAICompleter, error) {
	if cfg.LLM.APIKeyEnv == "" {
		return nil, config.ErrMissingAPIKeyVariable
	}

	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.GetTimeout()),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
	}

	return &OpenAICompleter{
		client:      openai.NewClient(opts...),
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
		maxTokens:   int64(cfg.LLM.MaxTokens),
	}, nil
}

// Complete sends one chat completion and returns the first choice's content.
func (o *OpenAICompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(o.temperature),
		MaxTokens:   openai.Int(o.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
