package summary

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/consts"
)

// Chain runs the note through an eino template -> chat model chain. It backs
// the DeepSeek and OpenAI-compatible providers.
type Chain struct {
	name     string
	runnable compose.Runnable[map[string]any, *schema.Message]
	logger   zerolog.Logger
}

// NewChain compiles the chain around any eino chat model.
func NewChain(ctx context.Context, name string, cm model.BaseChatModel, logger zerolog.Logger) (*Chain, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{user}"),
	)

	runnable, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(cm).
		Compile(ctx, compose.WithGraphName("strategy_note"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s chain: %w", name, err)
	}
	return &Chain{name: name, runnable: runnable, logger: logger}, nil
}

func NewDeepSeek(ctx context.Context, apiKey, modelName string, maxTokens int, logger zerolog.Logger) (*Chain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY: %w", consts.ErrMissingCredential)
	}
	cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
	}
	return NewChain(ctx, ProviderDeepSeek+"/"+modelName, cm, logger)
}

func NewOpenAI(ctx context.Context, apiKey, baseURL, modelName string, maxTokens int, logger zerolog.Logger) (*Chain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", consts.ErrMissingCredential)
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}
	return NewChain(ctx, ProviderOpenAI+"/"+modelName, cm, logger)
}

func (c *Chain) Name() string { return c.name }

func (c *Chain) Generate(ctx context.Context, system, user string) (string, error) {
	msg, err := c.runnable.Invoke(ctx, map[string]any{
		"system": system,
		"user":   user,
	}, compose.WithCallbacks(logCallback(c.logger)))
	if err != nil {
		return "", fmt.Errorf("%s chain failed: %w", c.name, err)
	}
	if msg == nil || msg.Content == "" {
		return "", fmt.Errorf("empty response from %s", c.name)
	}
	return msg.Content, nil
}

// logCallback traces each chain node, with token usage for the chat model.
func logCallback(logger zerolog.Logger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			logger.Debug().Str("node", info.Name).Str("component", string(info.Component)).Msg("chain node start")
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			ev := logger.Debug().Str("node", info.Name).Str("component", string(info.Component))
			if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
				ev = ev.Int("prompt_tokens", out.TokenUsage.PromptTokens).
					Int("completion_tokens", out.TokenUsage.CompletionTokens)
			}
			ev.Msg("chain node end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.Warn().Str("node", info.Name).Err(err).Msg("chain node failed")
			return ctx
		}).
		Build()
}
