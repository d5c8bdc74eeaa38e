// Package summary turns the raw briefing into a short strategy note with an
// LLM.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
)

const (
	ProviderGemini   = "gemini"
	ProviderClaude   = "claude"
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderNone     = "none"
)

var defaultModels = map[string]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderClaude:   "claude-sonnet-4-5",
	ProviderDeepSeek: "deepseek-chat",
	ProviderOpenAI:   "gpt-4o-mini",
}

// Generator is one LLM backend.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Summarizer produces the strategy note. It never returns an error: a failed
// call yields the error text in place of the note.
type Summarizer interface {
	Summarize(ctx context.Context, briefing string) string
}

const persona = `You are an elite financial educator and strategist. Your client is a smart investor who wants clarity, not jargon.

I will provide raw data (Macro, Portfolio RSI, Congress Hearings, News).
Your Job: Convert this into a "Daily Strategy Note."

GUIDELINES FOR SIMPLICITY & DEPTH:
1. **Explain the "So What?":** If the 10-Year Yield is up, don't just say it's up. Explain what it means, e.g. rising yields make borrowing expensive, which often hurts growth stocks.
2. **Use Analogies:** If discussing Inflation or Liquidity, use brief analogies (e.g., "The Fed is tightening the tap") to make it stick.
3. **Connect the Dots:** If Congress is holding a crypto hearing AND Bitcoin is dropping, mention the connection.
4. **Plain English:** Avoid "financialese." Use active verbs.
5. **Portfolio Focus:** specifically mention risks to the user's watchlist (%s) if the data warrants it.`

// SystemPrompt returns the persona with the watchlist filled in.
func SystemPrompt(watchlist []string) string {
	list := strings.Join(watchlist, ", ")
	if list == "" {
		list = "the portfolio holdings"
	}
	return fmt.Sprintf(persona, list)
}

// UserPrompt wraps the raw briefing.
func UserPrompt(briefing string) string {
	return "RAW DATA:\n" + briefing
}

// Analyst is the Summarizer backed by a Generator.
type Analyst struct {
	gen       Generator
	watchlist []string
	logger    zerolog.Logger
}

func NewAnalyst(gen Generator, watchlist []string, logger zerolog.Logger) *Analyst {
	return &Analyst{gen: gen, watchlist: watchlist, logger: logger}
}

func (a *Analyst) Summarize(ctx context.Context, briefing string) string {
	if a.gen == nil {
		return ""
	}
	a.logger.Info().Str("provider", a.gen.Name()).Msg("synthesizing analysis")
	note, err := a.gen.Generate(ctx, SystemPrompt(a.watchlist), UserPrompt(briefing))
	if err != nil {
		a.logger.Error().Str("provider", a.gen.Name()).Err(err).Msg("analysis failed")
		return fmt.Sprintf("Error generating analysis: %v", err)
	}
	return strings.TrimSpace(note)
}

// NewGenerator builds the configured backend. Provider "none" returns nil,
// which makes the Analyst produce an empty note.
func NewGenerator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Generator, error) {
	model := cfg.LLMModel
	if model == "" {
		model = defaultModels[cfg.LLMProvider]
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, model, cfg.LLMMaxTokens)
	case ProviderClaude:
		return NewClaude(cfg.AnthropicAPIKey, model, cfg.LLMMaxTokens)
	case ProviderDeepSeek:
		return NewDeepSeek(ctx, cfg.DeepSeekAPIKey, model, cfg.LLMMaxTokens, logger)
	case ProviderOpenAI:
		return NewOpenAI(ctx, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model, cfg.LLMMaxTokens, logger)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

type unavailable struct {
	err error
}

// Unavailable is a Generator that always fails with err. A provider that
// could not be constructed still yields a note saying why.
func Unavailable(err error) Generator {
	return unavailable{err: err}
}

func (u unavailable) Name() string { return "unavailable" }

func (u unavailable) Generate(ctx context.Context, system, user string) (string, error) {
	return "", u.err
}
