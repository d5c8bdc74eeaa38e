package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds process settings and provider credentials. It is read once at
// startup; a missing credential only disables the adapters that need it.
type Config struct {
	Debug     bool   `envconfig:"CORTEXBRIEF_DEBUG" default:"false"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=console json"`

	SourcesFile string `envconfig:"SOURCES_FILE"`

	CacheEnabled bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"15m" validate:"gt=0"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s" validate:"gt=0"`
	ScanTimeout  time.Duration `envconfig:"SCAN_TIMEOUT" default:"90s" validate:"gt=0"`
	ScanWorkers  int           `envconfig:"SCAN_WORKERS" default:"4" validate:"min=1,max=32"`

	// Market/legislative data API keys
	FredAPIKey     string `envconfig:"FRED_API_KEY"`
	FinnhubAPIKey  string `envconfig:"FINNHUB_KEY"`
	CongressAPIKey string `envconfig:"CONGRESS_KEY"`

	// Longport API Configuration
	LongportAppKey      string `envconfig:"LONGPORT_APP_KEY"`
	LongportAppSecret   string `envconfig:"LONGPORT_APP_SECRET"`
	LongportAccessToken string `envconfig:"LONGPORT_ACCESS_TOKEN"`

	// Summarizer
	LLMProvider     string `envconfig:"LLM_PROVIDER" default:"gemini" validate:"oneof=gemini claude deepseek openai none"`
	LLMModel        string `envconfig:"LLM_MODEL"`
	LLMMaxTokens    int    `envconfig:"LLM_MAX_TOKENS" default:"4096" validate:"min=256"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	DeepSeekAPIKey  string `envconfig:"DEEPSEEK_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" validate:"url"`

	// Eino Debug configuration
	EinoDebugEnabled bool `envconfig:"EINO_DEBUG_ENABLED" default:"false"`

	// Delivery
	NotifyChannels []string `envconfig:"NOTIFY_CHANNELS" default:"stdout" validate:"min=1,dive,oneof=stdout webhook email"`
	WebhookURL     string   `envconfig:"NOTIFY_WEBHOOK_URL" validate:"omitempty,url"`
	SMTPHost       string   `envconfig:"SMTP_HOST"`
	SMTPPort       int      `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string   `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string   `envconfig:"SMTP_PASSWORD"`
	SMTPFrom       string   `envconfig:"SMTP_FROM" validate:"omitempty,email"`
	SMTPTo         []string `envconfig:"SMTP_TO" validate:"dive,email"`

	ServeAddr string `envconfig:"SERVE_ADDR" default:":8080"`
	Schedule  string `envconfig:"BRIEFING_SCHEDULE" default:"30 6 * * 1-5"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Load environment variables from .env file
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasLongport reports whether all three Longport credentials are present.
func (c *Config) HasLongport() bool {
	return c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != ""
}

// Redacted returns the settings with credentials masked, for `config show`.
func (c *Config) Redacted() map[string]string {
	mask := func(v string) string {
		if v == "" {
			return "(not set)"
		}
		if len(v) <= 4 {
			return "****"
		}
		return v[:2] + strings.Repeat("*", len(v)-4) + v[len(v)-2:]
	}
	return map[string]string{
		"log_level":         c.LogLevel,
		"log_format":        c.LogFormat,
		"sources_file":      c.SourcesFile,
		"cache_enabled":     fmt.Sprint(c.CacheEnabled),
		"cache_ttl":         c.CacheTTL.String(),
		"fetch_timeout":     c.FetchTimeout.String(),
		"scan_timeout":      c.ScanTimeout.String(),
		"scan_workers":      fmt.Sprint(c.ScanWorkers),
		"fred_api_key":      mask(c.FredAPIKey),
		"finnhub_key":       mask(c.FinnhubAPIKey),
		"congress_key":      mask(c.CongressAPIKey),
		"longport":          fmt.Sprint(c.HasLongport()),
		"llm_provider":      c.LLMProvider,
		"llm_model":         c.LLMModel,
		"gemini_api_key":    mask(c.GeminiAPIKey),
		"anthropic_api_key": mask(c.AnthropicAPIKey),
		"deepseek_api_key":  mask(c.DeepSeekAPIKey),
		"openai_api_key":    mask(c.OpenAIAPIKey),
		"notify_channels":   strings.Join(c.NotifyChannels, ","),
		"serve_addr":        c.ServeAddr,
		"schedule":          c.Schedule,
	}
}
