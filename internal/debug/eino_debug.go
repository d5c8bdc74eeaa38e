package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
)

// DevServerPort is where devops.Init serves the debug API. The port is fixed
// by the eino-ext devops package.
const DevServerPort = 52538

// EinoDebugger starts the eino devops server so the strategy-note chain can
// be inspected from the Eino Dev IDE plugin.
type EinoDebugger struct {
	enabled bool
	logger  zerolog.Logger
}

func NewEinoDebugger(cfg *config.Config, logger zerolog.Logger) *EinoDebugger {
	return &EinoDebugger{
		enabled: cfg.EinoDebugEnabled,
		logger:  logger.With().Str("component", "eino_debug").Logger(),
	}
}

// Initialize must run before any chain is compiled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.enabled {
		return nil
	}

	d.logger.Info().Int("port", DevServerPort).Msg("initializing eino visual debug plugin")
	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	d.logger.Info().Str("url", d.URL()).Msg("eino debug server started")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.enabled
}

func (d *EinoDebugger) URL() string {
	if !d.enabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", DevServerPort)
}
