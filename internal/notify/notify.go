// Package notify delivers the finished briefing to the configured channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/config"
	"github.com/dyike/CortexBrief/internal/display"
)

const (
	ChannelStdout  = "stdout"
	ChannelWebhook = "webhook"
	ChannelEmail   = "email"
)

// Message is one delivery: the strategy note plus the raw briefing it was
// built from.
type Message struct {
	RunID   string
	Date    time.Time
	Subject string
	Note    string
	Raw     string
}

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a message out to every channel. A failing channel does not
// stop the others.
type Dispatcher struct {
	channels []Notifier
	logger   zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger, channels ...Notifier) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger}
}

// FromConfig builds the channels named by NOTIFY_CHANNELS.
func FromConfig(cfg *config.Config, transport http.RoundTripper, printer *display.Printer, logger zerolog.Logger) (*Dispatcher, error) {
	var channels []Notifier
	for _, name := range cfg.NotifyChannels {
		switch name {
		case ChannelStdout:
			channels = append(channels, NewStdout(printer))
		case ChannelWebhook:
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook channel needs NOTIFY_WEBHOOK_URL")
			}
			channels = append(channels, NewWebhook(cfg.WebhookURL, transport, cfg.FetchTimeout))
		case ChannelEmail:
			email, err := NewEmail(SMTPSettings{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
				To:       cfg.SMTPTo,
			})
			if err != nil {
				return nil, err
			}
			channels = append(channels, email)
		default:
			return nil, fmt.Errorf("unknown notify channel %q", name)
		}
	}
	return NewDispatcher(logger, channels...), nil
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		names = append(names, c.Name())
	}
	return names
}

// Dispatch sends msg everywhere and joins the failures.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	var errs []error
	for _, c := range d.channels {
		if err := c.Send(ctx, msg); err != nil {
			d.logger.Error().Str("channel", c.Name()).Str("run_id", msg.RunID).Err(err).Msg("delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		d.logger.Info().Str("channel", c.Name()).Str("run_id", msg.RunID).Msg("briefing delivered")
	}
	return errors.Join(errs...)
}

// Stdout prints the briefing to the terminal.
type Stdout struct {
	printer *display.Printer
}

func NewStdout(printer *display.Printer) *Stdout {
	if printer == nil {
		printer = display.New(nil)
	}
	return &Stdout{printer: printer}
}

func (s *Stdout) Name() string { return ChannelStdout }

func (s *Stdout) Send(ctx context.Context, msg Message) error {
	s.printer.Briefing(msg.Subject, msg.Note, msg.Raw)
	return nil
}
