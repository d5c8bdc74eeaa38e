// Package service runs the daily mission: generate the briefing, summarize it
// and deliver it.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexBrief/internal/briefing"
	"github.com/dyike/CortexBrief/internal/notify"
	"github.com/dyike/CortexBrief/internal/summary"
)

// Generator produces one briefing.
type Generator interface {
	Generate(ctx context.Context) *briefing.Report
}

// Dispatcher delivers a message to every configured channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notify.Message) error
}

// ConfirmFunc is asked before delivery; returning false skips it.
type ConfirmFunc func(msg notify.Message) (bool, error)

// Outcome is what one mission produced.
type Outcome struct {
	Report    *briefing.Report
	Message   notify.Message
	Delivered bool
}

type Mission struct {
	generator  Generator
	summarizer summary.Summarizer
	dispatcher Dispatcher
	logger     zerolog.Logger
}

// NewMission wires the pipeline. summarizer and dispatcher may be nil.
func NewMission(gen Generator, summarizer summary.Summarizer, dispatcher Dispatcher, logger zerolog.Logger) *Mission {
	return &Mission{
		generator:  gen,
		summarizer: summarizer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func Subject(r *briefing.Report) string {
	return "Daily Briefing " + r.Date.Format("2006-01-02")
}

// Run executes generate -> summarize -> dispatch. Delivery is skipped when the
// note comes back empty or confirm declines it.
func (m *Mission) Run(ctx context.Context, confirm ConfirmFunc) (*Outcome, error) {
	report := m.generator.Generate(ctx)
	logger := m.logger.With().Str("run_id", report.RunID).Logger()

	var note string
	if m.summarizer != nil {
		note = m.summarizer.Summarize(ctx, report.Text)
	}

	out := &Outcome{
		Report: report,
		Message: notify.Message{
			RunID:   report.RunID,
			Date:    report.Date,
			Subject: Subject(report),
			Note:    note,
			Raw:     report.Text,
		},
	}

	if strings.TrimSpace(note) == "" {
		logger.Info().Msg("empty strategy note, skipping dispatch")
		return out, nil
	}
	if m.dispatcher == nil {
		return out, nil
	}
	if confirm != nil {
		ok, err := confirm(out.Message)
		if err != nil {
			return out, fmt.Errorf("confirm dispatch: %w", err)
		}
		if !ok {
			logger.Info().Msg("dispatch declined")
			return out, nil
		}
	}

	if err := m.dispatcher.Dispatch(ctx, out.Message); err != nil {
		return out, fmt.Errorf("dispatch briefing: %w", err)
	}
	out.Delivered = true
	logger.Info().Msg("mission complete")
	return out, nil
}
