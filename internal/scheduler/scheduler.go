package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled mission run.
type Job func(ctx context.Context) error

// Scheduler runs the briefing on a cron schedule. A run still in progress
// when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	logger  zerolog.Logger
}

func New(job Job, timeout time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		job:     job,
		timeout: timeout,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the schedule (standard five-field spec) and starts ticking.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Time("next", s.Next()).Msg("briefing scheduler started")
	return nil
}

// Next is the time of the next run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("briefing scheduler stopped")
}

// RunNow triggers an immediate run in the background.
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("triggering immediate briefing run")
	go s.run()
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("scheduled briefing failed")
		return
	}
	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("scheduled briefing finished")
}
