package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type PrunePublisher interface {
	PublishPrune(ctx context.Context) error
}

// Scheduler enqueues periodic maintenance events for the worker.
type Scheduler struct {
	cron      *cron.Cron
	publisher PrunePublisher
	schedule  string
	log       zerolog.Logger
}

// NewScheduler takes a six-field cron expression (seconds first).
func NewScheduler(publisher PrunePublisher, schedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		schedule:  schedule,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueuePrune); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("archive prune scheduled")
	return nil
}

// Stop halts the cron loop and waits up to five seconds for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueuePrune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.PublishPrune(ctx); err != nil {
		s.log.Error().Err(err).Msg("enqueue prune failed")
	}
}
