package serve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs periodic full rebuilds when serve.rebuild_interval is set.
// File watching catches edits in real time; the periodic rebuild picks up
// changes to externally sourced files on hosts where fsnotify misses events.
type Scheduler struct {
	scheduler gocron.Scheduler
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodicRebuild registers a recurring rebuild trigger.
func (s *Scheduler) SchedulePeriodicRebuild(interval time.Duration, trigger func()) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Scheduled rebuild triggered")
			trigger()
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start(_ context.Context) {
	s.scheduler.Start()
}

func (s *Scheduler) Stop(_ context.Context) error {
	return s.scheduler.Shutdown()
}
