package watch

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

// scheduler requests a rebuild on a fixed interval so that changes missed by
// the filesystem watcher still reach the output.
type scheduler struct {
	s      gocron.Scheduler
	logger *slog.Logger
}

func newScheduler(interval time.Duration, fn func(), logger *slog.Logger) (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to schedule periodic rebuild").
			WithContext("interval", interval.String()).
			Build()
	}
	return &scheduler{s: s, logger: logger}, nil
}

func (s *scheduler) start() {
	s.logger.Info("Starting scheduler")
	s.s.Start()
}

func (s *scheduler) stop() {
	s.logger.Info("Stopping scheduler")
	if err := s.s.Shutdown(); err != nil {
		s.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
}
