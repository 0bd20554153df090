package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler envuelve gocron con zona horaria UTC fija, el mismo corte que usa
// el rollover diario de cupos.
type Scheduler struct {
	logger *zap.Logger
	inner  gocron.Scheduler
}

func New(logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{logger: logger, inner: s}, nil
}

// AddCronJob agenda un job por expresion cron (UTC).
func (s *Scheduler) AddCronJob(name, cronExpr string, job func()) error {
	_, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.logger.Info("job scheduled", zap.String("name", name), zap.String("cron", cronExpr))
	return nil
}

func (s *Scheduler) Start() {
	s.inner.Start()
}

func (s *Scheduler) Stop() error {
	if err := s.inner.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}
