package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/config"
	"github.com/lmeier/warehouse/internal/service/reorder"
)

// Scheduler triggers the reorder pass on the configured cron schedule. It
// does no work itself; the pass owns all reorder logic.
type Scheduler struct {
	cron       *cron.Cron
	reorderSvc *reorder.Service
	cfg        config.ReorderConfig
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ReorderConfig, reorderSvc *reorder.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:       cron.New(),
		reorderSvc: reorderSvc,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the reorder pass and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runPass)
	if err != nil {
		s.logger.Error("failed to schedule reorder pass", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runPass() {
	s.logger.Info("running scheduled reorder pass")
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	report := s.reorderSvc.Run(ctx)
	if report.Failures > 0 {
		s.logger.Warn("reorder pass had failures", zap.Int("failures", report.Failures))
	}
}
