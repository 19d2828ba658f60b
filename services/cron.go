package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"edunexa-backend/internal/config"
	"edunexa-backend/internal/logger"
)

// CronService runs the periodic quota scan.
type CronService struct {
	scheduler *gocron.Scheduler
	evaluator *AlertEvaluator
	interval  time.Duration
}

func NewCronService(cfg *config.Config, evaluator *AlertEvaluator) *CronService {
	return &CronService{
		scheduler: gocron.NewScheduler(time.UTC),
		evaluator: evaluator,
		interval:  cfg.QuotaScanInterval,
	}
}

func (c *CronService) Start() error {
	_, err := c.scheduler.Every(c.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := c.evaluator.ScanAll(ctx); err != nil {
			logger.Error("quota scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	c.scheduler.StartAsync()
	logger.Info("quota alert scheduler started", "interval", c.interval.String())
	return nil
}

func (c *CronService) Stop() {
	c.scheduler.Stop()
}
