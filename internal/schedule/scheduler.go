package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"insightrag-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// CronScheduler runs jobs on standard five-field specs or descriptors such as "@every 1m".
// A job still running when its next tick fires is skipped for that tick.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
	logger  logger.ILogger
}

func NewCronScheduler(logger logger.ILogger) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	details := map[string]interface{}{"job": job.Name(), "spec": spec}

	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		c.logger.Error("SCHEDULER", "Schedule job failed", map[string]interface{}{
			"job":   job.Name(),
			"spec":  spec,
			"error": err.Error(),
		})
		return err
	}
	c.entries[job.Name()] = entryID
	c.logger.Info("SCHEDULER", "Job scheduled", details)
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			c.logger.Info("SCHEDULER", "Job skipped: still running", map[string]interface{}{"job": job.Name(), "spec": spec})
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}

		start := time.Now()
		err := job.Run(ctx)
		details := map[string]interface{}{
			"job":         job.Name(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			details["error"] = err.Error()
			c.logger.Error("SCHEDULER", "Job failed", details)
			return
		}
		c.logger.Debug("SCHEDULER", "Job finished", details)
	}
}
