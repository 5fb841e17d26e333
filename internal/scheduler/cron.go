package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/reconcile"
)

// Config controls the reconciliation trigger.
type Config struct {
	Enabled  bool
	Cron     string // 5-field cron expression, ex: "0 9 * * *"
	Timezone string // IANA TZ, ex: "Europe/Paris"
}

// CronTrigger fires the reconciliation job on a cron schedule and on
// manual triggers. Both paths funnel into the same job, whose
// run-in-progress guard keeps passes from overlapping; the cron side
// additionally skips a firing while the previous one still runs.
type CronTrigger struct {
	cfg           Config
	job           *reconcile.Job
	log           logger.Logger
	c             *cron.Cron
	manualTrigger chan struct{}
	stopCh        chan struct{}
}

// NewCronTrigger validates the schedule and timezone up front and builds
// the trigger. manualTrigger carries on-demand run requests (e.g. from
// the HTTP endpoint).
func NewCronTrigger(cfg Config, job *reconcile.Job, log logger.Logger, manualTrigger chan struct{}) (*CronTrigger, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)

	return &CronTrigger{
		cfg:           cfg,
		job:           job,
		log:           log,
		c:             c,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
	}, nil
}

// Start registers the cron entry and begins servicing manual triggers.
func (t *CronTrigger) Start(ctx context.Context) error {
	if t.cfg.Enabled {
		if _, err := t.c.AddFunc(t.cfg.Cron, func() { t.run(ctx) }); err != nil {
			return fmt.Errorf("failed to register cron entry: %w", err)
		}
		t.c.Start()
		t.log.Info("reconciliation schedule active",
			logger.String("cron", t.cfg.Cron),
			logger.String("tz", t.cfg.Timezone))
	} else {
		t.log.Info("reconciliation schedule disabled")
	}

	go func() {
		for {
			select {
			case <-t.manualTrigger:
				t.log.Info("manual reconciliation triggered")
				t.run(ctx)
			case <-t.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the cron schedule and the manual trigger loop. A run in
// flight finishes on its own.
func (t *CronTrigger) Stop() {
	close(t.stopCh)
	<-t.c.Stop().Done()
}

func (t *CronTrigger) run(ctx context.Context) {
	if _, err := t.job.RunOnce(ctx); err != nil {
		if errors.Is(err, reconcile.ErrRunInProgress) {
			return // already logged by the job
		}
		t.log.Error("reconciliation run failed", logger.Error(err))
	}
}

// cronLogger adapts our logger to the cron.Logger interface used by the
// SkipIfStillRunning chain.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.log.Debugf("cron: %s %v", msg, kv)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.log.Errorf("cron: %s: %v %v", msg, err, kv)
}
