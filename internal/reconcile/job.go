// Package reconcile runs the fetch-evaluate-dispatch-commit-summarize
// cycle over the monitored secrets.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/notify"
)

// ErrRunInProgress is returned when a trigger fires while a run is still
// going. Triggers are skipped, never queued: two concurrent passes over
// the same store could double-notify a secret.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// Store is the persistence surface the job needs.
type Store interface {
	ListActiveExpiringBetween(ctx context.Context, min, max time.Time) ([]*domain.Secret, error)
	Save(ctx context.Context, secret *domain.Secret) error
}

// Dispatcher is the outbound notification surface the job needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, secret *domain.Secret, dec domain.Decision) []notify.Outcome
	BroadcastSummary(ctx context.Context, total, sent int, urgent []string) []notify.Outcome
	SummaryConfigured() bool
}

// Summary aggregates one run.
type Summary struct {
	Candidates int       // secrets fetched inside the lookahead window
	Sent       int       // notifications actually dispatched
	Urgent     []string  // names notified at the 3-day threshold this run
	Started    time.Time // run start, UTC
	Took       time.Duration
}

// Job orchestrates one reconciliation run at a time.
type Job struct {
	store      Store
	dispatcher Dispatcher
	log        logger.Logger
	lookahead  int // days
	enabled    bool
	now        func() time.Time // injectable for tests

	running atomic.Bool

	mu      sync.Mutex
	lastRun Summary
	hasRun  bool
	lastErr error
}

// New creates a reconciliation job. lookaheadDays bounds the expiry window
// queried per run (the threshold ladder tops out at 30).
func New(store Store, dispatcher Dispatcher, log logger.Logger, lookaheadDays int, enabled bool) *Job {
	if lookaheadDays <= 0 {
		lookaheadDays = domain.ThresholdNotice
	}
	return &Job{
		store:      store,
		dispatcher: dispatcher,
		log:        log,
		lookahead:  lookaheadDays,
		enabled:    enabled,
		now:        time.Now,
	}
}

// Enabled reports whether runs execute at all.
func (j *Job) Enabled() bool { return j.enabled }

// RunStatus describes the most recent run, if any.
type RunStatus struct {
	Summary Summary
	Err     error
	HasRun  bool
}

// Status returns the most recent run summary and its error.
func (j *Job) Status() RunStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return RunStatus{Summary: j.lastRun, Err: j.lastErr, HasRun: j.hasRun}
}

// RunOnce executes a full reconciliation pass:
// fetch candidates, evaluate each, dispatch the due ones, commit state,
// broadcast one summary. It always completes a full pass or aborts at the
// fetch stage; per-secret failures never abort the run.
func (j *Job) RunOnce(ctx context.Context) (Summary, error) {
	if !j.enabled {
		j.log.Info("reconciliation disabled, skipping run")
		return Summary{}, nil
	}

	// Never run two passes concurrently against the same store.
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn("reconciliation trigger skipped, run in progress")
		return Summary{}, ErrRunInProgress
	}
	defer j.running.Store(false)

	start := j.now()
	today := domain.DateUTC(start)
	summary := Summary{Started: start.UTC()}

	j.log.Info("starting reconciliation run", logger.Time("today", today))

	maxDate := today.AddDate(0, 0, j.lookahead)
	secrets, err := j.store.ListActiveExpiringBetween(ctx, today, maxDate)
	if err != nil {
		// Fatal to the run: nothing was dispatched, the next scheduled
		// trigger retries naturally.
		err = fmt.Errorf("failed to fetch expiring secrets: %w", err)
		j.log.Error("reconciliation run aborted", logger.Error(err))
		j.record(summary, err)
		return summary, err
	}
	summary.Candidates = len(secrets)
	j.log.Info("fetched candidates",
		logger.Int("count", len(secrets)),
		logger.Int("lookahead_days", j.lookahead))

	for _, secret := range secrets {
		dec := domain.Evaluate(today, secret)
		if !dec.Due {
			j.log.Debug("secret already covered",
				logger.String("secret", secret.Name),
				logger.Int("days_remaining", dec.DaysRemaining),
				logger.Int("last_notified", secret.LastNotifiedThreshold))
			continue
		}

		j.log.Info("secret crossed threshold",
			logger.String("secret", secret.Name),
			logger.Int("days_remaining", dec.DaysRemaining),
			logger.Int("threshold", dec.Threshold),
			logger.String("urgency", dec.Urgency))

		// Best-effort dispatch: per-channel failures are logged inside
		// the dispatcher and do not block the commit below.
		j.dispatcher.Dispatch(ctx, secret, dec)

		if err := j.commit(ctx, secret, dec, today); err != nil {
			// The secret stays eligible and will likely be re-notified
			// next run. Accepted at-least-once duplicate risk.
			j.log.Error("failed to commit notification state",
				logger.String("secret", secret.Name),
				logger.Error(err))
			continue
		}

		summary.Sent++
		if dec.Threshold == domain.ThresholdUrgent {
			summary.Urgent = append(summary.Urgent, secret.Name)
		}
	}

	if j.dispatcher.SummaryConfigured() {
		j.dispatcher.BroadcastSummary(ctx, summary.Candidates, summary.Sent, summary.Urgent)
	}

	summary.Took = j.now().Sub(start)
	j.log.Info("reconciliation run completed",
		logger.Int("candidates", summary.Candidates),
		logger.Int("sent", summary.Sent),
		logger.Strings("urgent", summary.Urgent),
		logger.Duration("took", summary.Took))

	j.record(summary, nil)
	return summary, nil
}

// commit persists the new notification state. Both fields land in one
// Save so they are stored atomically together.
func (j *Job) commit(ctx context.Context, secret *domain.Secret, dec domain.Decision, today time.Time) error {
	secret.LastNotifiedOn = today
	secret.LastNotifiedThreshold = dec.Threshold
	secret.UpdatedAt = j.now().UTC()
	return j.store.Save(ctx, secret)
}

func (j *Job) record(s Summary, err error) {
	j.mu.Lock()
	j.lastRun = s
	j.lastErr = err
	j.hasRun = true
	j.mu.Unlock()
}
