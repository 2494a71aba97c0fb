// Package jobs runs the periodic maintenance tasks of the API process.
package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/npsexplorer/explorer/pkg/observability"
)

// Scheduler runs named jobs on cron specs. Panics inside a job are recovered
// and logged.
type Scheduler struct {
	cron   *cron.Cron
	logger *observability.Logger
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger *observability.Logger) *Scheduler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// Add schedules fn under spec, e.g. "@every 30s" or "*/5 * * * *"
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": spec,
	}).Info("Scheduled job")
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatsSource exposes connection pool statistics
type StatsSource interface {
	Stats() sql.DBStats
}

// DBStatsJob copies the pool statistics into the metrics gauges
func DBStatsJob(source StatsSource, metrics *observability.Metrics) func() {
	return func() {
		metrics.RecordDBStats(source.Stats())
	}
}

// Cleaner drops stale in-memory state and reports how many entries it removed
type Cleaner interface {
	Cleanup() int
}

// CleanupJob runs c.Cleanup and logs the result when something was removed
func CleanupJob(name string, c Cleaner, logger *observability.Logger) func() {
	return func() {
		if removed := c.Cleanup(); removed > 0 {
			logger.WithFields(map[string]interface{}{
				"job":     name,
				"removed": removed,
			}).Debug("Cleaned up stale entries")
		}
	}
}

// cronLogger adapts observability.Logger to cron.Logger
type cronLogger struct {
	logger *observability.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(pairs(keysAndValues)).Error("cron: " + msg)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
