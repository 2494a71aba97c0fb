package jobs

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npsexplorer/explorer/pkg/observability"
)

type fakeStats struct{ stats sql.DBStats }

func (f fakeStats) Stats() sql.DBStats { return f.stats }

type fakeCleaner struct{ removed int }

func (f *fakeCleaner) Cleanup() int { return f.removed }

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(nil)
	err := s.Add("broken", "every now and then", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule broken")
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(observability.NopLogger())

	var runs int32
	require.NoError(t, s.Add("tick", "@every 1s", func() { atomic.AddInt32(&runs, 1) }))
	s.Start()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(observability.NewLogger(observability.InfoLevel, &buf))
	require.NoError(t, s.Add("boom", "@every 1h", func() { panic("job exploded") }))

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	assert.NotPanics(t, func() { entries[0].WrappedJob.Run() })
	assert.True(t, strings.Contains(buf.String(), "panic"), buf.String())
}

func TestDBStatsJob(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	job := DBStatsJob(fakeStats{stats: sql.DBStats{OpenConnections: 4, InUse: 3, Idle: 1}}, metrics)

	job()

	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.DBConnectionsOpen))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.DBConnectionsInUse))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DBConnectionsIdle))
}

func TestCleanupJob(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.DebugLevel, &buf)

	CleanupJob("login-limiter", &fakeCleaner{removed: 0}, logger)()
	assert.Empty(t, buf.String())

	CleanupJob("login-limiter", &fakeCleaner{removed: 2}, logger)()
	assert.Contains(t, buf.String(), `"removed":2`)
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	l := cronLogger{logger: observability.NewLogger(observability.DebugLevel, &buf)}

	l.Error(errors.New("bad"), "job failed", "entry", 3, "dangling")
	out := buf.String()
	assert.Contains(t, out, `"error":"bad"`)
	assert.Contains(t, out, `"entry":3`)
	assert.Contains(t, out, "cron: job failed")
}
