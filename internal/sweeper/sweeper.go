// Package sweeper marks loans overdue on a cron schedule.
package sweeper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/erazemk/solskiinventar/internal/metrics"
	"github.com/erazemk/solskiinventar/internal/store"
)

// Sweeper runs the overdue sweep and drops stale token revocations, either
// on a schedule or on demand.
type Sweeper struct {
	DB      *sql.DB
	Now     func() time.Time
	Metrics *metrics.Metrics

	mu   sync.Mutex
	cron *cron.Cron
}

// New returns a Sweeper. A nil now uses time.Now.
func New(db *sql.DB, now func() time.Time, m *metrics.Metrics) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{DB: db, Now: now, Metrics: m}
}

// RunOnce sweeps once and returns the number of loans moved to overdue.
// Runs never overlap.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	n, err := store.SweepOverdue(ctx, s.DB, now)
	if s.Metrics != nil {
		s.Metrics.RecordSweep(n, err)
	}
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("marked borrowings overdue", "count", n)
	}

	purged, err := store.PurgeRevokedTokens(ctx, s.DB, now)
	if err != nil {
		slog.Error("failed to purge revoked tokens", "error", err)
	} else if purged > 0 {
		slog.Info("purged expired token revocations", "count", purged)
	}

	return n, nil
}

// Start schedules RunOnce with a cron spec such as "@every 1h" or
// "0 * * * *". The first run happens immediately.
func (s *Sweeper) Start(spec string) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("scheduling overdue sweep %q: %w", spec, err)
	}

	s.run()

	s.cron = c
	c.Start()
	slog.Info("overdue sweeper started", "schedule", spec)
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("overdue sweep failed", "error", err)
	}
}

// cronLogger adapts cron's logger to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
