// internal/syncer/scheduler.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// Trigger starts a sync cycle. Satisfied by *Engine.
type Trigger interface {
	Sync(ctx context.Context) (*Result, error)
}

// Scheduler drives automatic syncing: a recurring interval while online,
// plus a trigger on every offline-to-online transition after a settle delay
// so a flapping connection does not fire a cycle per flap. Both paths funnel
// into the same non-reentrant engine, so overlapping triggers coalesce.
type Scheduler struct {
	engine   Trigger
	monitor  ports.ConnectivityMonitor
	settings ports.SettingsStore
	interval time.Duration
	settle   time.Duration
	logger   *slog.Logger
}

// NewScheduler creates an autosync scheduler.
func NewScheduler(engine Trigger, monitor ports.ConnectivityMonitor, settings ports.SettingsStore,
	interval, settle time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		monitor:  monitor,
		settings: settings,
		interval: interval,
		settle:   settle,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	events, cancel := s.monitor.Subscribe()
	defer cancel()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if s.autosyncEnabled(ctx) && s.monitor.Online() {
				s.trigger(ctx, "interval")
			}

		case online := <-events:
			if !online {
				continue
			}
			// Settle before syncing against a connection that just came up.
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.settle):
			}
			if s.autosyncEnabled(ctx) && s.monitor.Online() {
				s.trigger(ctx, "reconnect")
			}
		}
	}
}

func (s *Scheduler) autosyncEnabled(ctx context.Context) bool {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read settings",
			slog.String("error", err.Error()))
		return false
	}
	return settings.AutoSync
}

func (s *Scheduler) trigger(ctx context.Context, cause string) {
	res, err := s.engine.Sync(ctx)
	if errors.Is(err, ErrSyncInProgress) {
		s.logger.DebugContext(ctx, "sync trigger coalesced",
			slog.String("cause", cause))
		return
	}
	if res != nil && !res.OK() {
		s.logger.WarnContext(ctx, "autosync cycle failed",
			slog.String("cause", cause),
			slog.Int("errors", len(res.Errors)))
		return
	}

	s.logger.DebugContext(ctx, "autosync cycle completed",
		slog.String("cause", cause))
}
