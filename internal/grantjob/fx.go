package grantjob

import (
	"context"
	"time"

	"github.com/deckforge/deckforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the scheduler and runs its periodic loop.
var Module = fx.Module("grantjob",
	fx.Provide(newConfig),
	fx.Provide(New),
	fx.Invoke(runLoop),
)

func newConfig(cfg config.Config) Config {
	return Config{
		Interval:  time.Duration(cfg.GrantIntervalMinutes) * time.Minute,
		BatchSize: cfg.GrantBatchSize,
	}
}

func runLoop(lc fx.Lifecycle, s *Scheduler) {
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(s.cfg.Interval)
				defer ticker.Stop()

				s.runOnce(loopCtx)
				for {
					select {
					case <-loopCtx.Done():
						return
					case <-ticker.C:
						s.runOnce(loopCtx)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func (s *Scheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.limiter.Enabled() {
		token, ok, err := s.limiter.TryLockGrantRun(ctx)
		if err != nil {
			s.log.Warn("grant run lock unavailable, proceeding unlocked", zap.Error(err))
		} else if !ok {
			s.log.Debug("grant run held by another instance, skipping")
			return
		} else {
			defer func() {
				if err := s.limiter.ReleaseGrantRun(ctx, token); err != nil {
					s.log.Warn("failed to release grant run lock", zap.Error(err))
				}
			}()
		}
	}

	start := s.clock.Now()
	if _, err := s.RunMonthlyGrants(ctx); err != nil {
		s.log.Error("grant run completed with errors",
			zap.Duration("elapsed", s.clock.Now().Sub(start)),
			zap.Error(err),
		)
	}
}
