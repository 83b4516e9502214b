// Package sweeper periodically purges expired refresh tokens and sign-in
// links on a cron schedule.
package sweeper

import (
	"RoleChat/internal/metrics"
	"RoleChat/pkg/logger"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

type expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Target is one collection the sweeper purges.
type Target struct {
	Kind string
	Repo expirer
}

type Sweeper struct {
	log     logger.Log
	cron    string
	targets []Target
	now     func() time.Time

	mu      sync.Mutex
	running bool
}

func New(l logger.Log, cron string, targets ...Target) (*Sweeper, error) {
	if !gronx.IsValid(cron) {
		return nil, fmt.Errorf("invalid sweeper cron expression %q", cron)
	}
	return &Sweeper{
		log:     l,
		cron:    cron,
		targets: targets,
		now:     time.Now,
	}, nil
}

// Start runs the schedule loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("sweeper enabled", "cron", s.cron)
	go s.loop(ctx)
}

func (s *Sweeper) loop(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(s.cron, s.now(), false)
		if err != nil {
			s.log.ErrorErr("sweeper next tick failed", err, "cron", s.cron)
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(time.Until(next)):
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce purges every target once and returns the number of removed records
// per kind. Overlapping runs are skipped.
func (s *Sweeper) RunOnce(ctx context.Context) map[string]int64 {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	now := s.now()
	removed := make(map[string]int64, len(s.targets))
	for _, t := range s.targets {
		n, err := t.Repo.DeleteExpired(ctx, now)
		if err != nil {
			s.log.ErrorErr("sweep failed", err, "kind", t.Kind)
			continue
		}
		removed[t.Kind] = n
		metrics.SweptRecords.WithLabelValues(t.Kind).Add(float64(n))
		if n > 0 {
			s.log.Debug("swept expired records", "kind", t.Kind, "count", n)
		}
	}
	return removed
}
