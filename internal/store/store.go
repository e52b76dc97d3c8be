// Package store keeps the current restriction index and reloads it in the
// background.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"turn-restrictions/internal/build"
	"turn-restrictions/internal/osm"
	"turn-restrictions/internal/restriction"
)

type Loader interface {
	Load(ctx context.Context) ([]osm.RestrictionRecord, error)
}

type Metrics interface {
	ReloadInc(result string)
	RestrictionsSet(loaded, dropped int)
	CheckObserve(allowed bool, d time.Duration)
}

// Store serves checks from an immutable index that is replaced as a whole on
// every successful reload. Readers never block on a reload.
type Store struct {
	loader          Loader
	builder         *build.Builder
	refreshInterval time.Duration
	logger          *zap.Logger
	metrics         Metrics

	current  atomic.Pointer[restriction.Index]
	reloadMu sync.Mutex

	refreshCancel context.CancelFunc
	refreshWG     sync.WaitGroup
}

func New(loader Loader, builder *build.Builder, refreshInterval time.Duration, logger *zap.Logger, metrics Metrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		loader:          loader,
		builder:         builder,
		refreshInterval: refreshInterval,
		logger:          logger,
		metrics:         metrics,
	}
}

// Refresh loads and builds all restrictions and swaps them in. On error the
// previous index stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	recs, err := s.loader.Load(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ReloadInc("error")
		}
		return err
	}
	rs, dropped := s.builder.BuildAll(recs)
	ix := restriction.NewIndex(rs)
	s.current.Store(ix)

	if s.metrics != nil {
		s.metrics.ReloadInc("ok")
		s.metrics.RestrictionsSet(ix.Len(), dropped)
	}
	s.logger.Info("turn restrictions loaded",
		zap.Int("records", len(recs)),
		zap.Int("restrictions", ix.Len()),
		zap.Int("dropped", dropped),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Index returns the current index; nil before the first successful Refresh.
func (s *Store) Index() *restriction.Index { return s.current.Load() }

// Check reports whether from→to is allowed for mode at t and, if not, which
// restriction forbids it.
func (s *Store) Check(from, to restriction.EdgeID, mode restriction.Mode, t time.Time) (bool, *restriction.Restriction) {
	start := time.Now()
	r := s.current.Load().Blocking(from, to, mode, t)
	if s.metrics != nil {
		s.metrics.CheckObserve(r == nil, time.Since(start))
	}
	return r == nil, r
}

// StartRefresher reloads every refresh interval until Stop or until parent is
// cancelled. A non-positive interval disables it.
func (s *Store) StartRefresher(parent context.Context) {
	if s.refreshInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.refreshCancel = cancel
	s.refreshWG.Add(1)
	go func() {
		defer s.refreshWG.Done()
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.logger.Error("refresh turn restrictions", zap.Error(err))
				}
			}
		}
	}()
}

func (s *Store) Stop() {
	if s.refreshCancel != nil {
		s.refreshCancel()
	}
	s.refreshWG.Wait()
}
