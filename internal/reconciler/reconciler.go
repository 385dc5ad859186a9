// Package reconciler rewrites the most-read cached counters from the
// database so drift from lost increments does not persist.
package reconciler

import (
	"context"
	"time"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/store"
	"github.com/codegram/codegram-live/pkg/log"
)

const (
	defaultInterval = time.Minute
	defaultTopN     = 100
)

// CounterSource computes authoritative counts.
type CounterSource interface {
	Load(ctx context.Context, key store.CounterKey) (int64, error)
}

// Reconciler refreshes hot counters on a fixed interval.
type Reconciler struct {
	store  store.CounterStore
	source CounterSource
	cfg    config.ReconcilerConfig
	quit   chan struct{}
	doneCh chan struct{}
}

func New(s store.CounterStore, source CounterSource, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		store:  s,
		source: source,
		cfg:    cfg,
		quit:   make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start runs the loop in a goroutine until Stop is called or ctx ends.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop asks the loop to exit. Wait on Done for it to finish.
func (r *Reconciler) Stop() {
	close(r.quit)
}

func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass: read the top-N accessed keys, overwrite each from
// the source, then reset access scores for the next window. It returns the
// number of counters rewritten.
func (r *Reconciler) Reconcile(ctx context.Context) int {
	l := log.L()

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = defaultTopN
	}

	keys, err := r.store.GetTopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get top hot keys")
		return 0
	}
	if len(keys) == 0 {
		l.Debug().Msg("reconciler: no hot keys to reconcile")
		return 0
	}

	synced := 0
	for _, key := range keys {
		version, err := r.store.Version(ctx, key)
		if err != nil {
			l.Error().Err(err).Str("counter", key.String()).Msg("reconciler: failed to read counter version")
			continue
		}
		count, err := r.source.Load(ctx, key)
		if err != nil {
			l.Error().Err(err).Str("counter", key.String()).Msg("reconciler: failed to load count from db")
			continue
		}
		stored, err := r.store.Fill(ctx, key, count, version)
		if err != nil {
			l.Error().Err(err).Str("counter", key.String()).Msg("reconciler: failed to write counter cache")
			continue
		}
		if !stored {
			// A write landed during the load; drop the entry so the next
			// read reloads it.
			if err := r.store.Delete(ctx, key); err != nil {
				l.Error().Err(err).Str("counter", key.String()).Msg("reconciler: failed to drop raced counter")
			}
			continue
		}
		synced++
	}

	if err := r.store.ResetHotKeyScores(ctx); err != nil {
		l.Error().Err(err).Msg("reconciler: failed to reset hot key scores")
	}

	l.Info().Int("keys", len(keys)).Int("synced", synced).Msg("reconciler: hot-key reconciliation complete")
	return synced
}
