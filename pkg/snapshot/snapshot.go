// Package snapshot periodically dumps buffers to disk on a worker
// pool. The core SaveToFile never retries; transient filesystem
// failures are retried here, in the background path only.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"

	"github.com/srediag/shmbuf/api"
	"github.com/srediag/shmbuf/internal/logging"
	"github.com/srediag/shmbuf/pkg/shmbuf"
)

type target struct {
	saver api.Saver
	path  string
}

// Scheduler runs periodic snapshots of registered buffers.
type Scheduler struct {
	pool     *ants.Pool
	interval time.Duration

	mu      sync.Mutex
	targets []target

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler returns a scheduler saving every interval on a pool of
// the given number of workers.
func NewScheduler(workers int, interval time.Duration) (*Scheduler, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		pool:     pool,
		interval: interval,
	}, nil
}

// Add registers a buffer to be snapshotted to path on every tick.
func (s *Scheduler) Add(saver api.Saver, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, target{saver: saver, path: path})
}

// Start begins the snapshot loop. It returns immediately; the loop
// stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.snapshotAll(ctx)
		}
	}
}

func (s *Scheduler) snapshotAll(ctx context.Context) {
	s.mu.Lock()
	targets := make([]target, len(s.targets))
	copy(targets, s.targets)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range targets {
		t := t
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			s.save(ctx, t)
		}); err != nil {
			wg.Done()
			logging.Default.Warnf("snapshot submit %s: %v", t.saver.Name(), err)
		}
	}
	wg.Wait()
}

func (s *Scheduler) save(ctx context.Context, t target) {
	op := func() error {
		err := t.saver.SaveToFile(ctx, t.path)
		if errors.Is(err, shmbuf.ErrClosed) {
			// The buffer is gone; retrying cannot help.
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		logging.Default.Warnf("snapshot %s to %s: %v", t.saver.Name(), t.path, err)
	}
}

// Stop halts the loop, waits for in-flight saves, and releases the
// worker pool.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.pool.Release()
}
