package summary

import (
	"context"
	"sync"
	"time"
)

// Scheduler owns one periodic refresh loop per summary note. Reset
// replaces the whole set: every existing loop is cancelled before the new
// ones start, so a note that lost its block stops refreshing and a
// changed period takes effect everywhere at once.
type Scheduler struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{cancels: map[string]context.CancelFunc{}}
}

// Reset cancels all running loops and starts a fresh loop per path. Each
// loop waits one full period before its first refresh.
func (s *Scheduler) Reset(ctx context.Context, paths []string, period time.Duration, refresh func(ctx context.Context, notePath string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = make(map[string]context.CancelFunc, len(paths))

	for _, p := range paths {
		loopCtx, cancel := context.WithCancel(ctx)
		s.cancels[p] = cancel
		s.wg.Add(1)
		go s.run(loopCtx, p, period, refresh)
	}
}

func (s *Scheduler) run(ctx context.Context, notePath string, period time.Duration, refresh func(ctx context.Context, notePath string)) {
	defer s.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx, notePath)
		}
	}
}

// Stop cancels every loop and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = map[string]context.CancelFunc{}
	s.mu.Unlock()
	s.wg.Wait()
}
