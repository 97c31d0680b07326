package tracker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher collapses bursts of state-changed signals into at most one
// downstream refresh per tick. The reset flag is sticky: once requested it
// survives until the tick that consumes it, even if later requests were
// plain refreshes.
type Refresher struct {
	mu    sync.Mutex
	dirty bool
	reset bool

	interval time.Duration
	fn       func(reset bool)
	done     chan struct{}
	doneOnce sync.Once
	logger   *zap.Logger
}

// NewRefresher starts a refresher ticking at the given interval. fn runs on
// the refresher's goroutine.
func NewRefresher(interval time.Duration, fn func(reset bool), logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Refresher{
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go r.run()
	return r
}

// Request marks state as changed; the next tick performs one refresh.
func (r *Refresher) Request() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

// RequestReset marks state as changed and flags the refresh as a full reset.
func (r *Refresher) RequestReset() {
	r.mu.Lock()
	r.dirty = true
	r.reset = true
	r.mu.Unlock()
}

// Stop terminates the tick loop.
func (r *Refresher) Stop() {
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Refresher) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()
		case <-r.done:
			return
		}
	}
}

func (r *Refresher) flush() {
	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return
	}
	reset := r.reset
	r.dirty = false
	r.reset = false
	r.mu.Unlock()

	if r.fn != nil {
		r.fn(reset)
	}
}
