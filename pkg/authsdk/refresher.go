package authsdk

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval keeps a session with 15 minute access tokens warm.
const DefaultRefreshInterval = 14 * time.Minute

// Refresher refreshes a Manager's tokens on a fixed interval so an idle
// process never has to refresh on the request path. The loop ends on its own
// the first time a refresh yields no tokens. A Manager built WithLogin logs
// in again inside that refresh, so its loop keeps going.
type Refresher struct {
	Manager  *Manager
	Logger   *slog.Logger
	Interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRefresher creates a Refresher. If interval is 0 or negative it defaults
// to DefaultRefreshInterval.
func NewRefresher(m *Manager, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		Manager:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. It does not block.
func (r *Refresher) Start() {
	go r.run()
	r.Logger.Info("token refresher started", "interval", r.Interval)
}

// Stop ends the loop and waits for an in-progress refresh to finish. It is
// safe to call more than once and after the loop has ended by itself.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

// Done is closed once the loop has exited.
func (r *Refresher) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Refresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !r.tick() {
				r.Logger.Warn("token refresher stopped: session has no tokens")
				return
			}
		case <-r.stopCh:
			r.Logger.Info("token refresher stopped")
			return
		}
	}
}

func (r *Refresher) tick() bool {
	_, ok := r.Manager.Refresh(context.Background())
	return ok
}
