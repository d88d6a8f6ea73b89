package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/store"
)

// DefaultOrderTTL is how long an order may stay pending before it is
// considered abandoned.
const DefaultOrderTTL = 24 * time.Hour

// HousekeepingService periodically marks orders that never came back from the
// gateway as abandoned.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	OrderTTL time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, orderTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if orderTTL <= 0 {
		orderTTL = DefaultOrderTTL
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		OrderTTL: orderTTL,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "order_ttl", s.OrderTTL)
}

// Stop blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep abandons stale pending orders once and reports how many changed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	cutoff := s.Now().Add(-s.OrderTTL)

	n, err := s.Store.Orders().AbandonStaleOrders(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to abandon stale orders", "error", err)
		return 0
	}
	if n > 0 {
		s.Logger.Info("abandoned stale orders", "count", n, "cutoff", cutoff)
	}
	return n
}
