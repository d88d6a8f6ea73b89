package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	o := seedOrder(t, st)

	hk := NewHousekeepingService(st, slogx.Discard(), time.Hour, 0)
	require.Equal(t, DefaultOrderTTL, hk.OrderTTL)

	hk.Now = func() time.Time { return testNow.Add(time.Hour) }
	require.Zero(t, hk.Sweep(ctx))

	hk.Now = func() time.Time { return testNow.Add(25 * time.Hour) }
	require.EqualValues(t, 1, hk.Sweep(ctx))

	got, err := st.Orders().GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderAbandoned, got.Status)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)
	o := seedOrder(t, st)

	hk := NewHousekeepingService(st, slogx.Discard(), 0, time.Minute)
	require.Equal(t, time.Hour, hk.Interval)

	// Start sweeps immediately.
	hk.Start()
	require.Eventually(t, func() bool {
		got, err := st.Orders().GetOrderByID(context.Background(), o.ID)
		return err == nil && got.Status == domain.OrderAbandoned
	}, 2*time.Second, 10*time.Millisecond)
	hk.Stop()
}
