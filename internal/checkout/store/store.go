package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrOrderFinal is returned when completing an order that already left
	// the pending state.
	ErrOrderFinal = errors.New("store: order already completed")
)

// Store is the root data access interface. Drivers expose sub-repositories
// so callers cannot accidentally nest transactions.
type Store interface {
	KV() KV
	Orders() Orders

	ApplyMigrations() error

	// WithTx executes fn within a transaction. fn returning an error rolls
	// the transaction back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is the transaction-scoped view of a Store.
type Tx interface {
	KV() KV
	Orders() Orders
}

// KV is the durable key-value side store behind an authsdk.Manager. Get
// returns "" and a nil error for a missing key.
type KV interface {
	authsdk.Storage
}

type Orders interface {
	// CreateOrder inserts a new pending order. The id comes from the caller.
	CreateOrder(ctx context.Context, o domain.Order) error

	// GetOrderByID returns ErrNotFound for unknown ids.
	GetOrderByID(ctx context.Context, id string) (domain.Order, error)

	// CompleteOrder records the gateway outcome on a pending or abandoned
	// order. Completed orders yield ErrOrderFinal.
	CompleteOrder(ctx context.Context, id string, res domain.OrderResult) error

	// AbandonStaleOrders moves orders still pending since before cutoff to
	// abandoned and returns how many changed.
	AbandonStaleOrders(ctx context.Context, cutoff time.Time) (int64, error)
}
