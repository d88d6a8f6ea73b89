package domain

import (
	"time"

	"github.com/aussiebroadwan/washpay/pkg/ipg"
)

// OrderStatus tracks an order through the gateway round trip.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderDeclined  OrderStatus = "declined"
	OrderAbandoned OrderStatus = "abandoned" // no callback within the order TTL
)

// Final reports whether the order can no longer change. An abandoned order
// is not final: a late gateway callback still records its outcome.
func (s OrderStatus) Final() bool {
	return s == OrderApproved || s == OrderDeclined
}

// Order mirrors one signed payment request. The ID is the gateway oid.
type Order struct {
	ID          string
	Kind        ipg.ProductKind
	ProductID   string
	ProductName string
	ChargeTotal string // exactly as signed, e.g. "99.00"
	Currency    string
	Status      OrderStatus

	// Filled in from the gateway callback
	GatewayStatus string
	ApprovalCode  string
	FailReason    string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// OrderResult is what the gateway reported for an order.
type OrderResult struct {
	Status        OrderStatus
	GatewayStatus string
	ApprovalCode  string
	FailReason    string
	CompletedAt   time.Time
}
