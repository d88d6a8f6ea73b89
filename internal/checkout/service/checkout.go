package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/idx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

// ErrInvalidRequest is returned for selections that cannot be checked out.
var ErrInvalidRequest = errors.New("invalid request")

// ProductLookup resolves a product and its trusted price.
type ProductLookup interface {
	Lookup(ctx context.Context, kind ipg.ProductKind, id string) (domain.Product, error)
}

// Checkout is a signed gateway request ready to be posted by the browser.
type Checkout struct {
	OrderID string            `json:"orderId" example:"01HMB3T6Z8Q9W2E4R5T6Y7V8K9"`
	Action  string            `json:"action" example:"https://test.ipg-online.com/connect/gateway/processing"`
	Fields  map[string]string `json:"fields"`

	Params ipg.Params   `json:"-"`
	Order  domain.Order `json:"-"`
}

// CheckoutService signs payment requests. The shared secret never leaves it.
type CheckoutService struct {
	Catalog ProductLookup
	Store   store.Store
	Gateway ipg.Config
	Secret  string
	Now     func() time.Time
}

// Begin prices the selected product from the backend catalog, records a
// pending order and returns the signed field set for the gateway.
func (s *CheckoutService) Begin(ctx context.Context, kind ipg.ProductKind, productID string) (Checkout, error) {
	log := slogx.FromContext(ctx)

	productID = strings.TrimSpace(productID)
	if !kind.Valid() {
		return Checkout{}, fmt.Errorf("%w: kind must be washbook or membership", ErrInvalidRequest)
	}
	if productID == "" {
		return Checkout{}, fmt.Errorf("%w: product id is required", ErrInvalidRequest)
	}

	product, err := s.Catalog.Lookup(ctx, kind, productID)
	if err != nil {
		return Checkout{}, err
	}

	now := s.now()
	orderID := idx.NewAt(now).String()

	params, err := s.Gateway.Build(ipg.Selection{
		Kind:    kind,
		Total:   product.Price,
		OrderID: orderID,
	}, now)
	if err != nil {
		if errors.Is(err, ipg.ErrInvalidTotal) {
			return Checkout{}, fmt.Errorf("%w: product %q has no usable price", ErrInvalidRequest, productID)
		}
		return Checkout{}, fmt.Errorf("failed to build payment request: %w", err)
	}
	signed := params.Signed(s.Secret)

	order := domain.Order{
		ID:          orderID,
		Kind:        kind,
		ProductID:   product.ID,
		ProductName: product.Name,
		ChargeTotal: ipg.FormatChargeTotal(product.Price),
		Currency:    s.Gateway.Currency,
		Status:      domain.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Orders().CreateOrder(ctx, order); err != nil {
		return Checkout{}, fmt.Errorf("failed to record order: %w", err)
	}

	log.Info("checkout started",
		"order_id", orderID,
		"kind", kind,
		"product_id", product.ID,
		slog.String("charge_total", order.ChargeTotal),
	)

	return Checkout{
		OrderID: orderID,
		Action:  s.Gateway.GatewayURL,
		Fields:  signed.Strings(),
		Params:  signed,
		Order:   order,
	}, nil
}

// Order returns a previously started order.
func (s *CheckoutService) Order(ctx context.Context, id string) (domain.Order, error) {
	oid, err := idx.Parse(id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: malformed order id", ErrInvalidRequest)
	}
	return s.Store.Orders().GetOrderByID(ctx, oid.String())
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
