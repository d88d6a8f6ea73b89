package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

// Outcome is the return leg the gateway sent the customer down.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
)

// Gateway callback fields.
const (
	FieldStatus       = "status"
	FieldApprovalCode = "approval_code"
	FieldFailReason   = "fail_reason"
)

// ErrMissingOrderID is returned for callbacks without an oid.
var ErrMissingOrderID = errors.New("callback has no order id")

// CallbackService records what the gateway reported on the return leg. The
// callback is not authenticated, so the recorded status is informational.
type CallbackService struct {
	Store store.Store
	Now   func() time.Time
}

// Complete moves the order named by the form's oid out of pending.
func (s *CallbackService) Complete(ctx context.Context, outcome Outcome, form url.Values) (domain.Order, error) {
	log := slogx.FromContext(ctx)

	oid := strings.TrimSpace(form.Get(ipg.FieldOrderID))
	if oid == "" {
		return domain.Order{}, ErrMissingOrderID
	}

	res := domain.OrderResult{
		Status:        resultStatus(outcome, form.Get(FieldStatus)),
		GatewayStatus: form.Get(FieldStatus),
		ApprovalCode:  form.Get(FieldApprovalCode),
		FailReason:    form.Get(FieldFailReason),
		CompletedAt:   s.now(),
	}

	var order domain.Order
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Orders().GetOrderByID(ctx, oid)
		if err != nil {
			return err
		}
		if current.Status.Final() {
			return store.ErrOrderFinal
		}
		if current.Status == domain.OrderAbandoned {
			log.Warn("callback for abandoned order",
				"order_id", oid,
				"outcome", outcome,
				"abandoned_at", current.UpdatedAt,
			)
		}
		if err := tx.Orders().CompleteOrder(ctx, oid, res); err != nil {
			return err
		}
		order, err = tx.Orders().GetOrderByID(ctx, oid)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %q: %w", oid, err)
	}

	log.Info("order completed",
		"order_id", oid,
		"outcome", outcome,
		"status", order.Status,
		"gateway_status", res.GatewayStatus,
		"fail_reason", res.FailReason,
	)
	return order, nil
}

// resultStatus trusts the leg the gateway chose unless its status field
// explicitly contradicts a success.
func resultStatus(outcome Outcome, gatewayStatus string) domain.OrderStatus {
	if outcome != OutcomeSuccess {
		return domain.OrderDeclined
	}
	switch strings.ToUpper(strings.TrimSpace(gatewayStatus)) {
	case "DECLINED", "FAILED", "ERROR":
		return domain.OrderDeclined
	}
	return domain.OrderApproved
}

func (s *CallbackService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
