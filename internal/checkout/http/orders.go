package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
)

// OrderResponse is the public view of an order.
type OrderResponse struct {
	OrderID      string     `json:"orderId" example:"01HMB3T6Z8Q9W2E4R5T6Y7V8K9"`
	Kind         string     `json:"kind" example:"membership"`
	ProductID    string     `json:"productId" example:"7"`
	ProductName  string     `json:"productName,omitempty" example:"Gold"`
	ChargeTotal  string     `json:"chargeTotal" example:"99.00"`
	Currency     string     `json:"currency" example:"784"`
	Status       string     `json:"status" example:"approved"`
	ApprovalCode string     `json:"approvalCode,omitempty"`
	FailReason   string     `json:"failReason,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func newOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:      o.ID,
		Kind:         string(o.Kind),
		ProductID:    o.ProductID,
		ProductName:  o.ProductName,
		ChargeTotal:  o.ChargeTotal,
		Currency:     o.Currency,
		Status:       string(o.Status),
		ApprovalCode: o.ApprovalCode,
		FailReason:   o.FailReason,
		CreatedAt:    o.CreatedAt,
		CompletedAt:  o.CompletedAt,
	}
}

type OrderHandler struct {
	CheckoutService *service.CheckoutService
}

// ServeHTTP godoc
//
//	@Summary		Order status
//	@Description	Returns an order started through /v1/checkout, including what the gateway reported on the return leg.
//	@Tags			Checkout
//	@Produce		json
//	@Param			id	path		string				true	"Order id (oid)"
//	@Success		200	{object}	OrderResponse
//	@Failure		400	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/orders/{id} [get].
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	order, err := h.CheckoutService.Order(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newOrderResponse(order))
}
