package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
)

// CheckoutRequest selects the product to pay for. The price is never taken
// from the client.
type CheckoutRequest struct {
	Kind      ipg.ProductKind `json:"kind" example:"membership"`
	ProductID string          `json:"productId" example:"7"`
}

type CheckoutHandler struct {
	CheckoutService *service.CheckoutService
	metrics         *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Start a checkout
//	@Description	Prices the selected product from the backend catalog, records a pending order and returns the signed field set to post to the payment gateway.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckoutRequest			true	"Product selection"
//	@Success		200		{object}	service.Checkout		"orderId, action, fields"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		429		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		502		{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/checkout [post].
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	co, err := h.CheckoutService.Begin(r.Context(), req.Kind, req.ProductID)
	if err != nil {
		h.metrics.checkout(string(req.Kind), writeServiceError(w, r, err))
		return
	}

	h.metrics.checkout(string(req.Kind), "ok")
	httpx.WriteJSON(w, http.StatusOK, co)
}
