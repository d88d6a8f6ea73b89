package http

import (
	"net/http"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

// FormHandler is the no-JavaScript checkout: a plain HTML form posts here and
// gets back a page that auto-submits the signed request to the gateway.
type FormHandler struct {
	CheckoutService *service.CheckoutService
	metrics         *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Start a checkout from an HTML form
//	@Description	Same as POST /v1/checkout but answers with an auto-submitting HTML form targeting the gateway.
//	@Tags			Checkout
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			kind		formData	string	true	"washbook or membership"
//	@Param			product_id	formData	string	true	"Product id from the catalog"
//	@Success		200			{string}	string	"HTML page"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		502			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/checkout/form [post].
func (h *FormHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid form body")
		return
	}

	kind := ipg.ProductKind(r.PostForm.Get("kind"))
	co, err := h.CheckoutService.Begin(r.Context(), kind, r.PostForm.Get("product_id"))
	if err != nil {
		h.metrics.checkout(string(kind), writeServiceError(w, r, err))
		return
	}
	h.metrics.checkout(string(kind), "ok")

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := ipg.RenderForm(w, co.Action, co.Params); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render payment form", "error", err, "order_id", co.OrderID)
	}
}
