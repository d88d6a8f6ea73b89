package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

// CallbackHandler receives the customer back from the gateway and always
// redirects to the configured result page.
type CallbackHandler struct {
	CallbackService *service.CallbackService
	Outcome         service.Outcome
	Redirect        string
	metrics         *Metrics
}

// ServeHTTP godoc
//
//	@Summary		Gateway return leg
//	@Description	The gateway sends the customer here after payment, with the transaction result as form fields. The order named by oid is updated and the customer is redirected to the result page.
//	@Tags			Gateway
//	@Accept			x-www-form-urlencoded
//	@Param			oid				formData	string	false	"Order id"
//	@Param			status			formData	string	false	"Gateway transaction status"
//	@Param			approval_code	formData	string	false	"Approval code"
//	@Param			fail_reason		formData	string	false	"Failure reason"
//	@Success		302
//	@Router			/ipg/success [post]
//	@Router			/ipg/success [get]
//	@Router			/ipg/fail [post]
//	@Router			/ipg/fail [get].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context()).With("outcome", h.Outcome)

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		log.Warn("unreadable gateway callback", "method", r.Method, "error", err)
		h.metrics.callback(string(h.Outcome), "unreadable")
		h.redirect(w, r)
		return
	}

	order, err := h.CallbackService.Complete(r.Context(), h.Outcome, r.Form)
	switch {
	case err == nil:
		h.metrics.callback(string(h.Outcome), string(order.Status))
	case errors.Is(err, service.ErrMissingOrderID), errors.Is(err, store.ErrNotFound):
		log.Warn("gateway callback for unknown order", "method", r.Method, "fields", len(r.Form), "error", err)
		h.metrics.callback(string(h.Outcome), "unknown_order")
	case errors.Is(err, store.ErrOrderFinal):
		log.Info("duplicate gateway callback", "error", err)
		h.metrics.callback(string(h.Outcome), "duplicate")
	default:
		log.Error("failed to record gateway callback", "error", err)
		h.metrics.callback(string(h.Outcome), "error")
	}

	h.redirect(w, r)
}

func (h *CallbackHandler) redirect(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	http.Redirect(w, r, h.Redirect, http.StatusFound)
}
