package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

// writeServiceError maps service errors onto HTTP answers and returns the
// short result label used for metrics.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, ipg.ErrUnknownKind):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return "invalid"
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())
		return "not_found"
	case errors.Is(err, service.ErrUpstream):
		slogx.FromContext(r.Context()).Error("backend request failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream_error", "The product catalog is unavailable. Please try again later.")
		return "upstream_error"
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return "error"
	}
}
