package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/slogx"

	_ "github.com/aussiebroadwan/washpay/api/checkout" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *Metrics

	store      store.Store
	tokenStore Pinger
	session    SessionState

	CheckoutService *service.CheckoutService
	CallbackService *service.CallbackService

	// Where the customer lands after the gateway return leg.
	SuccessPage string
	FailurePage string

	// Rate limit profiles, defaulting to the httpx ones.
	ModerateLimit httpx.RateLimitConfig
	LenientLimit  httpx.RateLimitConfig
}

func NewRouter(
	buildVersion string,
	st store.Store,
	tokenStore Pinger,
	session SessionState,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		metrics:       NewMetrics(),
		store:         st,
		tokenStore:    tokenStore,
		session:       session,
		SuccessPage:   "/success",
		FailurePage:   "/failure",
		ModerateLimit: httpx.ModerateLimit,
		LenientLimit:  httpx.LenientLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.SecurityHeaders(),
	}

	return r
}

// ApplyRoutes registers every route. Services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerCheckout()
	r.registerGateway()
	r.registerSystem()

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			WashPay Checkout API
//	@version		0.1.0
//	@description	Car-wash checkout service. Prices products from the wash backend, signs payment requests for the IPG hosted payment page and records the gateway's answer.
//	@description
//	@description	The gateway shared secret never leaves this service; browsers only ever receive signed field sets.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/washpay
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// limit builds a per-IP limiter whose rejections are counted under route.
func (r *Router) limit(route string, config httpx.RateLimitConfig) httpx.Middleware {
	rl := httpx.NewRateLimiter(config, httpx.ClientIP)
	rl.OnReject = func(*http.Request, string) {
		r.metrics.rateLimited.WithLabelValues(route).Inc()
	}
	return rl.Middleware()
}

func (r *Router) registerCheckout() {
	// Signing and catalog lookups hit the backend: moderate limit per IP,
	// shared between the JSON and form variants.
	checkoutLimit := r.limit("checkout", r.ModerateLimit)

	r.Mux.Handle("POST /v1/checkout",
		httpx.Chain(r.metrics.instrument("checkout", &CheckoutHandler{
			CheckoutService: r.CheckoutService,
			metrics:         r.metrics,
		}), checkoutLimit),
	)
	r.Mux.Handle("POST /v1/checkout/form",
		httpx.Chain(r.metrics.instrument("checkout_form", &FormHandler{
			CheckoutService: r.CheckoutService,
			metrics:         r.metrics,
		}), checkoutLimit),
	)

	r.Mux.Handle("GET /v1/orders/{id}",
		httpx.Chain(r.metrics.instrument("order", &OrderHandler{CheckoutService: r.CheckoutService}),
			r.limit("order", r.LenientLimit),
		),
	)
}

func (r *Router) registerGateway() {
	gatewayLimit := r.limit("gateway", r.LenientLimit)

	success := httpx.Chain(r.metrics.instrument("ipg_success", &CallbackHandler{
		CallbackService: r.CallbackService,
		Outcome:         service.OutcomeSuccess,
		Redirect:        r.SuccessPage,
		metrics:         r.metrics,
	}), gatewayLimit)
	fail := httpx.Chain(r.metrics.instrument("ipg_fail", &CallbackHandler{
		CallbackService: r.CallbackService,
		Outcome:         service.OutcomeFail,
		Redirect:        r.FailurePage,
		metrics:         r.metrics,
	}), gatewayLimit)

	// The gateway may come back with either method.
	r.Mux.Handle("GET /ipg/success", success)
	r.Mux.Handle("POST /ipg/success", success)
	r.Mux.Handle("GET /ipg/fail", fail)
	r.Mux.Handle("POST /ipg/fail", fail)
}

func (r *Router) registerSystem() {
	healthLimit := r.limit("health", r.LenientLimit)

	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), healthLimit),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.tokenStore, r.session), healthLimit),
	)
}
