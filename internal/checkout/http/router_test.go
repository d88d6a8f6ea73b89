package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/internal/checkout/store/drivers/sqlite"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-shared-secret"

type fakeSession struct{ ok bool }

func (f fakeSession) Tokens(context.Context) (authsdk.TokenPair, bool) {
	if !f.ok {
		return authsdk.TokenPair{}, false
	}
	return authsdk.TokenPair{AccessToken: "a", RefreshToken: "r"}, true
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	router  *Router
	backend *httptest.Server
}

func newTestEnv(t *testing.T, configure ...func(*Router)) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/washbook", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"washbookId": 3, "washbookName": "Express Wash Book", "washbookPrice": 150},
		}})
	})
	mux.HandleFunc("GET /api/membership", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"membershipId": 7, "membershipName": "Gold", "membershipPrice": 99},
		}})
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	db, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	gateway := ipg.DefaultConfig()
	gateway.StoreName = "811676300198"

	r := NewRouter("test", db, nil, fakeSession{ok: true}, slogx.Discard())
	r.CheckoutService = &service.CheckoutService{
		Catalog: &service.CatalogService{Client: http.DefaultClient, BaseURL: backend.URL},
		Store:   db,
		Gateway: gateway,
		Secret:  testSecret,
	}
	r.CallbackService = &service.CallbackService{Store: db}
	for _, fn := range configure {
		fn(r)
	}
	r.ApplyRoutes()

	return &testEnv{router: r, backend: backend}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) checkout(t *testing.T, kind, productID string) service.Checkout {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/checkout", "application/json",
		`{"kind":"`+kind+`","productId":"`+productID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var co service.Checkout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&co))
	return co
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCheckoutHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/checkout", "application/json", `{"kind":"membership","productId":"7"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var co service.Checkout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&co))
	require.NotEmpty(t, co.OrderID)
	require.Equal(t, ipg.TestGatewayURL, co.Action)
	require.Equal(t, "99.00", co.Fields[ipg.FieldChargeTotal])
	require.Equal(t, co.OrderID, co.Fields[ipg.FieldOrderID])
	require.Equal(t, "12", co.Fields[ipg.FieldRecurringInstallmentCount])

	signature := co.Fields[ipg.FieldHashExtended]
	require.NotEmpty(t, signature)
	params := ipg.Params{}
	for k, v := range co.Fields {
		params[k] = v
	}
	require.True(t, ipg.Verify(params, testSecret, signature))
}

func TestCheckoutHandler_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    string
		code    int
		errCode string
	}{
		{"malformed json", `{`, http.StatusBadRequest, "invalid_request"},
		{"unknown kind", `{"kind":"coupon","productId":"1"}`, http.StatusBadRequest, "invalid_request"},
		{"missing product", `{"kind":"washbook"}`, http.StatusBadRequest, "invalid_request"},
		{"unknown product", `{"kind":"washbook","productId":"404"}`, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/checkout", "application/json", tt.body)
			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.errCode, decodeError(t, rec).Error)
		})
	}

	t.Run("backend down", func(t *testing.T) {
		env.backend.Close()
		rec := env.do(t, http.MethodPost, "/v1/checkout", "application/json", `{"kind":"washbook","productId":"3"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeError(t, rec)
		require.Equal(t, "upstream_error", body.Error)
		require.NotContains(t, body.ErrorDescription, "127.0.0.1")
	})
}

func TestFormHandler(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"kind": {"washbook"}, "product_id": {"3"}}
	rec := env.do(t, http.MethodPost, "/v1/checkout/form", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	page := rec.Body.String()
	require.Contains(t, page, `action="`+ipg.TestGatewayURL+`"`)
	require.Contains(t, page, `name="chargetotal" value="150.00"`)
	require.Contains(t, page, `name="hashExtended"`)

	rec = env.do(t, http.MethodPost, "/v1/checkout/form", "application/x-www-form-urlencoded", "kind=washbook")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	co := env.checkout(t, "washbook", "3")

	rec := env.do(t, http.MethodGet, "/v1/orders/"+co.OrderID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var order OrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	require.Equal(t, co.OrderID, order.OrderID)
	require.Equal(t, "pending", order.Status)
	require.Equal(t, "150.00", order.ChargeTotal)
	require.Nil(t, order.CompletedAt)

	rec = env.do(t, http.MethodGet, "/v1/orders/01HMB3T6Z8Q9W2E4R5T6Y7V8K9", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/orders/nope", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackHandler(t *testing.T) {
	t.Run("success post approves and redirects", func(t *testing.T) {
		env := newTestEnv(t)
		co := env.checkout(t, "membership", "7")

		form := url.Values{"oid": {co.OrderID}, "status": {"APPROVED"}, "approval_code": {"Y:1:2:3"}}
		rec := env.do(t, http.MethodPost, "/ipg/success", "application/x-www-form-urlencoded", form.Encode())
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/success", rec.Header().Get("Location"))

		rec = env.do(t, http.MethodGet, "/v1/orders/"+co.OrderID, "", "")
		var order OrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		require.Equal(t, "approved", order.Status)
		require.Equal(t, "Y:1:2:3", order.ApprovalCode)
		require.NotNil(t, order.CompletedAt)
	})

	t.Run("fail get declines and redirects", func(t *testing.T) {
		env := newTestEnv(t, func(r *Router) { r.FailurePage = "https://shop.example/failure" })
		co := env.checkout(t, "washbook", "3")

		rec := env.do(t, http.MethodGet, "/ipg/fail?oid="+co.OrderID+"&fail_reason=Declined", "", "")
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://shop.example/failure", rec.Header().Get("Location"))

		rec = env.do(t, http.MethodGet, "/v1/orders/"+co.OrderID, "", "")
		var order OrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		require.Equal(t, "declined", order.Status)
		require.Equal(t, "Declined", order.FailReason)
	})

	t.Run("unknown or missing oid still redirects", func(t *testing.T) {
		env := newTestEnv(t)
		for _, target := range []string{"/ipg/success", "/ipg/success?oid=unknown", "/ipg/fail"} {
			rec := env.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", "")
			require.Equal(t, http.StatusFound, rec.Code, target)
		}
	})
}

func TestHealthHandlers(t *testing.T) {
	t.Run("livez", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/livez", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "ok", body.Status)
		require.Equal(t, "test", body.Version)
		require.Nil(t, body.Checks)
	})

	t.Run("readyz ok", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz without session", func(t *testing.T) {
		env := newTestEnv(t, func(r *Router) { r.session = fakeSession{} })
		rec := env.do(t, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "degraded", body.Status)
		require.Equal(t, "ok", body.Checks.Database)
		require.Contains(t, body.Checks.Session, "error")
	})

	t.Run("readyz with broken token store", func(t *testing.T) {
		env := newTestEnv(t, func(r *Router) { r.tokenStore = failingPinger{} })
		rec := env.do(t, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "error: connection refused", body.Checks.TokenStore)
	})
}

func TestRateLimitAndMetrics(t *testing.T) {
	env := newTestEnv(t, func(r *Router) {
		r.ModerateLimit = httpx.RateLimitConfig{Requests: 1, Window: time.Minute, Burst: 1}
	})

	env.checkout(t, "washbook", "3")

	// The JSON and form routes share one budget.
	rec := env.do(t, http.MethodPost, "/v1/checkout/form", "application/x-www-form-urlencoded", "kind=washbook&product_id=3")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := rec.Body.String()
	require.Contains(t, metrics, `washpay_checkouts_total{kind="washbook",result="ok"} 1`)
	require.Contains(t, metrics, `washpay_rate_limited_total{route="checkout"} 1`)
	require.Contains(t, metrics, `washpay_http_request_duration_seconds_count{code="200",method="post",route="checkout"} 1`)
}

func TestSwaggerRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/v1/checkout")
}
