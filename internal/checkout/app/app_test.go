package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/store/drivers/sqlite"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-signing-key"))
	require.NoError(t, err)
	return token
}

// fakeBackend counts logins and refreshes and serves a one item catalog.
type fakeBackend struct {
	*httptest.Server
	logins    atomic.Int32
	refreshes atomic.Int32
	lastKey   atomic.Value
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+authsdk.AuthenticatePath, func(w http.ResponseWriter, r *http.Request) {
		b.logins.Add(1)
		var req authsdk.AuthenticateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"accessToken":  mintToken(t, time.Now().Add(15*time.Minute)),
			"refreshToken": "refresh-1",
			"key":          "login-key",
		}})
	})
	mux.HandleFunc("POST "+authsdk.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		b.refreshes.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  mintToken(t, time.Now().Add(15*time.Minute)),
			"refreshToken": "refresh-2",
		})
	})
	mux.HandleFunc("GET /api/washbook", func(w http.ResponseWriter, r *http.Request) {
		b.lastKey.Store(r.URL.Query().Get("key"))
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"washbookId": 3, "washbookName": "Express Wash Book", "washbookPrice": 150},
		}})
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func testConfig(t *testing.T, backendURL string) Config {
	t.Helper()
	cfg := configFromEnv()
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "washpay.db")
	cfg.BackendBaseURL = backendURL
	cfg.BackendUsername = "ops@example.com"
	cfg.BackendPassword = "hunter2"
	cfg.SharedSecret = "test-shared-secret"
	cfg.Gateway.StoreName = "811676300198"
	cfg.ShutdownGracePeriod = time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg Config) *Application {
	t.Helper()
	app, err := newApplication(cfg, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.closeStores() })
	return app
}

func TestNew_LogsInAndLearnsAPIKey(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, testConfig(t, backend.URL))

	require.EqualValues(t, 1, backend.logins.Load())
	require.Equal(t, "login-key", app.client.APIKey)

	pair, ok := app.session.Tokens(context.Background())
	require.True(t, ok)
	require.Equal(t, "refresh-1", pair.RefreshToken)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/checkout",
		strings.NewReader(`{"kind":"washbook","productId":"3"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "login-key", backend.lastKey.Load())

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_LogsInAgainAfterSessionLoss(t *testing.T) {
	backend := newFakeBackend(t)
	app := newTestApp(t, testConfig(t, backend.URL))
	require.EqualValues(t, 1, backend.logins.Load())

	require.NoError(t, app.session.ClearTokens(context.Background()))

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/checkout",
		strings.NewReader(`{"kind":"washbook","productId":"3"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 2, backend.logins.Load())

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_ConfiguredAPIKeyWins(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.BackendAPIKey = "configured-key"

	app := newTestApp(t, cfg)
	require.Equal(t, "configured-key", app.client.APIKey)
}

func TestNew_ReusesStoredSession(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)

	first, err := newApplication(cfg, slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, first.closeStores())

	second := newTestApp(t, cfg)
	require.EqualValues(t, 1, backend.logins.Load())
	require.Zero(t, backend.refreshes.Load())
	require.Equal(t, "login-key", second.client.APIKey, "api key is remembered with the session")
}

func TestNew_RefreshesExpiredStoredSession(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	seedSession(t, cfg.DatabaseFile, mintToken(t, time.Now().Add(-time.Hour)))

	app := newTestApp(t, cfg)
	require.Zero(t, backend.logins.Load())
	require.EqualValues(t, 1, backend.refreshes.Load())

	pair, ok := app.session.Tokens(context.Background())
	require.True(t, ok)
	require.Equal(t, "refresh-2", pair.RefreshToken)
}

func TestNew_NoSessionAndNoCredentials(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.BackendUsername = ""
	cfg.BackendPassword = ""

	_, err := newApplication(cfg, slogx.Discard())
	require.ErrorIs(t, err, authsdk.ErrNoTokens)
}

func TestNew_RejectedLogin(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.BackendPassword = "wrong"

	_, err := newApplication(cfg, slogx.Discard())
	require.Error(t, err)
	require.True(t, authsdk.IsStatus(err, http.StatusUnauthorized))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://backend")
	cfg.SharedSecret = ""

	_, err := newApplication(cfg, slogx.Discard())
	require.ErrorContains(t, err, "IPG_SHARED_SECRET")
}

func TestNew_SealedTokenStore(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.StoreSealKey = "0123456789abcdef0123456789abcdef"

	app := newTestApp(t, cfg)
	pair, ok := app.session.Tokens(context.Background())
	require.True(t, ok)

	raw, err := app.db.KV().Get(context.Background(), authsdk.DefaultRefreshKey)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEqual(t, pair.RefreshToken, raw)
}

func TestNew_MemoryTokenStore(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.TokenStore = TokenStoreMemory

	app := newTestApp(t, cfg)
	raw, err := app.db.KV().Get(context.Background(), authsdk.DefaultAccessKey)
	require.NoError(t, err)
	require.Empty(t, raw, "memory mode never writes tokens to the database")
}

func TestRunAndShutdown(t *testing.T) {
	backend := newFakeBackend(t)
	cfg := testConfig(t, backend.URL)
	cfg.Port = 0

	app := newTestApp(t, cfg)
	app.start()
	require.NoError(t, app.Shutdown())
}

func seedSession(t *testing.T, dbFile, access string) {
	t.Helper()
	db, err := sqlite.NewStore("file:" + dbFile)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.ApplyMigrations())

	ctx := context.Background()
	require.NoError(t, db.KV().Set(ctx, authsdk.DefaultAccessKey, access))
	require.NoError(t, db.KV().Set(ctx, authsdk.DefaultRefreshKey, "refresh-1"))
	require.NoError(t, db.KV().Set(ctx, apiKeyStorageKey, "login-key"))
}
