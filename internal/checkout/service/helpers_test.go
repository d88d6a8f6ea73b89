package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/store/drivers/sqlite"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "api-key-1"
	testSecret = "test-shared-secret"
)

var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())
	return db
}

// newBackend serves the two catalog endpoints with fixed data.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/washbook", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != testAPIKey || r.URL.Query().Get("ShowOnCustomerPortal") != "True" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"washbookId": 3, "washbookName": "Express Wash Book", "washbookPrice": 150},
			{"washbookId": "4", "washbookName": "Manual Wash Book", "washbookPrice": "89.5"},
		}})
	})
	mux.HandleFunc("GET /api/membership", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"membershipId": 7, "membershipName": "Gold", "membershipPrice": 99},
			{"membershipId": 8, "membershipName": "Broken", "membershipPrice": -1},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGateway() ipg.Config {
	cfg := ipg.DefaultConfig()
	cfg.StoreName = "811676300198"
	cfg.ResponseSuccessURL = "https://x/ok"
	cfg.ResponseFailURL = "https://x/fail"
	return cfg
}
