package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/httpx"
)

// HealthResponse is returned by the probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"v0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or an error string.
type HealthChecks struct {
	Database   string `json:"database" example:"ok"`
	TokenStore string `json:"token_store" example:"ok"`
	Session    string `json:"session" example:"ok"`
}

// Pinger is implemented by token stores with a connection to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionState exposes whether a backend session is held.
type SessionState interface {
	Tokens(ctx context.Context) (authsdk.TokenPair, bool)
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning basic status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database, the token store and that a backend session is held.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	tokenStore Pinger,
	session SessionState,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok", TokenStore: "ok", Session: "ok"}
		status := "ok"
		code := http.StatusOK

		degrade := func(field *string, msg string) {
			*field = msg
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Database, "error: "+err.Error())
		}
		if tokenStore != nil {
			if err := tokenStore.Ping(r.Context()); err != nil {
				degrade(&checks.TokenStore, "error: "+err.Error())
			}
		}
		if _, ok := session.Tokens(r.Context()); !ok {
			degrade(&checks.Session, "error: no backend session")
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
