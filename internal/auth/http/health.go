package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"

	// readyzTimeout bounds each dependency probe.
	readyzTimeout = 2 * time.Second
)

// Pinger is satisfied by the store and the revocation cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// health builds the common part of both probe responses.
type health struct {
	startTime time.Time
	version   string
}

func (h health) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Version: h.version,
		Checks:  checks,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 while the process is serving. Dependencies are not checked.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	h := health{startTime: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, h.response(healthOK, nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and the revocation cache. Either failing makes the service degraded,
//	@Description	since logins need the database and every authorized request needs the cache.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"one or more dependencies unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db, cache Pinger) http.HandlerFunc {
	h := health{startTime: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		checks := &authsdk.HealthChecks{
			Database: probe(ctx, db),
			Cache:    probe(ctx, cache),
		}

		status, code := healthOK, http.StatusOK
		if checks.Database != healthOK || checks.Cache != healthOK {
			status, code = healthDegraded, http.StatusServiceUnavailable
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		httpx.WriteJSON(w, code, h.response(status, checks))
	}
}

func probe(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return healthOK
}
