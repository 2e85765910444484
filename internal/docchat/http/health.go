package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/pkg/chatsdk"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
)

// HealthHandler godoc
//
//	@Summary		API health
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	chatsdk.HealthResponse	"status, message"
//	@Router			/api/health [get].
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, chatsdk.HealthResponse{
			Status:  "ok",
			Message: "Server is running",
		})
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	chatsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, chatsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	503 when the database is unreachable. An unhealthy document service is reported as degraded but stays 200, since auth keeps working without it.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	chatsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	chatsdk.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, monitor *service.UpstreamMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &chatsdk.HealthChecks{
			Database:        "ok",
			DocumentService: "not configured",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		if monitor != nil {
			switch {
			case monitor.Healthy():
				checks.DocumentService = "ok"
			case monitor.LastCheck().IsZero():
				checks.DocumentService = "pending"
			default:
				checks.DocumentService = "error: unreachable"
				if overallStatus == "ok" {
					overallStatus = "degraded"
				}
			}
		}

		httpx.WriteJSON(w, statusCode, chatsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
