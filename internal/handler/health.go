package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/guestbook/internal/config"
	"github.com/deppfellow/guestbook/internal/middleware"
	"github.com/deppfellow/guestbook/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	Handler
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler probes the dependencies enabled under
// observability.health_checks.
func NewHealthHandler(s *server.Server) *HealthHandler {
	obs := s.Config.Observability
	checks := make(map[string]HealthCheck)

	if obs.HealthCheckEnabled(config.HealthCheckDatabase) && s.DB != nil {
		checks[config.HealthCheckDatabase] = s.DB.Pool.Ping
	}
	if obs.HealthCheckEnabled(config.HealthCheckRedis) && s.Redis != nil {
		checks[config.HealthCheckRedis] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
		timeout: obs.HealthChecks.Timeout,
	}
}

// CheckHealth answers 200 when every enabled check passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	results := make(map[string]any, len(h.checks))
	healthy := true

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		result := map[string]any{
			"status":        "healthy",
			"response_time": elapsed.String(),
		}

		if err != nil {
			healthy = false
			result["status"] = "unhealthy"
			result["error"] = err.Error()

			logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
			h.recordFailure(name, elapsed, err)
		}

		results[name] = result
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      results,
	}

	if !healthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
