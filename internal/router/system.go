package router

import (
	"github.com/deppfellow/guestbook/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes wires endpoints that are not guestbook features.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and openapi.html
	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
