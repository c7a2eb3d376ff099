// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/guestbook/internal/handler"
	"github.com/deppfellow/guestbook/internal/middleware"
	"github.com/deppfellow/guestbook/internal/model"
	"github.com/deppfellow/guestbook/internal/server"
	"github.com/labstack/echo/v4"
)

// EditEntryRoute is rate limited per user by the handler, so the per-IP
// limiter leaves it alone and an anonymous caller always gets 401.
const EditEntryRoute = "/guestbook/edit/:id"

// NewRouter builds the echo instance with global middleware, system routes
// and the guestbook API.
func NewRouter(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	// Request id first so every later middleware can log it; tracing before
	// the context enhancer so the logger picks up the trace ids.
	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.CORS(),
		mw.RateLimit.PerIP(EditEntryRoute),
	)

	registerSystemRoutes(router, h)
	registerGuestbookRoutes(router, h, mw)

	return router
}

func registerGuestbookRoutes(r *echo.Echo, h *handler.Handlers, mw *middleware.Middlewares) {
	r.POST(EditEntryRoute, h.Guestbook.EditEntry, mw.Auth.Authenticate)
	r.GET("/guestbook/:id", handler.Handle(
		h.Guestbook.Handler,
		h.Guestbook.GetEntry,
		http.StatusOK,
		func() *model.GetEntryRequest { return &model.GetEntryRequest{} },
	))
}
