package handler

import (
	"github.com/deppfellow/guestbook/internal/middleware"
	"github.com/deppfellow/guestbook/internal/server"
	"github.com/deppfellow/guestbook/internal/service"
)

type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Guestbook *GuestbookHandler
}

func NewHandlers(s *server.Server, services *service.Services, middlewares *middleware.Middlewares) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Guestbook: NewGuestbookHandler(s, services.Guestbook, middlewares.RateLimit),
	}
}
