package repository

import (
	"github.com/deppfellow/guestbook/internal/server"
)

// Repositories groups every repository so services take one dependency.
type Repositories struct {
	Guestbook *GuestbookRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Guestbook: NewGuestbookRepository(s.DB.Pool),
	}
}
