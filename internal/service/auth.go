package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/deppfellow/guestbook/internal/server"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID    string
	SiteOwner bool
}

// IdentityProvider resolves the caller of a request. It returns nil and no
// error when the request carries no valid session.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}

// AuthService resolves identities from Clerk session claims and the user's
// public metadata.
type AuthService struct {
	siteOwnerKey string
	fetchUser    func(ctx context.Context, id string) (*clerk.User, error)
}

func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		siteOwnerKey: s.Config.Guestbook.SiteOwnerMetadataKey,
		fetchUser:    user.Get,
	}
}

func (a *AuthService) CurrentUser(ctx context.Context) (*Identity, error) {
	claims, ok := clerk.SessionClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return nil, nil
	}

	u, err := a.fetchUser(ctx, claims.Subject)
	if err != nil {
		// A session for a deleted user is no session.
		var apiErr *clerk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", claims.Subject, err)
	}

	return &Identity{
		UserID:    u.ID,
		SiteOwner: metadataFlag(u.PublicMetadata, a.siteOwnerKey),
	}, nil
}

// metadataFlag reports whether key is the JSON literal true in metadata.
func metadataFlag(metadata json.RawMessage, key string) bool {
	if len(metadata) == 0 {
		return false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(metadata, &fields); err != nil {
		return false
	}

	var flag bool
	if err := json.Unmarshal(fields[key], &flag); err != nil {
		return false
	}
	return flag
}
