package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClaims(subject string) context.Context {
	claims := &clerk.SessionClaims{}
	claims.Subject = subject
	return clerk.ContextWithSessionClaims(context.Background(), claims)
}

func newAuth(fetch func(context.Context, string) (*clerk.User, error)) *AuthService {
	return &AuthService{siteOwnerKey: "siteOwner", fetchUser: fetch}
}

func TestCurrentUser_NoSession(t *testing.T) {
	a := newAuth(func(context.Context, string) (*clerk.User, error) {
		t.Fatal("user lookup without a session")
		return nil, nil
	})

	identity, err := a.CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestCurrentUser_SiteOwnerFlag(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     bool
	}{
		{"flag true", `{"siteOwner":true}`, true},
		{"flag false", `{"siteOwner":false}`, false},
		{"string true", `{"siteOwner":"true"}`, false},
		{"missing", `{}`, false},
		{"empty", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAuth(func(_ context.Context, id string) (*clerk.User, error) {
				return &clerk.User{ID: id, PublicMetadata: json.RawMessage(tt.metadata)}, nil
			})

			identity, err := a.CurrentUser(withClaims("u1"))
			require.NoError(t, err)
			require.NotNil(t, identity)
			assert.Equal(t, "u1", identity.UserID)
			assert.Equal(t, tt.want, identity.SiteOwner)
		})
	}
}

func TestCurrentUser_DeletedUserIsAnonymous(t *testing.T) {
	a := newAuth(func(context.Context, string) (*clerk.User, error) {
		return nil, &clerk.APIErrorResponse{HTTPStatusCode: http.StatusNotFound}
	})

	identity, err := a.CurrentUser(withClaims("u1"))
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestCurrentUser_LookupFailure(t *testing.T) {
	a := newAuth(func(context.Context, string) (*clerk.User, error) {
		return nil, errors.New("timeout")
	})

	_, err := a.CurrentUser(withClaims("u1"))
	assert.ErrorContains(t, err, "failed to fetch user u1")
}
