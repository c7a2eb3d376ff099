package service

import (
	"context"
	"errors"

	"github.com/deppfellow/guestbook/internal/lib/job"
	"github.com/deppfellow/guestbook/internal/lib/ratelimit"
	"github.com/deppfellow/guestbook/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// RateLimitKeyPrefix scopes guestbook quotas per caller.
const RateLimitKeyPrefix = "guestbook:"

type GuestbookStore interface {
	GetByID(ctx context.Context, id int64) (*model.GuestbookEntry, error)
	UpdateContent(ctx context.Context, id int64, params model.UpdateContentParams) (*model.UpdateResult, error)
}

type IDCodec interface {
	Encode(id int64) (string, error)
	Decode(encoded string) (int64, error)
}

// ModerationNotifier queues a notice to an author whose entry was edited
// by a site owner.
type ModerationNotifier interface {
	EnqueueModerationNotice(ctx context.Context, p job.ModerationNoticePayload) error
}

type GuestbookService struct {
	identity IdentityProvider
	limiter  ratelimit.Limiter
	codec    IDCodec
	store    GuestbookStore
	notifier ModerationNotifier
	logger   *zerolog.Logger
}

// NewGuestbookService wires the edit flow. notifier may be nil.
func NewGuestbookService(
	identity IdentityProvider,
	limiter ratelimit.Limiter,
	codec IDCodec,
	store GuestbookStore,
	notifier ModerationNotifier,
	logger *zerolog.Logger,
) *GuestbookService {
	return &GuestbookService{
		identity: identity,
		limiter:  limiter,
		codec:    codec,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func RateLimitKey(userID string) string {
	return RateLimitKeyPrefix + userID
}

// Authenticate returns the caller or ErrNotAuthenticated.
func (s *GuestbookService) Authenticate(ctx context.Context) (*Identity, error) {
	identity, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	return identity, nil
}

// Admit counts one request against the caller's quota. When the limiter
// itself fails the request is let through and the failure logged.
func (s *GuestbookService) Admit(ctx context.Context, identity *Identity) (*ratelimit.Result, error) {
	res, err := s.limiter.Limit(ctx, RateLimitKey(identity.UserID))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", identity.UserID).
			Msg("rate limiter unavailable, allowing request")
		return nil, nil
	}
	if !res.Success {
		return res, ErrRateLimited
	}
	return res, nil
}

func (s *GuestbookService) DecodeID(raw string) (int64, error) {
	id, err := s.codec.Decode(raw)
	if err != nil {
		return 0, &InvalidIDError{Raw: raw, Err: err}
	}
	return id, nil
}

// Edit applies payload to entry id when the caller wrote the entry or is a
// site owner.
func (s *GuestbookService) Edit(ctx context.Context, identity *Identity, id int64, payload *model.EditEntryPayload) (*model.UpdateResult, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, &StoreError{Op: "get guestbook entry", Err: err}
	}

	isOwner := entry != nil && entry.UserID == identity.UserID
	if !isOwner && !identity.SiteOwner {
		return nil, ErrNoPermission
	}

	result, err := s.store.UpdateContent(ctx, id, payload.Params())
	if err != nil {
		return nil, &StoreError{Op: "update guestbook entry", Err: err}
	}

	if !isOwner && entry != nil && result.RowCount > 0 {
		s.notifyModeration(ctx, identity, entry, payload)
	}

	return result, nil
}

func (s *GuestbookService) notifyModeration(ctx context.Context, editor *Identity, entry *model.GuestbookEntry, payload *model.EditEntryPayload) {
	if s.notifier == nil {
		return
	}

	encoded, err := s.codec.Encode(entry.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entry_id", entry.ID).Msg("failed to encode entry id for moderation notice")
		return
	}

	err = s.notifier.EnqueueModerationNotice(ctx, job.ModerationNoticePayload{
		EntryID:  encoded,
		AuthorID: entry.UserID,
		EditorID: editor.UserID,
		Message:  payload.Message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("entry_id", encoded).Msg("failed to enqueue moderation notice")
	}
}

// Get returns one entry by its encoded id.
func (s *GuestbookService) Get(ctx context.Context, encodedID string) (*model.EntryResponse, error) {
	id, err := s.DecodeID(encodedID)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.EntryResponse{ID: encodedID, GuestbookEntry: *entry}, nil
}
