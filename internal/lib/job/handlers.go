package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/guestbook/internal/lib/email"
	"github.com/hibiken/asynq"
)

func (j *JobService) handleModerationNoticeTask(ctx context.Context, t *asynq.Task) error {
	var p ModerationNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal moderation notice payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskModerationNotice).
		Str("entry_id", p.EntryID).
		Str("author_id", p.AuthorID).
		Logger()

	if j.mailer == nil {
		log.Warn().Msg("no email provider configured, dropping moderation notice")
		return nil
	}

	author, err := j.lookupUser(ctx, p.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to look up author %s: %w", p.AuthorID, err)
	}

	to := primaryEmail(author)
	if to == "" {
		log.Warn().Msg("author has no email address, skipping moderation notice")
		return nil
	}

	notice := email.ModerationNotice{
		AuthorName: displayName(author),
		EntryID:    p.EntryID,
		Message:    p.Message,
	}
	if err := j.mailer.SendModerationNotice(ctx, to, notice); err != nil {
		log.Error().Err(err).Msg("failed to send moderation notice")
		return err
	}

	log.Info().Msg("sent moderation notice")
	return nil
}

func primaryEmail(u *clerk.User) string {
	var fallback string
	for _, addr := range u.EmailAddresses {
		if addr == nil {
			continue
		}
		if u.PrimaryEmailAddressID != nil && addr.ID == *u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
		if fallback == "" {
			fallback = addr.EmailAddress
		}
	}
	return fallback
}

func displayName(u *clerk.User) string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "there"
}
