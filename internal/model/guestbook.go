// Package model holds the guestbook domain types and request payloads.
package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/deppfellow/guestbook/internal/validation"
)

const (
	MessageMinLength = 1
	MessageMaxLength = 50000
)

// GuestbookEntry is a row of the guestbook table.
type GuestbookEntry struct {
	ID            int64     `json:"-" db:"id"`
	UserID        string    `json:"userId" db:"user_id"`
	Message       string    `json:"message" db:"message"`
	Tags          []string  `json:"tags" db:"tags"`
	IsUseMarkdown bool      `json:"isUseMarkdown" db:"is_use_markdown"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// EntryResponse is an entry as clients see it, keyed by its encoded id.
type EntryResponse struct {
	ID string `json:"id"`
	GuestbookEntry
}

// OptionalTags tells an absent "tags" key apart from an explicit null.
// Set is false when the key was missing.
type OptionalTags struct {
	Set   bool
	Value []string
}

func (o *OptionalTags) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalTags) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// EditEntryPayload is the body of POST /guestbook/edit/{id}.
type EditEntryPayload struct {
	Message       string       `json:"message" validate:"required,min=1,max=50000"`
	Tags          OptionalTags `json:"tags"`
	IsUseMarkdown *bool        `json:"isUseMarkdown"`
}

func (p *EditEntryPayload) Validate() error {
	return validation.Validator().Struct(p)
}

// UpdateContentParams are the columns an edit writes. A nil IsUseMarkdown
// and an unset Tags leave the stored value alone.
type UpdateContentParams struct {
	Message       string
	Tags          OptionalTags
	IsUseMarkdown *bool
}

// Params converts the payload into repository parameters.
func (p *EditEntryPayload) Params() UpdateContentParams {
	return UpdateContentParams{
		Message:       p.Message,
		Tags:          p.Tags,
		IsUseMarkdown: p.IsUseMarkdown,
	}
}

// UpdateResult describes what the store did for an update.
type UpdateResult struct {
	Command  string `json:"command"`
	RowCount int64  `json:"rowCount"`
}

// GetEntryRequest is the path of GET /guestbook/{id}.
type GetEntryRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *GetEntryRequest) Validate() error {
	return validation.Validator().Struct(r)
}
