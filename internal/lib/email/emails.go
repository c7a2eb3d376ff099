package email

import "context"

// ModerationNotice is the data shown to an author whose entry a site owner
// edited.
type ModerationNotice struct {
	AuthorName string
	EntryID    string
	Message    string
}

func (c *Client) SendModerationNotice(ctx context.Context, to string, notice ModerationNotice) error {
	return c.SendEmail(ctx, to,
		"Your guestbook entry was edited",
		TemplateModerationNotice,
		map[string]string{
			"AuthorName": notice.AuthorName,
			"EntryID":    notice.EntryID,
			"Message":    notice.Message,
		},
	)
}
