package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/guestbook/internal/model"
	"github.com/deppfellow/guestbook/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const guestbookTable = "guestbook"

const getGuestbookEntryQuery = `
SELECT id, user_id, message, tags, is_use_markdown, created_at
FROM guestbook
WHERE id = $1`

// Absent tags ($3 false) and a NULL is_use_markdown keep the stored value.
const updateGuestbookContentQuery = `
UPDATE guestbook
SET message = $2,
    tags = CASE WHEN $3::boolean THEN $4::text[] ELSE tags END,
    is_use_markdown = COALESCE($5::boolean, is_use_markdown)
WHERE id = $1`

type GuestbookRepository struct {
	db DBTX
}

func NewGuestbookRepository(db DBTX) *GuestbookRepository {
	return &GuestbookRepository{db: db}
}

// GetByID returns the entry with the given primary key. A missing row is
// reported as a wrapped pgx.ErrNoRows naming the table.
func (r *GuestbookRepository) GetByID(ctx context.Context, id int64) (*model.GuestbookEntry, error) {
	var entry model.GuestbookEntry

	err := r.db.QueryRow(ctx, getGuestbookEntryQuery, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Message,
		&entry.Tags,
		&entry.IsUseMarkdown,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s%s: %w", sqlerr.TablePrefix, guestbookTable, err)
		}
		return nil, fmt.Errorf("failed to get guestbook entry %d: %w", id, err)
	}

	return &entry, nil
}

// UpdateContent rewrites the editable columns of one entry in a single
// statement.
func (r *GuestbookRepository) UpdateContent(ctx context.Context, id int64, params model.UpdateContentParams) (*model.UpdateResult, error) {
	tag, err := r.db.Exec(ctx, updateGuestbookContentQuery,
		id,
		params.Message,
		params.Tags.Set,
		params.Tags.Value,
		params.IsUseMarkdown,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update guestbook entry %d: %w", id, err)
	}

	command := "UPDATE"
	if fields := strings.Fields(tag.String()); len(fields) > 0 {
		command = fields[0]
	}

	return &model.UpdateResult{
		Command:  command,
		RowCount: tag.RowsAffected(),
	}, nil
}
