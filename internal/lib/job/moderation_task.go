package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskModerationNotice = "guestbook:moderation_notice"

// ModerationNoticePayload identifies an entry a site owner edited on
// behalf of its author.
type ModerationNoticePayload struct {
	EntryID  string `json:"entry_id"`
	AuthorID string `json:"author_id"`
	EditorID string `json:"editor_id"`
	Message  string `json:"message"`
}

func NewModerationNoticeTask(p ModerationNoticePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moderation notice payload: %w", err)
	}

	return asynq.NewTask(
		TaskModerationNotice,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueModerationNotice queues a notice for the entry's author.
func (j *JobService) EnqueueModerationNotice(ctx context.Context, p ModerationNoticePayload) error {
	task, err := NewModerationNoticeTask(p)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue moderation notice: %w", err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("entry_id", p.EntryID).
		Msg("enqueued moderation notice")
	return nil
}
