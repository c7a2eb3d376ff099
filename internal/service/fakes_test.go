package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/guestbook/internal/lib/job"
	"github.com/deppfellow/guestbook/internal/lib/ratelimit"
	"github.com/deppfellow/guestbook/internal/model"
	"github.com/jackc/pgx/v5"
)

type fakeIdentity struct {
	identity *Identity
	err      error
}

func (f *fakeIdentity) CurrentUser(context.Context) (*Identity, error) {
	return f.identity, f.err
}

type fakeLimiter struct {
	keys    []string
	deny    bool
	err     error
	remaining int
}

func (f *fakeLimiter) Limit(_ context.Context, key string) (*ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &ratelimit.Result{Success: !f.deny, Limit: 10, Remaining: f.remaining, Reset: time.Unix(0, 0)}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	entries   map[int64]model.GuestbookEntry
	getErr    error
	updateErr error
	updates   int
}

func newFakeStore(entries ...model.GuestbookEntry) *fakeStore {
	s := &fakeStore{entries: make(map[int64]model.GuestbookEntry)}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*model.GuestbookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("table:guestbook: %w", pgx.ErrNoRows)
	}
	return &e, nil
}

func (s *fakeStore) UpdateContent(_ context.Context, id int64, p model.UpdateContentParams) (*model.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updates++

	e, ok := s.entries[id]
	if !ok {
		return &model.UpdateResult{Command: "UPDATE", RowCount: 0}, nil
	}
	e.Message = p.Message
	if p.Tags.Set {
		e.Tags = p.Tags.Value
	}
	if p.IsUseMarkdown != nil {
		e.IsUseMarkdown = *p.IsUseMarkdown
	}
	s.entries[id] = e
	return &model.UpdateResult{Command: "UPDATE", RowCount: 1}, nil
}

func (s *fakeStore) entry(id int64) model.GuestbookEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

type fakeNotifier struct {
	payloads []job.ModerationNoticePayload
	err      error
}

func (f *fakeNotifier) EnqueueModerationNotice(_ context.Context, p job.ModerationNoticePayload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}
