package sync_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/store"
)

type mockSource struct {
	channel     *platform.Channel
	channelErr  error
	videos      []platform.Video
	videosErr   map[string]error // keyed by uploads collection ID
	threads     map[string][]platform.Thread
	threadsErr  map[string]error // keyed by video ID
	postReplyFn func(commentID, text string) error

	channelCalls int
	postedTo     []string
}

func (m *mockSource) Channel(_ context.Context, _ json.RawMessage) (*platform.Channel, error) {
	m.channelCalls++
	if m.channelErr != nil {
		return nil, m.channelErr
	}
	return m.channel, nil
}

func (m *mockSource) ListVideos(_ context.Context, _ json.RawMessage, uploadsID, pageToken string, _ int64) ([]platform.Video, string, error) {
	if err := m.videosErr[uploadsID]; err != nil {
		return nil, "", err
	}
	if pageToken != "" {
		return nil, "", nil
	}
	return m.videos, "", nil
}

func (m *mockSource) ListThreads(_ context.Context, _ json.RawMessage, videoID string, _ int64) ([]platform.Thread, error) {
	if err := m.threadsErr[videoID]; err != nil {
		return nil, err
	}
	return m.threads[videoID], nil
}

func (m *mockSource) PostReply(_ context.Context, _ json.RawMessage, commentID, text string) error {
	if m.postReplyFn != nil {
		if err := m.postReplyFn(commentID, text); err != nil {
			return err
		}
	}
	m.postedTo = append(m.postedTo, commentID)
	return nil
}

func (m *mockSource) VideoStats(_ context.Context, _ json.RawMessage, _ string) (platform.VideoStats, error) {
	return platform.VideoStats{}, nil
}

func (m *mockSource) DeleteComment(_ context.Context, _ json.RawMessage, _ string) error {
	return nil
}

func (m *mockSource) RateComment(_ context.Context, _ json.RawMessage, _ string, _ platform.Rating) error {
	return nil
}

type mockDrafter struct {
	draftFn func(commentText string) (*drafting.Draft, error)
	calls   []string
}

func (m *mockDrafter) Draft(_ context.Context, commentText string) (*drafting.Draft, error) {
	m.calls = append(m.calls, commentText)
	if m.draftFn != nil {
		return m.draftFn(commentText)
	}
	return &drafting.Draft{Text: "Thanks for watching!", Model: "gemini-flash-latest"}, nil
}

type mockAccountStore struct {
	accounts  []model.Account
	listErr   error
	listCalls int32
}

func (m *mockAccountStore) List(_ context.Context) ([]model.Account, error) {
	atomic.AddInt32(&m.listCalls, 1)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Account, len(m.accounts))
	copy(out, m.accounts)
	return out, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id int64) (*model.Account, error) {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			return &m.accounts[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockAccountStore) GetByEmail(_ context.Context, _ string) (*model.Account, error) {
	return nil, store.ErrNotFound
}

func (m *mockAccountStore) Create(_ context.Context, _ *model.Account) error { return nil }

func (m *mockAccountStore) UpdateCredentials(_ context.Context, _ int64, _ json.RawMessage) error {
	return nil
}

func (m *mockAccountStore) UpdateChannelID(_ context.Context, id int64, channelID string) error {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].ChannelID = &channelID
		}
	}
	return nil
}

type mockSessionStore struct {
	purgeCalls int32
	purgeErr   error
}

func (m *mockSessionStore) GetValid(_ context.Context, _ int64) (*model.Session, error) {
	return nil, store.ErrNotFound
}

func (m *mockSessionStore) Create(_ context.Context, _ *model.Session) error { return nil }

func (m *mockSessionStore) Delete(_ context.Context, _ int64) error { return nil }

func (m *mockSessionStore) DeleteExpired(_ context.Context) error {
	atomic.AddInt32(&m.purgeCalls, 1)
	return m.purgeErr
}

// memoryCommentStore mirrors the merge semantics of the SQL store: the
// content snapshot always wins, replied_at keeps its first value, and a
// fresh insert is reported as such exactly once.
type memoryCommentStore struct {
	records map[model.CommentKey]*model.Comment
}

func newMemoryCommentStore() *memoryCommentStore {
	return &memoryCommentStore{records: make(map[model.CommentKey]*model.Comment)}
}

func (m *memoryCommentStore) Get(_ context.Context, key model.CommentKey) (*model.Comment, error) {
	record, ok := m.records[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memoryCommentStore) Upsert(_ context.Context, params store.CommentUpsert) (bool, error) {
	record, ok := m.records[params.Key]
	if !ok {
		now := time.Now().UTC()
		m.records[params.Key] = &model.Comment{
			CommentID:    params.Key.CommentID,
			AccountID:    params.Key.AccountID,
			ChannelID:    params.Key.ChannelID,
			VideoID:      params.VideoID,
			VideoTitle:   params.VideoTitle,
			AuthorName:   params.AuthorName,
			AuthorAvatar: params.AuthorAvatar,
			Text:         params.Text,
			PublishedAt:  params.PublishedAt,
			LikeCount:    params.LikeCount,
			Status:       params.Status,
			RepliedAt:    params.RepliedAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return true, nil
	}

	record.VideoID = params.VideoID
	record.VideoTitle = params.VideoTitle
	record.AuthorName = params.AuthorName
	record.AuthorAvatar = params.AuthorAvatar
	record.Text = params.Text
	record.PublishedAt = params.PublishedAt
	record.LikeCount = params.LikeCount
	record.Status = params.Status
	if record.RepliedAt == nil {
		record.RepliedAt = params.RepliedAt
	}
	record.UpdatedAt = time.Now().UTC()
	return false, nil
}

func (m *memoryCommentStore) SetReplied(_ context.Context, key model.CommentKey, aiReply *string, repliedAt time.Time) error {
	record, ok := m.records[key]
	if !ok {
		return store.ErrNotFound
	}
	record.Status = model.CommentStatusReplied
	if aiReply != nil {
		record.AIReply = aiReply
	}
	record.RepliedAt = &repliedAt
	return nil
}

func (m *memoryCommentStore) SetFailed(_ context.Context, key model.CommentKey) error {
	record, ok := m.records[key]
	if !ok {
		return store.ErrNotFound
	}
	record.Status = model.CommentStatusFailed
	return nil
}

func (m *memoryCommentStore) Delete(_ context.Context, key model.CommentKey) error {
	if _, ok := m.records[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *memoryCommentStore) ListByVideo(_ context.Context, accountID int64, videoID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, record := range m.records {
		if record.AccountID == accountID && record.VideoID == videoID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memoryCommentStore) ListByChannel(_ context.Context, accountID int64, channelID string, status *model.CommentStatus, _ int32) ([]model.Comment, error) {
	var out []model.Comment
	for _, record := range m.records {
		if record.AccountID != accountID || record.ChannelID != channelID {
			continue
		}
		if status != nil && record.Status != *status {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (m *memoryCommentStore) Stats(_ context.Context, accountID int64, channelID string) (model.CommentStats, error) {
	var stats model.CommentStats
	for _, record := range m.records {
		if record.AccountID != accountID || record.ChannelID != channelID {
			continue
		}
		stats.Total++
		switch record.Status {
		case model.CommentStatusReplied:
			stats.Replied++
		case model.CommentStatusPending:
			stats.Pending++
		case model.CommentStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func (m *memoryCommentStore) DailyCounts(_ context.Context, accountID int64, channelID string, since time.Time) ([]model.DailyCount, error) {
	byDay := make(map[string]*model.DailyCount)
	for _, record := range m.records {
		if record.AccountID != accountID || record.ChannelID != channelID {
			continue
		}
		if record.PublishedAt.Before(since) {
			continue
		}
		day := record.PublishedAt.UTC().Truncate(24 * time.Hour)
		entry, ok := byDay[day.Format("2006-01-02")]
		if !ok {
			entry = &model.DailyCount{Day: day}
			byDay[day.Format("2006-01-02")] = entry
		}
		entry.Comments++
		if record.Status == model.CommentStatusReplied {
			entry.Replies++
		}
	}
	var out []model.DailyCount
	for _, entry := range byDay {
		out = append(out, *entry)
	}
	return out, nil
}

func (m *memoryCommentStore) snapshot() map[model.CommentKey]model.Comment {
	out := make(map[model.CommentKey]model.Comment, len(m.records))
	for key, record := range m.records {
		out[key] = *record
	}
	return out
}

var errBoom = fmt.Errorf("boom")
