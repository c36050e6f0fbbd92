package service_test

import (
	"context"
	"encoding/json"
	"time"

	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/store"
)

type mockCommentStore struct {
	getFn         func(ctx context.Context, key model.CommentKey) (*model.Comment, error)
	upsertFn      func(ctx context.Context, params store.CommentUpsert) (bool, error)
	setRepliedFn  func(ctx context.Context, key model.CommentKey, aiReply *string, repliedAt time.Time) error
	setFailedFn   func(ctx context.Context, key model.CommentKey) error
	deleteFn      func(ctx context.Context, key model.CommentKey) error
	listByVideoFn func(ctx context.Context, accountID int64, videoID string) ([]model.Comment, error)
	statsFn       func(ctx context.Context, accountID int64, channelID string) (model.CommentStats, error)
	dailyCountsFn func(ctx context.Context, accountID int64, channelID string, since time.Time) ([]model.DailyCount, error)
}

func (m *mockCommentStore) Get(ctx context.Context, key model.CommentKey) (*model.Comment, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, store.ErrNotFound
}

func (m *mockCommentStore) Upsert(ctx context.Context, params store.CommentUpsert) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, params)
	}
	return false, nil
}

func (m *mockCommentStore) SetReplied(ctx context.Context, key model.CommentKey, aiReply *string, repliedAt time.Time) error {
	if m.setRepliedFn != nil {
		return m.setRepliedFn(ctx, key, aiReply, repliedAt)
	}
	return nil
}

func (m *mockCommentStore) SetFailed(ctx context.Context, key model.CommentKey) error {
	if m.setFailedFn != nil {
		return m.setFailedFn(ctx, key)
	}
	return nil
}

func (m *mockCommentStore) Delete(ctx context.Context, key model.CommentKey) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockCommentStore) ListByVideo(ctx context.Context, accountID int64, videoID string) ([]model.Comment, error) {
	if m.listByVideoFn != nil {
		return m.listByVideoFn(ctx, accountID, videoID)
	}
	return nil, nil
}

func (m *mockCommentStore) ListByChannel(_ context.Context, _ int64, _ string, _ *model.CommentStatus, _ int32) ([]model.Comment, error) {
	return nil, nil
}

func (m *mockCommentStore) Stats(ctx context.Context, accountID int64, channelID string) (model.CommentStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, accountID, channelID)
	}
	return model.CommentStats{}, nil
}

func (m *mockCommentStore) DailyCounts(ctx context.Context, accountID int64, channelID string, since time.Time) ([]model.DailyCount, error) {
	if m.dailyCountsFn != nil {
		return m.dailyCountsFn(ctx, accountID, channelID, since)
	}
	return nil, nil
}

type mockSource struct {
	channelFn     func(ctx context.Context) (*platform.Channel, error)
	listVideosFn  func(ctx context.Context, uploadsID, pageToken string, pageSize int64) ([]platform.Video, string, error)
	listThreadsFn func(ctx context.Context, videoID string, pageSize int64) ([]platform.Thread, error)
	videoStatsFn  func(ctx context.Context, videoID string) (platform.VideoStats, error)
	postReplyFn   func(ctx context.Context, commentID, text string) error
	deleteFn      func(ctx context.Context, commentID string) error
	rateFn        func(ctx context.Context, commentID string, rating platform.Rating) error
}

func (m *mockSource) Channel(ctx context.Context, _ json.RawMessage) (*platform.Channel, error) {
	if m.channelFn != nil {
		return m.channelFn(ctx)
	}
	return &platform.Channel{ID: "UC-test", Title: "Test", UploadsID: "UU-test"}, nil
}

func (m *mockSource) ListVideos(ctx context.Context, _ json.RawMessage, uploadsID, pageToken string, pageSize int64) ([]platform.Video, string, error) {
	if m.listVideosFn != nil {
		return m.listVideosFn(ctx, uploadsID, pageToken, pageSize)
	}
	return nil, "", nil
}

func (m *mockSource) ListThreads(ctx context.Context, _ json.RawMessage, videoID string, pageSize int64) ([]platform.Thread, error) {
	if m.listThreadsFn != nil {
		return m.listThreadsFn(ctx, videoID, pageSize)
	}
	return nil, nil
}

func (m *mockSource) VideoStats(ctx context.Context, _ json.RawMessage, videoID string) (platform.VideoStats, error) {
	if m.videoStatsFn != nil {
		return m.videoStatsFn(ctx, videoID)
	}
	return platform.VideoStats{}, nil
}

func (m *mockSource) PostReply(ctx context.Context, _ json.RawMessage, commentID, text string) error {
	if m.postReplyFn != nil {
		return m.postReplyFn(ctx, commentID, text)
	}
	return nil
}

func (m *mockSource) DeleteComment(ctx context.Context, _ json.RawMessage, commentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID)
	}
	return nil
}

func (m *mockSource) RateComment(ctx context.Context, _ json.RawMessage, commentID string, rating platform.Rating) error {
	if m.rateFn != nil {
		return m.rateFn(ctx, commentID, rating)
	}
	return nil
}

type mockDrafter struct {
	draftFn func(ctx context.Context, commentText string) (*drafting.Draft, error)
}

func (m *mockDrafter) Draft(ctx context.Context, commentText string) (*drafting.Draft, error) {
	if m.draftFn != nil {
		return m.draftFn(ctx, commentText)
	}
	return &drafting.Draft{Text: "Thanks!", Model: "gemini-flash-latest"}, nil
}

func connectedAccount() *model.Account {
	channelID := "UC-test"
	return &model.Account{
		ID:          7,
		Email:       "creator@example.com",
		Credentials: json.RawMessage(`{"access_token":"tok"}`),
		ChannelID:   &channelID,
	}
}
