package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"commentflow.app/engine/common/logger"
	"commentflow.app/engine/core/config"
	"commentflow.app/engine/internal/cache"
	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/store"
)

// Engine reconciles stored comment records against the platform for every
// connected account and auto-replies to newly observed actionable comments.
// It holds injected collaborators only; all durable state lives in the store.
type Engine struct {
	source   platform.Source
	drafter  drafting.Drafter
	comments store.CommentStore
	accounts store.AccountStore
	sessions store.SessionStore
	channels *cache.ChannelCache // nil when Redis is not configured
	cfg      config.SyncConfig
}

func NewEngine(
	source platform.Source,
	drafter drafting.Drafter,
	comments store.CommentStore,
	accounts store.AccountStore,
	sessions store.SessionStore,
	channels *cache.ChannelCache,
	cfg config.SyncConfig,
) *Engine {
	return &Engine{
		source:   source,
		drafter:  drafter,
		comments: comments,
		accounts: accounts,
		sessions: sessions,
		channels: channels,
		cfg:      cfg,
	}
}

// RunCycle performs one full pass over all accounts. Account failures are
// logged and isolated; the cycle always visits every account.
func (e *Engine) RunCycle(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "sync"})

	if err := e.sessions.DeleteExpired(ctx); err != nil {
		slog.WarnContext(ctx, "purging expired sessions failed", "error", err)
	}

	accounts, err := e.accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	start := time.Now()
	for i := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		account := &accounts[i]
		actx := logger.WithLogFields(ctx, logger.LogFields{AccountID: logger.Ptr(account.ID)})

		if err := e.SyncAccount(actx, account); err != nil {
			slog.ErrorContext(actx, "account sync failed, continuing with next account", "error", err)
		}
	}

	slog.InfoContext(ctx, "sync cycle finished",
		"accounts", len(accounts),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SyncAccount runs the reconciliation procedure for one account: resolve the
// channel, walk every upload, merge every top-level comment, and auto-reply
// where the merge produced a fresh actionable record.
func (e *Engine) SyncAccount(ctx context.Context, account *model.Account) error {
	sc := logger.StartSpan(ctx, "sync.account")
	defer sc.End()
	ctx = sc.Context()

	if !account.Connected() {
		slog.DebugContext(ctx, "account has no credentials, skipping")
		return nil
	}

	channel, err := e.resolveChannel(ctx, account)
	if err != nil {
		if errors.Is(err, platform.ErrNoChannel) || errors.Is(err, platform.ErrNoCredentials) {
			slog.InfoContext(ctx, "account has no resolvable channel, skipping", "error", err)
			return nil
		}
		return fmt.Errorf("resolving channel: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(channel.ID)})

	pageToken := ""
	for {
		videos, nextToken, err := e.source.ListVideos(ctx, account.Credentials, channel.UploadsID, pageToken, e.cfg.UploadsPageSize)
		if err != nil {
			// Committed work from earlier pages stays; the account is
			// retried next cycle.
			err = fmt.Errorf("listing uploads page: %w", err)
			sc.RecordError(err)
			return err
		}

		for _, video := range videos {
			e.syncVideo(ctx, account, channel, video)
		}

		if nextToken == "" {
			return nil
		}
		pageToken = nextToken
	}
}

func (e *Engine) resolveChannel(ctx context.Context, account *model.Account) (*platform.Channel, error) {
	if channel, ok := e.channels.Get(ctx, account.ID); ok {
		return channel, nil
	}

	channel, err := e.source.Channel(ctx, account.Credentials)
	if err != nil {
		return nil, err
	}
	e.channels.Set(ctx, account.ID, channel)

	if account.ChannelID == nil || *account.ChannelID != channel.ID {
		if err := e.accounts.UpdateChannelID(ctx, account.ID, channel.ID); err != nil {
			slog.WarnContext(ctx, "persisting resolved channel id failed", "error", err)
		}
		account.ChannelID = &channel.ID
	}
	return channel, nil
}

func (e *Engine) syncVideo(ctx context.Context, account *model.Account, channel *platform.Channel, video platform.Video) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{VideoID: logger.Ptr(video.ID)})

	threads, err := e.source.ListThreads(ctx, account.Credentials, video.ID, e.cfg.ThreadPageSize)
	if err != nil {
		if errors.Is(err, platform.ErrCommentsDisabled) {
			slog.DebugContext(ctx, "comments disabled on video, skipping")
			return
		}
		slog.ErrorContext(ctx, "listing comment threads failed, skipping video", "error", err)
		return
	}

	for _, thread := range threads {
		if err := e.syncThread(ctx, account, channel, video, thread); err != nil {
			slog.ErrorContext(ctx, "comment merge failed, continuing with next comment",
				"comment_id", thread.CommentID,
				"error", err)
		}
	}
}

// syncThread merges a single observed top-level comment and triggers the
// auto-reply sub-procedure when the merge freshly inserted an actionable
// pending record.
func (e *Engine) syncThread(ctx context.Context, account *model.Account, channel *platform.Channel, video platform.Video, thread platform.Thread) error {
	if thread.IsSelf(channel.ID) {
		return nil
	}

	key := model.CommentKey{
		AccountID: account.ID,
		ChannelID: channel.ID,
		CommentID: thread.CommentID,
	}

	var existing *model.CommentStatus
	current, err := e.comments.Get(ctx, key)
	switch {
	case err == nil:
		existing = &current.Status
	case errors.Is(err, store.ErrNotFound):
	default:
		return fmt.Errorf("loading comment record: %w", err)
	}

	resolution := Resolve(existing, thread.ReplyCount > 0)

	params := store.CommentUpsert{
		Key:          key,
		VideoID:      video.ID,
		VideoTitle:   logger.Ptr(video.Title),
		AuthorName:   thread.AuthorName,
		AuthorAvatar: logger.Ptr(thread.AuthorAvatar),
		Text:         thread.Text,
		PublishedAt:  thread.PublishedAt,
		LikeCount:    thread.LikeCount,
		Status:       resolution.Status,
	}
	if resolution.SetRepliedAt {
		params.RepliedAt = logger.Ptr(time.Now().UTC())
	}

	inserted, err := e.comments.Upsert(ctx, params)
	if err != nil {
		return fmt.Errorf("upserting comment record: %w", err)
	}

	if inserted && resolution.Actionable {
		e.autoReply(ctx, account, key, thread.Text)
	}
	return nil
}

// autoReply drafts and posts a reply for a freshly inserted pending comment.
// Any failure marks the record failed and is absorbed here; a failed record
// is only re-driven by an explicit retry.
func (e *Engine) autoReply(ctx context.Context, account *model.Account, key model.CommentKey, commentText string) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{CommentID: logger.Ptr(key.CommentID)})

	draft, err := e.drafter.Draft(ctx, commentText)
	if err != nil {
		slog.ErrorContext(ctx, "drafting reply failed", "error", err)
		e.markFailed(ctx, key)
		return
	}

	if err := e.source.PostReply(ctx, account.Credentials, key.CommentID, draft.Text); err != nil {
		slog.ErrorContext(ctx, "posting reply failed", "model", draft.Model, "error", err)
		e.markFailed(ctx, key)
		return
	}

	if err := e.comments.SetReplied(ctx, key, &draft.Text, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "marking comment replied failed", "error", err)
		return
	}

	slog.InfoContext(ctx, "auto-reply posted",
		"model", draft.Model,
		"reply_preview", logger.Truncate(draft.Text, 80))
}

func (e *Engine) markFailed(ctx context.Context, key model.CommentKey) {
	if err := e.comments.SetFailed(ctx, key); err != nil {
		slog.ErrorContext(ctx, "marking comment failed errored", "error", err)
	}
}
