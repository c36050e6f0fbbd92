package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/store"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrNotFailed       = errors.New("comment is not in a failed state")
	ErrInvalidRating   = errors.New("invalid rating")
)

// VideoComments is the reconciled view of one video's comments.
type VideoComments struct {
	Comments         []model.Comment `json:"comments"`
	CommentsDisabled bool            `json:"comments_disabled"`
}

// VideoStats pairs the platform's public counters for a video with the
// workflow state of the records tracked for it.
type VideoStats struct {
	Views           int64   `json:"views"`
	Likes           int64   `json:"likes"`
	TotalComments   int64   `json:"totalComments"`
	RepliedComments int64   `json:"repliedComments"`
	PendingComments int64   `json:"pendingComments"`
	FailedReplies   int64   `json:"failedReplies"`
	SuccessRate     float64 `json:"successRate"`
}

type CommentService interface {
	ListForVideo(ctx context.Context, account *model.Account, videoID string) (*VideoComments, error)
	VideoStats(ctx context.Context, account *model.Account, videoID string) (*VideoStats, error)
	Reply(ctx context.Context, account *model.Account, commentID, text string) error
	Delete(ctx context.Context, account *model.Account, commentID string) error
	Rate(ctx context.Context, account *model.Account, commentID string, rating platform.Rating) error
	// Retry re-drives the auto-reply sub-procedure for a failed record.
	Retry(ctx context.Context, account *model.Account, commentID string) (*model.Comment, error)
}

type commentService struct {
	comments store.CommentStore
	source   platform.Source
	drafter  drafting.Drafter
}

func NewCommentService(comments store.CommentStore, source platform.Source, drafter drafting.Drafter) CommentService {
	return &commentService{comments: comments, source: source, drafter: drafter}
}

func (s *commentService) ListForVideo(ctx context.Context, account *model.Account, videoID string) (*VideoComments, error) {
	stored, err := s.comments.ListByVideo(ctx, account.ID, videoID)
	if err != nil {
		return nil, fmt.Errorf("listing stored comments: %w", err)
	}

	result := &VideoComments{Comments: stored}

	// Probe the platform so the caller can distinguish "no comments yet"
	// from "comments turned off".
	if account.Connected() {
		if _, err := s.source.ListThreads(ctx, account.Credentials, videoID, 1); err != nil {
			if errors.Is(err, platform.ErrCommentsDisabled) {
				result.CommentsDisabled = true
			} else {
				slog.WarnContext(ctx, "comment availability probe failed", "video_id", videoID, "error", err)
			}
		}
	}
	return result, nil
}

func (s *commentService) VideoStats(ctx context.Context, account *model.Account, videoID string) (*VideoStats, error) {
	if !account.Connected() {
		return nil, ErrNotConnected
	}

	counters, err := s.source.VideoStats(ctx, account.Credentials, videoID)
	if err != nil {
		if errors.Is(err, platform.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("fetching video statistics: %w", err)
	}

	stored, err := s.comments.ListByVideo(ctx, account.ID, videoID)
	if err != nil {
		return nil, fmt.Errorf("listing stored comments: %w", err)
	}

	tracked := model.CommentStats{Total: int64(len(stored))}
	for _, record := range stored {
		switch record.Status {
		case model.CommentStatusReplied:
			tracked.Replied++
		case model.CommentStatusPending:
			tracked.Pending++
		case model.CommentStatusFailed:
			tracked.Failed++
		}
	}

	return &VideoStats{
		Views:           counters.Views,
		Likes:           counters.Likes,
		TotalComments:   counters.Comments,
		RepliedComments: tracked.Replied,
		PendingComments: tracked.Pending,
		FailedReplies:   tracked.Failed,
		SuccessRate:     tracked.SuccessRate(),
	}, nil
}

func (s *commentService) Reply(ctx context.Context, account *model.Account, commentID, text string) error {
	key, err := s.key(account, commentID)
	if err != nil {
		return err
	}

	if _, err := s.comments.Get(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("loading comment record: %w", err)
	}

	if err := s.source.PostReply(ctx, account.Credentials, commentID, text); err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}

	if err := s.comments.SetReplied(ctx, key, &text, time.Now().UTC()); err != nil {
		return fmt.Errorf("marking comment replied: %w", err)
	}
	return nil
}

func (s *commentService) Delete(ctx context.Context, account *model.Account, commentID string) error {
	key, err := s.key(account, commentID)
	if err != nil {
		return err
	}

	if err := s.source.DeleteComment(ctx, account.Credentials, commentID); err != nil {
		return fmt.Errorf("deleting comment on platform: %w", err)
	}

	if err := s.comments.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting comment record: %w", err)
	}
	return nil
}

func (s *commentService) Rate(ctx context.Context, account *model.Account, commentID string, rating platform.Rating) error {
	switch rating {
	case platform.RatingLike, platform.RatingNone, platform.RatingDislike:
	default:
		return ErrInvalidRating
	}

	if !account.Connected() {
		return ErrNotConnected
	}
	if err := s.source.RateComment(ctx, account.Credentials, commentID, rating); err != nil {
		return fmt.Errorf("rating comment: %w", err)
	}
	return nil
}

func (s *commentService) Retry(ctx context.Context, account *model.Account, commentID string) (*model.Comment, error) {
	key, err := s.key(account, commentID)
	if err != nil {
		return nil, err
	}

	record, err := s.comments.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("loading comment record: %w", err)
	}
	if record.Status != model.CommentStatusFailed {
		return nil, ErrNotFailed
	}

	draft, err := s.drafter.Draft(ctx, record.Text)
	if err != nil {
		return nil, fmt.Errorf("drafting reply: %w", err)
	}

	if err := s.source.PostReply(ctx, account.Credentials, commentID, draft.Text); err != nil {
		return nil, fmt.Errorf("posting reply: %w", err)
	}

	if err := s.comments.SetReplied(ctx, key, &draft.Text, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("marking comment replied: %w", err)
	}

	slog.InfoContext(ctx, "failed comment re-driven",
		"comment_id", commentID,
		"model", draft.Model,
	)
	return s.comments.Get(ctx, key)
}

func (s *commentService) key(account *model.Account, commentID string) (model.CommentKey, error) {
	if !account.Connected() || account.ChannelID == nil {
		return model.CommentKey{}, ErrNotConnected
	}
	return model.CommentKey{
		AccountID: account.ID,
		ChannelID: *account.ChannelID,
		CommentID: commentID,
	}, nil
}
