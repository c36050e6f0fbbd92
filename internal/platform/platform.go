package platform

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrCommentsDisabled reports that a video does not accept comments. The sync
// engine treats it as an empty result, not a failure.
var ErrCommentsDisabled = errors.New("comments disabled")

// ErrNoChannel reports that the authenticated account owns no channel.
var ErrNoChannel = errors.New("account has no channel")

// ErrNoCredentials reports that the account has no stored platform
// credentials, which happens before the OAuth flow completes.
var ErrNoCredentials = errors.New("no platform credentials")

// ErrVideoNotFound reports that the platform knows no video with the
// requested ID.
var ErrVideoNotFound = errors.New("video not found")

// Channel is the account's own platform identity plus the collection its
// uploads live in.
type Channel struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	UploadsID string `json:"uploads_id"`
}

// Video is one content item in a channel's uploads collection.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// VideoStats carries the platform's own counters for a single video.
type VideoStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Thread is a top-level comment plus the platform's view of its replies.
// Nested replies are not individually modeled; ReplyCount is all the engine
// needs to detect an externally supplied answer.
type Thread struct {
	CommentID       string
	VideoID         string
	Text            string
	AuthorName      string
	AuthorAvatar    string
	AuthorChannelID string
	PublishedAt     time.Time
	LikeCount       int
	ReplyCount      int
}

// IsSelf reports whether the thread's top-level comment was authored by the
// channel owner.
func (t Thread) IsSelf(channelID string) bool {
	return t.AuthorChannelID != "" && t.AuthorChannelID == channelID
}

type Rating string

const (
	RatingLike    Rating = "like"
	RatingNone    Rating = "none"
	RatingDislike Rating = "dislike"
)

// Source abstracts the platform API. Every call authenticates from the
// account's stored credential JSON; implementations build their API client
// per call so token refresh stays the OAuth library's problem.
type Source interface {
	Channel(ctx context.Context, credentials json.RawMessage) (*Channel, error)
	// ListVideos returns one page of the uploads collection and the token for
	// the next page ("" when exhausted).
	ListVideos(ctx context.Context, credentials json.RawMessage, uploadsID, pageToken string, pageSize int64) ([]Video, string, error)
	// ListThreads returns the first page of top-level comment threads for a
	// video. Returns ErrCommentsDisabled when the video rejects comments.
	ListThreads(ctx context.Context, credentials json.RawMessage, videoID string, pageSize int64) ([]Thread, error)
	// VideoStats returns the platform's counters for one video. Returns
	// ErrVideoNotFound for unknown IDs.
	VideoStats(ctx context.Context, credentials json.RawMessage, videoID string) (VideoStats, error)
	PostReply(ctx context.Context, credentials json.RawMessage, commentID, text string) error
	DeleteComment(ctx context.Context, credentials json.RawMessage, commentID string) error
	RateComment(ctx context.Context, credentials json.RawMessage, commentID string, rating Rating) error
}
